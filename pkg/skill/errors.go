package skill

import "fmt"

// MissingMetadataError indicates a document with no frontmatter block.
type MissingMetadataError struct{}

func (e *MissingMetadataError) Error() string {
	return "skill document has no metadata block"
}

// MissingFieldError indicates a required frontmatter field that is absent
// or empty after trimming.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("skill metadata field %q is missing or empty", e.Field)
}

// InvalidNameError indicates a declared name that cannot produce a usable
// slug, or that violates the name length bound.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid skill name %q: %s", e.Name, e.Reason)
}
