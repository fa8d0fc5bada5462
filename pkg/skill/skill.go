// Package skill defines skill documents and their parsing. A skill is a
// markdown file with a YAML frontmatter block describing its name, purpose
// and optional tool allowlist, followed by free-form guidance text. The
// body is never interpreted; it is carried as an opaque blob and sized for
// budget accounting.
package skill

// MaxNameLength is the upper bound on the declared skill name.
const MaxNameLength = 64

// Record is an immutable parsed skill document. Records are created once
// by Parse and never mutated after they enter an index.
type Record struct {
	// ID is the unique slug derived from Name.
	ID string
	// Name is the display name from frontmatter.
	Name string
	// Description is the free-text summary used for relevance matching.
	Description string
	// AllowedTools lists capability tags the skill may invoke when active.
	// Empty means the skill requests no elevated capability.
	AllowedTools []string
	// Body is the full document content below the frontmatter.
	Body string
	// SizeBytes is the byte length of Body, cached for the loader.
	SizeBytes int
	// Extra holds unknown frontmatter keys, preserved for forward
	// compatibility but ignored by matching and loading.
	Extra map[string]string
}
