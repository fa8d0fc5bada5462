package skill

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

const (
	metadataNameKey         = "name"
	metadataDescriptionKey  = "description"
	metadataAllowedToolsKey = "allowed-tools"
)

// Parse reads one raw skill document and returns its Record. It is a pure
// function: the same input always yields the same record or the same typed
// error (MissingMetadataError, MissingFieldError, InvalidNameError).
func Parse(raw string) (*Record, error) {
	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert([]byte(raw), &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, &MissingMetadataError{}
	}

	name, _ := metaData[metadataNameKey].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &MissingFieldError{Field: metadataNameKey}
	}
	if len(name) > MaxNameLength {
		return nil, &InvalidNameError{Name: name, Reason: fmt.Sprintf("longer than %d characters", MaxNameLength)}
	}

	description, _ := metaData[metadataDescriptionKey].(string)
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &MissingFieldError{Field: metadataDescriptionKey}
	}

	id := Slugify(name)
	if id == "" {
		return nil, &InvalidNameError{Name: name, Reason: "no usable characters for slug"}
	}

	body := extractBody(raw)

	return &Record{
		ID:           id,
		Name:         name,
		Description:  description,
		AllowedTools: parseAllowedTools(metaData[metadataAllowedToolsKey]),
		Body:         body,
		SizeBytes:    len(body),
		Extra:        extraFields(metaData),
	}, nil
}

// Slugify derives the index id from a declared name: lower-cased, with
// whitespace runs collapsed to a single dash and everything outside
// [a-z0-9-] stripped. Returns "" when nothing usable remains.
func Slugify(name string) string {
	joined := strings.Join(strings.Fields(strings.ToLower(name)), "-")

	var b strings.Builder
	for _, r := range joined {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseAllowedTools accepts both frontmatter forms found in skill corpora:
// a YAML list or a single comma-separated string.
func parseAllowedTools(v interface{}) []string {
	var tools []string

	switch val := v.(type) {
	case string:
		for _, part := range strings.Split(val, ",") {
			if tool := strings.TrimSpace(part); tool != "" {
				tools = append(tools, tool)
			}
		}
	case []interface{}:
		for _, item := range val {
			if tool := strings.TrimSpace(fmt.Sprintf("%v", item)); tool != "" {
				tools = append(tools, tool)
			}
		}
	}

	return tools
}

// extraFields preserves unknown frontmatter keys for forward compatibility.
func extraFields(metaData map[string]interface{}) map[string]string {
	var extra map[string]string
	for key, value := range metaData {
		switch key {
		case metadataNameKey, metadataDescriptionKey, metadataAllowedToolsKey:
			continue
		}
		if extra == nil {
			extra = make(map[string]string)
		}
		extra[key] = fmt.Sprintf("%v", value)
	}
	return extra
}

// extractBody removes the frontmatter block and returns the document body.
func extractBody(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
