package source

import (
	"embed"
	"io/fs"
	"path"

	"github.com/pkg/errors"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// Builtin returns the skill documents shipped with the library. They are
// meant to be appended after on-disk documents so user-provided skills with
// the same id take precedence.
func Builtin() ([]Document, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read builtin skills")
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		name := path.Join("builtin", entry.Name())
		raw, err := fs.ReadFile(builtinFS, name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read builtin skill %q", name)
		}
		docs = append(docs, Document{Path: name, Raw: string(raw)})
	}

	return docs, nil
}
