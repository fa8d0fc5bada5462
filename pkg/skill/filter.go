package skill

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// FilterByAllowlist keeps only the records whose id appears in the
// allowlist. An empty allowlist keeps everything.
func FilterByAllowlist(records []*Record, allowed []string) []*Record {
	if len(allowed) == 0 {
		return records
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}

	filtered := make([]*Record, 0, len(records))
	for _, rec := range records {
		if _, ok := allowedSet[rec.ID]; ok {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// FilterByTools keeps records whose every allowed-tool tag matches at least
// one capability pattern. Patterns use glob syntax (e.g. "bash", "mcp_*").
// Records declaring no tools request no elevated capability and always pass.
// An empty pattern list keeps everything.
func FilterByTools(records []*Record, patterns []string) ([]*Record, error) {
	if len(patterns) == 0 {
		return records, nil
	}

	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid capability pattern %q", pattern)
		}
		compiled = append(compiled, g)
	}

	filtered := make([]*Record, 0, len(records))
	for _, rec := range records {
		if toolsPermitted(rec.AllowedTools, compiled) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

func toolsPermitted(tools []string, patterns []glob.Glob) bool {
	for _, tool := range tools {
		matched := false
		for _, pattern := range patterns {
			if pattern.Match(tool) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
