// Package source materializes raw skill documents from configured
// directories. It is the only part of the registry that touches the
// filesystem; everything downstream works on already-read document texts.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"

	"github.com/parchment-ai/skillreg/pkg/logger"
)

const skillFileName = "SKILL.md"

// Document is one raw skill document. Path identifies where it came from
// for error reporting; Raw is the unparsed file content.
type Document struct {
	Path string
	Raw  string
}

// Scanner reads skill documents from a list of directories. Earlier
// directories take precedence: when two directories hold a document at the
// same relative path, the first occurrence wins.
type Scanner struct {
	dirs     []string
	patterns []string
}

// Option is a function that configures a Scanner
type Option func(*Scanner) error

// WithDirs sets custom skill directories
func WithDirs(dirs ...string) Option {
	return func(s *Scanner) error {
		if len(dirs) == 0 {
			return errors.New("at least one skill directory must be specified")
		}
		s.dirs = dirs
		return nil
	}
}

// WithDefaultDirs initializes with default skill directories
func WithDefaultDirs() Option {
	return func(s *Scanner) error {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, "failed to get user home directory")
		}
		s.dirs = []string{
			"./.skillreg/skills",                          // Repo-local (highest precedence)
			filepath.Join(homeDir, ".skillreg", "skills"), // User-global
		}
		return nil
	}
}

// WithIncludePatterns restricts scanning to documents whose path relative
// to the skill directory matches at least one doublestar pattern, e.g.
// "*.md" or "security/**/SKILL.md".
func WithIncludePatterns(patterns ...string) Option {
	return func(s *Scanner) error {
		for _, pattern := range patterns {
			if !doublestar.ValidatePattern(pattern) {
				return errors.Errorf("invalid include pattern %q", pattern)
			}
		}
		s.patterns = patterns
		return nil
	}
}

// NewScanner creates a new document scanner
func NewScanner(opts ...Option) (*Scanner, error) {
	s := &Scanner{}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if len(s.dirs) == 0 {
		if err := WithDefaultDirs()(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Dirs returns the directories the scanner reads from.
func (s *Scanner) Dirs() []string {
	dirs := make([]string, len(s.dirs))
	copy(dirs, s.dirs)
	return dirs
}

// Scan reads every skill document under the configured directories.
// Two layouts are recognized, matching how skill libraries are shipped:
// a subdirectory per skill containing SKILL.md, or flat *.md files.
// Missing or unreadable directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]Document, error) {
	var docs []Document
	seen := make(map[string]struct{})

	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dir).Debug("skipping unreadable skill directory")
			continue
		}

		for _, entry := range entries {
			entryPath := filepath.Join(dir, entry.Name())

			// Follow symlinked skill directories.
			info, err := os.Stat(entryPath)
			if err != nil {
				logger.G(ctx).WithError(err).WithField("path", entryPath).Debug("skipping unreadable entry")
				continue
			}

			var docPath, relPath string
			if info.IsDir() {
				docPath = filepath.Join(entryPath, skillFileName)
				relPath = filepath.ToSlash(filepath.Join(entry.Name(), skillFileName))
			} else if strings.HasSuffix(entry.Name(), ".md") {
				docPath = entryPath
				relPath = entry.Name()
			} else {
				continue
			}

			if !s.included(relPath) {
				continue
			}
			if _, dup := seen[relPath]; dup {
				continue
			}

			raw, err := os.ReadFile(docPath)
			if err != nil {
				if !os.IsNotExist(err) {
					logger.G(ctx).WithError(err).WithField("path", docPath).Debug("skipping unreadable skill document")
				}
				continue
			}

			seen[relPath] = struct{}{}
			docs = append(docs, Document{Path: docPath, Raw: string(raw)})
		}
	}

	return docs, nil
}

func (s *Scanner) included(relPath string) bool {
	if len(s.patterns) == 0 {
		return true
	}
	for _, pattern := range s.patterns {
		if ok, err := doublestar.Match(pattern, relPath); err == nil && ok {
			return true
		}
	}
	return false
}
