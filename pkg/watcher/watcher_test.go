package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopRebuild(context.Context) error { return nil }

func TestNew(t *testing.T) {
	t.Run("requires directories", func(t *testing.T) {
		_, err := New(nil, noopRebuild)
		assert.Error(t, err)
	})

	t.Run("requires rebuild callback", func(t *testing.T) {
		_, err := New([]string{"/tmp/skills"}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects negative debounce", func(t *testing.T) {
		_, err := New([]string{"/tmp/skills"}, noopRebuild, WithDebounce(-1*time.Second))
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		w, err := New([]string{"/tmp/skills"}, noopRebuild, WithDebounce(time.Second))
		require.NoError(t, err)
		assert.Equal(t, time.Second, w.debounce)
	})
}

func TestRelevant(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "markdown write", event: fsnotify.Event{Name: "skills/debugging/SKILL.md", Op: fsnotify.Write}, want: true},
		{name: "markdown create", event: fsnotify.Event{Name: "skills/new.md", Op: fsnotify.Create}, want: true},
		{name: "markdown remove", event: fsnotify.Event{Name: "skills/old.md", Op: fsnotify.Remove}, want: true},
		{name: "directory create", event: fsnotify.Event{Name: "skills/new-skill", Op: fsnotify.Create}, want: true},
		{name: "chmod only", event: fsnotify.Event{Name: "skills/debugging/SKILL.md", Op: fsnotify.Chmod}, want: false},
		{name: "unrelated file", event: fsnotify.Event{Name: "skills/notes.txt", Op: fsnotify.Write}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, relevant(tt.event))
		})
	}
}

func TestRunNoWatchableDirs(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "missing")}, noopRebuild)
	require.NoError(t, err)

	err = w.Run(context.Background())
	assert.Error(t, err)
}

func TestRunRebuildsOnChange(t *testing.T) {
	dir := t.TempDir()

	var rebuilds atomic.Int32
	w, err := New([]string{dir}, func(context.Context) error {
		rebuilds.Add(1)
		return nil
	}, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes should collapse into a single rebuild.
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "debugging.md"),
			[]byte("---\nname: debugging\ndescription: d\n---\n\nBody.\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	assert.Eventually(t, func() bool {
		return rebuilds.Load() == 1
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
