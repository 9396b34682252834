package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))

	var out bytes.Buffer
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache path: %v", err)
	}

	want := filepath.Join(tmp, "cache", "topoview")
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCachePathRejectsRemoteBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--cache", "redis", "cache", "path"})
	if err := root.Execute(); err == nil {
		t.Error("expected an error for the redis backend")
	}
}

func TestCacheClearMissingDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "absent"))

	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetOut(io.Discard)
	root.SetArgs([]string{"cache", "clear"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "absent", "topoview")); !os.IsNotExist(err) {
		t.Error("clear should not create the cache directory")
	}
}

func TestCachePruneKeepsLiveEntries(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))

	dir := filepath.Join(tmp, "cache", "topoview")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "layout:abc", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	captureStdout(t)
	root := New(io.Discard, log.InfoLevel).RootCommand()
	root.SetArgs([]string{"cache", "prune"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache prune: %v", err)
	}
	if _, hit, _ := fc.Get(context.Background(), "layout:abc"); !hit {
		t.Error("live entry should survive prune")
	}
}
