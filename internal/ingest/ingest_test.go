package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.PDF", "a.txt", "notes.docx", "sub/c.xlsx", "sub/d.png", ".hidden/e.txt", ".f.txt",
	} {
		touch(t, filepath.Join(root, name))
	}

	tests := []struct {
		name       string
		skipHidden bool
		want       []string
	}{
		{
			name:       "skip hidden",
			skipHidden: true,
			want:       []string{"a.txt", "b.PDF", "sub/c.xlsx", "sub/d.png"},
		},
		{
			name: "include hidden",
			want: []string{".f.txt", ".hidden/e.txt", "a.txt", "b.PDF", "sub/c.xlsx", "sub/d.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, stats, err := ScanDirectory(root, tt.skipHidden)
			if err != nil {
				t.Fatalf("ScanDirectory() error = %v", err)
			}
			got := make([]string, 0, len(files))
			for _, f := range files {
				rel, _ := filepath.Rel(root, f)
				got = append(got, filepath.ToSlash(rel))
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ScanDirectory() mismatch (-want +got):\n%s", diff)
			}
			if int(stats.Matched) != len(tt.want) {
				t.Errorf("Matched = %d, want %d", stats.Matched, len(tt.want))
			}
		})
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, _, err := ScanDirectory(" ", false); err == nil {
		t.Error("ScanDirectory(blank) error = nil")
	}
	if _, _, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), false); err == nil {
		t.Error("ScanDirectory(missing) error = nil")
	}
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "existing.txt")
	touch(t, existing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("StartWatcher() error = %v", err)
	}

	next := func() string {
		t.Helper()
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
		}
		return ""
	}
	if got := next(); got != existing {
		t.Errorf("initial event = %q, want %q", got, existing)
	}

	touch(t, filepath.Join(root, "ignored.docx"))
	created := filepath.Join(root, "new.pdf")
	touch(t, created)
	if got := next(); got != created {
		t.Errorf("event = %q, want %q", got, created)
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherRequiresRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, nil); err == nil {
		t.Error("StartWatcher() error = nil, want error for no roots")
	}
}
