package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunUsageExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args []string
		want int
	}{
		{args: nil, want: 2},
		{args: []string{"help"}, want: 0},
		{args: []string{"bogus"}, want: 2},
		{args: []string{"prune", "--max-age=-1h"}, want: 2},
		{args: []string{"similarity", "--no-such-flag"}, want: 2},
		{args: []string{"validate", "-h"}, want: 0},
	}
	for _, tc := range tests {
		if got := Run(tc.args); got != tc.want {
			t.Fatalf("Run(%v) = %d, want %d", tc.args, got, tc.want)
		}
	}
}

func TestCollectFixtureFilesRecursive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.json"), `{"articles":[]}`)
	mustWriteFile(t, filepath.Join(root, "b.txt"), `x`)
	mustWriteFile(t, filepath.Join(root, ".hidden.json"), `{}`)
	mustWriteFile(t, filepath.Join(root, "nested", "c.json"), `{"articles":[]}`)

	files, err := collectFixtureFiles(root, true)
	if err != nil {
		t.Fatalf("collectFixtureFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 json files, got %d (%v)", len(files), files)
	}

	files, err = collectFixtureFiles(root, false)
	if err != nil {
		t.Fatalf("collectFixtureFiles failed: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 json file, got %d (%v)", len(files), files)
	}
}

func TestCollectFixtureFilesSingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fixture.json")
	mustWriteFile(t, path, `{"articles":[]}`)

	files, err := collectFixtureFiles(path, true)
	if err != nil {
		t.Fatalf("collectFixtureFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Fatalf("expected the file itself, got %v", files)
	}
}

func TestRunValidate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "ok.json"), `{"articles":[{"source":"BBC","url":"https://a.test/1","title":"Cat rescued"}]}`)
	if code := runValidate([]string{"--path", root}); code != 0 {
		t.Fatalf("expected valid fixtures, got exit %d", code)
	}

	mustWriteFile(t, filepath.Join(root, "bad.json"), `{"articles":[{"source":"BBC"}]}`)
	if code := runValidate([]string{"--path", root}); code != 1 {
		t.Fatalf("expected invalid fixture to fail, got exit %d", code)
	}
}

func TestRetentionCutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	got := retentionCutoff(now, 48*time.Hour)
	want := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("retentionCutoff = %s, want %s", got, want)
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}
