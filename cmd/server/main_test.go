package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	files := []string{
		"valkiria-2024-03-10.log",
		"valkiria-2024-03-08.log",
		"valkiria-2024-03-01.log",
		"valkiria-broken.log",
		"other-2024-01-01.log",
	}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cleanupOldLogs(dir, 3, now)

	for name, want := range map[string]bool{
		"valkiria-2024-03-10.log": true,
		"valkiria-2024-03-08.log": true,
		"valkiria-2024-03-01.log": false,
		"valkiria-broken.log":     true,
		"other-2024-01-01.log":    true,
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		if exists := err == nil; exists != want {
			t.Errorf("%s exists = %v, want %v", name, exists, want)
		}
	}
}
