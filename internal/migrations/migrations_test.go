package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseVersionNumber(t *testing.T) {
	cases := []struct {
		name    string
		version int
		ok      bool
	}{
		{"V1__attendance_schema.sql", 1, true},
		{"V12__add_index.sql", 12, true},
		{"V1_missing_separator.sql", 0, false},
		{"attendance.sql", 0, false},
		{"Vx__bad.sql", 0, false},
	}
	for _, tc := range cases {
		version, ok := parseVersionNumber(tc.name)
		if version != tc.version || ok != tc.ok {
			t.Errorf("parseVersionNumber(%q) = %d, %v; want %d, %v", tc.name, version, ok, tc.version, tc.ok)
		}
	}
}

func TestListMigrationsSortsByVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"V10__later.sql", "V2__second.sql", "V1__first.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	migs, err := listMigrations(dir)
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("got %d migrations", len(migs))
	}
	want := []int{1, 2, 10}
	for i, mig := range migs {
		if mig.Version != want[i] {
			t.Errorf("position %d: version %d, want %d", i, mig.Version, want[i])
		}
	}
}

func TestListMigrationsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"V1__a.sql", "V1__b.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := listMigrations(dir); err == nil {
		t.Fatal("expected duplicate version error")
	}
}

func TestListMigrationsShippedSchema(t *testing.T) {
	migs, err := listMigrations(filepath.Join("..", "..", "migrations"))
	if err != nil {
		t.Fatalf("listMigrations: %v", err)
	}
	if len(migs) == 0 || migs[0].Version != 1 {
		t.Fatalf("expected V1 schema migration, got %+v", migs)
	}
}
