package prescription

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestFileJournal_AppendCreatesAndAppends(t *testing.T) {
	fs := afero.NewMemMapFs()
	j := NewFileJournal(fs, "/logs/presc.txt")
	ctx := context.Background()

	if err := j.Append(ctx, "first"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := j.Append(ctx, "second"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	b, err := afero.ReadFile(fs, "/logs/presc.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "first\nsecond\n" {
		t.Errorf("unexpected contents %q", b)
	}
}

func TestFileJournal_ReadOnlyFails(t *testing.T) {
	j := NewFileJournal(afero.NewReadOnlyFs(afero.NewMemMapFs()), "presc.txt")
	if err := j.Append(context.Background(), "line"); err == nil {
		t.Error("expected error on read-only filesystem")
	}
}

func TestFileJournal_OSFilesystem(t *testing.T) {
	dir := t.TempDir()
	journals := NewFileJournals(filepath.Join(dir, "presc.txt"), filepath.Join(dir, "remark.txt"))

	if err := journals.Prescriptions.Append(context.Background(), "Himura Kenshin"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}
	if err := journals.Remarks.Append(context.Background(), "Client: Hello there"); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	b, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(dir, "remark.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Client: Hello there\n" {
		t.Errorf("unexpected remark contents %q", b)
	}
	if fj, ok := journals.Prescriptions.(*FileJournal); !ok || fj.Path() != filepath.Join(dir, "presc.txt") {
		t.Errorf("unexpected prescription journal %#v", journals.Prescriptions)
	}
}

func TestFileJournal_MissingDirectoryFails(t *testing.T) {
	dir := t.TempDir()
	j := NewFileJournal(afero.NewOsFs(), filepath.Join(dir, "missing", "presc.txt"))
	if err := j.Append(context.Background(), "line"); err == nil {
		t.Error("expected error when parent directory does not exist")
	}
}
