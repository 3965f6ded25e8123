package archive

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/newthinker/bondcalc/internal/core"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte("date,value\n2024-01-31,118.2\n")

	if err := fs.Write(ctx, "indexes/ICP.csv", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := fs.Read(ctx, "indexes/ICP.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.txt")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	fs.Write(ctx, "exists.txt", []byte("data"))
	exists, _ = fs.Exists(ctx, "exists.txt")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_List(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Write(ctx, "reports/P1/a.csv", []byte("a"))
	fs.Write(ctx, "reports/P1/b.csv", []byte("b"))
	fs.Write(ctx, "reports/P2/c.csv", []byte("c"))

	paths, err := fs.List(ctx, "reports/P1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(paths)

	want := []string{"reports/P1/a.csv", "reports/P1/b.csv"}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("List = %v, want %v", paths, want)
	}

	paths, err = fs.List(ctx, "reports/P9")
	if err != nil || len(paths) != 0 {
		t.Errorf("List missing prefix = %v, %v; want empty", paths, err)
	}
}

func TestLocalFS_ReadMissing(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	_, err := fs.Read(context.Background(), "indexes/none.csv")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Read missing error = %v, want NOT_FOUND", err)
	}
}

func TestLocalFS_StaysUnderBase(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	if err := fs.Write(ctx, "../../escape.csv", []byte("x")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	exists, _ := fs.Exists(ctx, "escape.csv")
	if !exists {
		t.Error("expected the write to land under the base directory")
	}
}

func TestLocalFS_CanceledContext(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := fs.Write(ctx, "a.csv", []byte("a")); !errors.Is(err, context.Canceled) {
		t.Errorf("Write error = %v, want context.Canceled", err)
	}
}

func TestLocalFS_Delete(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	fs.Write(ctx, "delete.txt", []byte("data"))
	fs.Delete(ctx, "delete.txt")

	exists, _ := fs.Exists(ctx, "delete.txt")
	if exists {
		t.Error("file should be deleted")
	}
}
