package objectstore

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
)

func TestNewLocalStoreCreatesBaseDir(t *testing.T) {
	tmpDir := t.TempDir()
	base := tmpDir + "/data"

	store, err := NewLocalStore(base)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	if store == nil {
		t.Fatal("NewLocalStore() returned nil store")
	}
	if _, err := os.Stat(base); os.IsNotExist(err) {
		t.Error("base directory was not created")
	}
}

func TestLocalStoreWriteCommitThenRead(t *testing.T) {
	ctx := context.Background()
	store, _ := NewLocalStore(t.TempDir())

	w, err := store.Writer(ctx, "tenant/obj/snap-1/delta-1")
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	exists, _ := store.Exists(ctx, "tenant/obj/snap-1/delta-1")
	if exists {
		t.Error("object should not be visible before Commit")
	}

	if err := w.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	exists, err = store.Exists(ctx, "tenant/obj/snap-1/delta-1")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
	}

	r, err := store.Reader(ctx, "tenant/obj/snap-1/delta-1")
	if err != nil {
		t.Fatalf("Reader() error = %v", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !bytes.Equal(data, []byte("hello world")) {
		t.Errorf("read %q, want %q", data, "hello world")
	}
}

func TestLocalStoreAbortLeavesNoArtifact(t *testing.T) {
	ctx := context.Background()
	store, _ := NewLocalStore(t.TempDir())

	w, err := store.Writer(ctx, "tenant/obj/snap-1/delta-2")
	if err != nil {
		t.Fatalf("Writer() error = %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Abort(ctx); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	exists, err := store.Exists(ctx, "tenant/obj/snap-1/delta-2")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Error("aborted write left a visible artifact")
	}
}

func TestLocalStoreLs(t *testing.T) {
	ctx := context.Background()
	store, _ := NewLocalStore(t.TempDir())

	for _, p := range []string{"tenant/a", "tenant/b"} {
		w, err := store.Writer(ctx, p)
		if err != nil {
			t.Fatalf("Writer() error = %v", err)
		}
		w.Write([]byte("x"))
		if err := w.Commit(ctx); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
	}

	entries, err := store.Ls(ctx, "tenant")
	if err != nil {
		t.Fatalf("Ls() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Ls() returned %d entries, want 2", len(entries))
	}
}
