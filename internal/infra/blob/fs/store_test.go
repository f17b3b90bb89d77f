package fs

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assemblycore/internal/blob/core"
)

func TestPutWritesFileAndSidecar(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	info, err := store.Put(ctx, "runs/r1/plan_wells.txt", strings.NewReader("SOC column: A1\n"), core.PutOptions{ContentType: core.ContentTypeText})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "runs", "r1", "plan_wells.txt"))
	if err != nil || string(data) != "SOC column: A1\n" {
		t.Fatalf("file content %q %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "runs", "r1", "plan_wells.txt"+metaSuffix)); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
	if !strings.HasPrefix(info.URL, "file://") {
		t.Fatalf("expected file url, got %s", info.URL)
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "runs", "r1"))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestPutKeepsOriginalOnConflict(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "a.csv", strings.NewReader("first"), core.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "a.csv", strings.NewReader("second"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	_, rc, err := store.Get(ctx, "a.csv")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = rc.Close() }()
	b, _ := io.ReadAll(rc)
	if string(b) != "first" {
		t.Fatalf("expected original content, got %q", b)
	}
}

func TestReservedAndInvalidKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"", "/abs.csv", "runs/../../x", "plan.meta"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}

func TestListSkipsSidecarsAndFiltersPrefix(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"runs/b/x.csv", "runs/a/y.csv", "other/z.csv"} {
		if _, err := store.Put(ctx, key, strings.NewReader(key), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	list, err := store.List(ctx, "runs/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Key != "runs/a/y.csv" || list[1].Key != "runs/b/x.csv" {
		t.Fatalf("unexpected list %+v", list)
	}
}
