package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func contractStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
		"s3":     NewMockS3ForTests(),
	}
}

func TestStoreContract(t *testing.T) {
	for name, store := range contractStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			body := "Component,Volume\r\nWater,93\r\n"
			info, err := store.Put(ctx, "runs/r1/plan_clip_run_info.csv", strings.NewReader(body), PutOptions{
				ContentType: ContentTypeCSV,
				Metadata:    map[string]string{"run-id": "r1"},
			})
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size != int64(len(body)) || info.ContentType != ContentTypeCSV {
				t.Fatalf("unexpected put info %+v", info)
			}
			if _, err := store.Put(ctx, "runs/r1/plan_clip_run_info.csv", strings.NewReader("x"), PutOptions{}); !errors.Is(err, ErrExists) {
				t.Fatalf("expected ErrExists, got %v", err)
			}

			got, rc, err := store.Get(ctx, "runs/r1/plan_clip_run_info.csv")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(data) != body {
				t.Fatalf("body mismatch: %q", data)
			}
			if got.Metadata["run-id"] != "r1" {
				t.Fatalf("metadata lost: %+v", got.Metadata)
			}

			if _, err := store.Put(ctx, "runs/r1/plan_wells.txt", strings.NewReader("Magbead ethanol well: A11\n"), PutOptions{ContentType: ContentTypeText}); err != nil {
				t.Fatalf("put wells: %v", err)
			}
			if _, err := store.Put(ctx, "runs/r2/plan_wells.txt", strings.NewReader("x"), PutOptions{}); err != nil {
				t.Fatalf("put r2: %v", err)
			}
			list, err := store.List(ctx, "runs/r1/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 2 || list[0].Key != "runs/r1/plan_clip_run_info.csv" || list[1].Key != "runs/r1/plan_wells.txt" {
				t.Fatalf("unexpected list %+v", list)
			}

			if _, err := store.Head(ctx, "runs/missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound from head, got %v", err)
			}
			if _, _, err := store.Get(ctx, "runs/missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound from get, got %v", err)
			}

			url, err := store.PresignURL(ctx, "runs/r1/plan_wells.txt", SignedURLOptions{})
			if err != nil || url == "" {
				t.Fatalf("presign: %q %v", url, err)
			}
			if _, err := store.PresignURL(ctx, "runs/r1/plan_wells.txt", SignedURLOptions{Method: "PUT"}); !errors.Is(err, ErrUnsupported) {
				t.Fatalf("expected ErrUnsupported, got %v", err)
			}

			existed, err := store.Delete(ctx, "runs/r2/plan_wells.txt")
			if err != nil || !existed {
				t.Fatalf("delete: %v %v", existed, err)
			}
			existed, err = store.Delete(ctx, "runs/r2/plan_wells.txt")
			if err != nil || existed {
				t.Fatalf("second delete: %v %v", existed, err)
			}

			if _, err := store.Put(ctx, "../escape", strings.NewReader("x"), PutOptions{}); err == nil {
				t.Fatalf("expected traversal key to be rejected")
			}
		})
	}
}
