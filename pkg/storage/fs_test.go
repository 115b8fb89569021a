package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ziotom78/instrumentdb/pkg/domain"
	"github.com/ziotom78/instrumentdb/pkg/storage"
	"github.com/ziotom78/instrumentdb/pkg/utils/try"
)

func TestFsStore(t *testing.T) {
	ctx := context.Background()

	t.Run("a stored payload reads back byte for byte", func(t *testing.T) {
		store := try.To(storage.NewFs(t.TempDir())).OrFatal(t)

		ref := try.To(store.Put(
			ctx, "data_files/beam", strings.NewReader("SIMPLE  = T"),
		)).OrFatal(t)

		payload := try.To(store.Get(ctx, ref)).OrFatal(t)
		defer payload.Close()
		content := try.To(io.ReadAll(payload)).OrFatal(t)
		if string(content) != "SIMPLE  = T" {
			t.Errorf("read back %q", content)
		}
	})

	t.Run("storing twice under one name overwrites", func(t *testing.T) {
		store := try.To(storage.NewFs(t.TempDir())).OrFatal(t)

		try.To(store.Put(ctx, "data_files/beam", strings.NewReader("old"))).OrFatal(t)
		ref := try.To(store.Put(
			ctx, "data_files/beam", strings.NewReader("new"),
		)).OrFatal(t)

		payload := try.To(store.Get(ctx, ref)).OrFatal(t)
		defer payload.Close()
		content := try.To(io.ReadAll(payload)).OrFatal(t)
		if string(content) != "new" {
			t.Errorf("read back %q", content)
		}
	})

	t.Run("an unknown ref is a storage error", func(t *testing.T) {
		store := try.To(storage.NewFs(t.TempDir())).OrFatal(t)

		if _, err := store.Get(ctx, "data_files/nope"); !errors.Is(err, domain.ErrStorage) {
			t.Errorf("expected a storage error, got %v", err)
		}
	})

	t.Run("a deleted payload is gone", func(t *testing.T) {
		store := try.To(storage.NewFs(t.TempDir())).OrFatal(t)

		ref := try.To(store.Put(ctx, "data_files/beam", strings.NewReader("x"))).OrFatal(t)
		if err := store.Delete(ctx, ref); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if _, err := store.Get(ctx, ref); !errors.Is(err, domain.ErrStorage) {
			t.Errorf("expected a storage error, got %v", err)
		}
	})

	t.Run("refs escaping the root are rejected", func(t *testing.T) {
		store := try.To(storage.NewFs(t.TempDir())).OrFatal(t)

		if _, err := store.Get(ctx, "../outside"); err == nil {
			t.Error("a ref outside the root was accepted")
		}
	})
}
