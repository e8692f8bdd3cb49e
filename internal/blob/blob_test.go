package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func openDrivers(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	return map[string]Store{
		"fs":     fsStore,
		"memory": NewMemory(),
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			opts := PutOptions{
				ContentType: "text/csv",
				Metadata:    map[string]string{"procedure": "tests.fixtures.Sweep"},
			}
			info, err := store.Put(ctx, "runs/sweep.csv", strings.NewReader("a,b\n1,2\n"), opts)
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if info.Key != "runs/sweep.csv" || info.Size != 8 || info.ETag == "" {
				t.Fatalf("info = %+v", info)
			}

			got, rc, err := store.Get(ctx, "runs/sweep.csv")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			data, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if err := rc.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if string(data) != "a,b\n1,2\n" {
				t.Fatalf("data = %q", data)
			}
			if got.ContentType != "text/csv" || got.Metadata["procedure"] != "tests.fixtures.Sweep" {
				t.Fatalf("info = %+v", got)
			}
			if got.ETag != info.ETag {
				t.Fatalf("etag changed: %q != %q", got.ETag, info.ETag)
			}
		})
	}
}

func TestPutRejectsExistingKey(t *testing.T) {
	ctx := context.Background()
	for name, store := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, "k", strings.NewReader("one"), PutOptions{}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			_, err := store.Put(ctx, "k", strings.NewReader("two"), PutOptions{})
			if !errors.Is(err, ErrExists) {
				t.Fatalf("error = %v, want ErrExists", err)
			}
			// The original object is untouched.
			_, rc, err := store.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			data, _ := io.ReadAll(rc)
			_ = rc.Close()
			if string(data) != "one" {
				t.Fatalf("data = %q", data)
			}
		})
	}
}

func TestHeadAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Head(ctx, "absent"); err == nil {
				t.Fatal("Head on missing key should fail")
			}
			if _, err := store.Put(ctx, "k", strings.NewReader("data"), PutOptions{}); err != nil {
				t.Fatalf("Put: %v", err)
			}
			info, err := store.Head(ctx, "k")
			if err != nil {
				t.Fatalf("Head: %v", err)
			}
			if info.Size != 4 {
				t.Fatalf("size = %d", info.Size)
			}
			ok, err := store.Delete(ctx, "k")
			if err != nil || !ok {
				t.Fatalf("Delete = %v, %v", ok, err)
			}
			if ok, err := store.Delete(ctx, "k"); err != nil || ok {
				t.Fatalf("second Delete = %v, %v", ok, err)
			}
			if _, _, err := store.Get(ctx, "k"); err == nil {
				t.Fatal("Get after delete should fail")
			}
		})
	}
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, store := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"runs/b.csv", "runs/a.csv", "other/c.csv"} {
				if _, err := store.Put(ctx, key, strings.NewReader(key), PutOptions{}); err != nil {
					t.Fatalf("Put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "runs/")
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(infos) != 2 || infos[0].Key != "runs/a.csv" || infos[1].Key != "runs/b.csv" {
				t.Fatalf("list = %+v", infos)
			}
			all, err := store.List(ctx, "")
			if err != nil {
				t.Fatalf("List all: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("all = %+v", all)
			}
		})
	}
}

func TestKeyValidation(t *testing.T) {
	ctx := context.Background()
	for name, store := range openDrivers(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "  ", "/etc/passwd", "../escape", "a/../../b"} {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err == nil {
					t.Fatalf("key %q should be rejected", key)
				}
			}
		})
	}
}

func TestFilesystemSidecarHoldsMetadata(t *testing.T) {
	root := t.TempDir()
	store, err := NewFilesystem(root)
	if err != nil {
		t.Fatalf("NewFilesystem: %v", err)
	}
	if _, err := store.Put(context.Background(), "runs/sweep.csv", strings.NewReader("x"),
		PutOptions{ContentType: "text/csv"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "runs", "sweep.csv.meta")); err != nil {
		t.Fatalf("sidecar missing: %v", err)
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	t.Setenv(EnvDriver, string(DriverMemory))
	store, err := Open(ctx)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %v", store.Driver())
	}

	t.Setenv(EnvDriver, string(DriverFilesystem))
	t.Setenv(EnvFSRoot, t.TempDir())
	store, err = Open(ctx)
	if err != nil {
		t.Fatalf("Open fs: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %v", store.Driver())
	}

	t.Setenv(EnvDriver, "tape")
	if _, err := Open(ctx); err == nil {
		t.Fatal("unknown driver should fail")
	}
}
