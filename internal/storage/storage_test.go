package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tw-accounting/twacc/pkg/domain"
)

func backends(t *testing.T) map[string]KV {
	t.Helper()
	dir := t.TempDir()
	file, err := NewFileKV(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatalf("NewFileKV() error: %v", err)
	}
	db, err := NewSQLiteKV(filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV() error: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck
	return map[string]KV{
		"file":   file,
		"sqlite": db,
		"memory": NewMemoryKV(),
	}
}

func TestKV(t *testing.T) {
	ctx := context.Background()
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := kv.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
			}
			if err := kv.Set(ctx, "k", []byte("one")); err != nil {
				t.Fatalf("Set() error: %v", err)
			}
			if err := kv.Set(ctx, "k", []byte("two")); err != nil {
				t.Fatalf("Set() overwrite error: %v", err)
			}
			got, err := kv.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if string(got) != "two" {
				t.Errorf("Get() = %q, want %q", got, "two")
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if err := kv.Delete(ctx, "k"); err != nil {
				t.Fatalf("second Delete() error: %v", err)
			}
			if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileKVPermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV() error: %v", err)
	}
	if err := kv.Set(context.Background(), AuthKey, []byte("{}")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	info, err := os.Stat(kv.path(AuthKey))
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
}

func TestSQLiteKVReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	ctx := context.Background()

	db, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV() error: %v", err)
	}
	if err := db.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	db.Close() //nolint:errcheck

	db, err = NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer db.Close() //nolint:errcheck
	got, err := db.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get() = %q, %v; want v", got, err)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestAuthStore(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	s := NewAuthStore(kv)

	rec, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if rec.Token != "" || rec.User != nil || rec.IsAuthenticated {
		t.Errorf("empty store Load() = %+v, want zero", rec)
	}

	want := AuthRecord{Token: "jwt", User: &domain.User{ID: 1, Email: "a@b.co"}, IsAuthenticated: true}
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if s.Token() != "jwt" {
		t.Errorf("Token() = %q, want jwt", s.Token())
	}

	// A fresh store over the same KV sees the persisted record.
	got, err := NewAuthStore(kv).Load(ctx)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Token != "jwt" || got.User == nil || got.User.Email != "a@b.co" || !got.IsAuthenticated {
		t.Errorf("rehydrated = %+v", got)
	}

	if err := s.ClearToken(); err != nil {
		t.Fatalf("ClearToken() error: %v", err)
	}
	got, _ = NewAuthStore(kv).Load(ctx)
	if got.Token != "" || got.User != nil || got.IsAuthenticated {
		t.Errorf("after ClearToken = %+v, want zero", got)
	}
}

func TestAuthRecordKeys(t *testing.T) {
	kv := NewMemoryKV()
	if err := NewAuthStore(kv).Save(context.Background(), AuthRecord{Token: "t", IsAuthenticated: true}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	data, _ := kv.Get(context.Background(), AuthKey)
	const want = `{"token":"t","user":null,"isAuthenticated":true}`
	if string(data) != want {
		t.Errorf("persisted = %s, want %s", data, want)
	}
}

func TestAuthStoreCorruptRecord(t *testing.T) {
	kv := NewMemoryKV()
	kv.Set(context.Background(), AuthKey, []byte("{not json")) //nolint:errcheck
	s := NewAuthStore(kv)
	if _, err := s.Load(context.Background()); err == nil {
		t.Fatal("expected error for corrupt record")
	}
	if s.Token() != "" {
		t.Errorf("Token() = %q, want empty", s.Token())
	}
}
