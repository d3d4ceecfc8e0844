package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestReadJSON_Defensive(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var ids []string
	if ReadJSON(ctx, s, "missing", &ids) {
		t.Fatalf("absent key should report false")
	}

	_ = s.Put(ctx, "corrupt", []byte("{not json"))
	ids = []string{"keep"}
	if ReadJSON(ctx, s, "corrupt", &ids) {
		t.Fatalf("corrupt value should report false")
	}
	if len(ids) != 1 || ids[0] != "keep" {
		t.Fatalf("dst should be untouched, got %v", ids)
	}

	if err := WriteJSON(ctx, s, "ok", []string{"a", "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var got []string
	if !ReadJSON(ctx, s, "ok", &got) || len(got) != 2 {
		t.Fatalf("round trip failed: %v", got)
	}
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := WriteJSON(ctx, s, "guest:wishlist", []string{"1", "2"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Put(ctx, "bad", []byte("oops")); !errors.Is(err, ErrNotJSON) {
		t.Fatalf("expected ErrNotJSON, got %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temporary file should be renamed away")
	}

	reopened, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var ids []string
	if !ReadJSON(ctx, reopened, "guest:wishlist", &ids) || len(ids) != 2 {
		t.Fatalf("expected persisted ids, got %v", ids)
	}
	if err := reopened.Delete(ctx, "guest:wishlist"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reopened.Get(ctx, "guest:wishlist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStore_CorruptDocumentStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("corrupt document should not fail open: %v", err)
	}
	if _, err := s.Get(context.Background(), "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty store, got %v", err)
	}
}

func TestPostgresStore_GetPutDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()
	s := NewPostgresStore(db)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO kv_store").WithArgs("k", []byte(`[1]`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT value FROM kv_store").WithArgs("k").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[1]`)))
	mock.ExpectQuery("SELECT value FROM kv_store").WithArgs("missing").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("DELETE FROM kv_store").WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Put(ctx, "k", []byte(`[1]`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, err := s.Get(ctx, "k")
	if err != nil || string(v) != "[1]" {
		t.Fatalf("get: %q %v", v, err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_Migrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv_store").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := NewPostgresStore(db).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
