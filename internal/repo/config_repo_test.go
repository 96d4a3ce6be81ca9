package repo

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB — in-memory двойник таблицы config.
type fakeDB struct {
	rows    map[string]string
	execErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[string]string)}
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	sql = strings.TrimSpace(sql)
	switch {
	case strings.HasPrefix(sql, "INSERT"):
		f.rows[args[0].(string)] = args[1].(string)
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	case strings.HasPrefix(sql, "DELETE"):
		delete(f.rows, args[0].(string))
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	return pgconn.CommandTag{}, errors.New("unexpected sql")
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	return fakeRow{value: v, ok: ok}
}

type fakeRow struct {
	value string
	ok    bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.ok {
		return pgx.ErrNoRows
	}
	p := dest[0].(**string)
	v := r.value
	*p = &v
	return nil
}

func TestConfigRepo_SetGetRemove(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	r := NewConfigRepoWith(db)

	if err := r.Set(ctx, "TRX.IP", "127.0.0.1"); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := r.GetString(ctx, "TRX.IP")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "127.0.0.1" {
		t.Errorf("expected 127.0.0.1, got %q", got)
	}

	if err := r.Remove(ctx, "TRX.IP"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := r.GetString(ctx, "TRX.IP"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestConfigRepo_GetInt(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	db.rows["TRX.Port"] = " 5700 "
	db.rows["TRX.IP"] = "localhost"
	r := NewConfigRepoWith(db)

	port, err := r.GetInt(ctx, "TRX.Port")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if port != 5700 {
		t.Errorf("expected 5700, got %d", port)
	}

	if _, err := r.GetInt(ctx, "TRX.IP"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := r.GetInt(ctx, "Missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConfigRepo_SetPermissionDenied(t *testing.T) {
	db := newFakeDB()
	db.execErr = &pgconn.PgError{Code: "42501", Message: "permission denied for table config"}
	r := NewConfigRepoWith(db)

	err := r.Set(context.Background(), "k", "v")
	if err == nil {
		t.Fatal("expected error")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42501" {
		t.Errorf("expected wrapped PgError 42501, got %v", err)
	}
}

func TestConfigRepo_CloseWithoutPool(t *testing.T) {
	r := NewConfigRepoWith(newFakeDB())
	if err := r.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
