package repo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier — подмножество pgxpool.Pool, нужное ConfigRepo.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ConfigRepo — key-value таблица конфигурации в Postgres.
//
// Схема совпадает с таблицей CONFIG OpenBTS:
//
//	CREATE TABLE config (keystring TEXT PRIMARY KEY, valuestring TEXT);
type ConfigRepo struct {
	db   Querier
	pool *pgxpool.Pool
}

// NewConfigRepo создаёт ConfigRepo поверх пула. Close закрывает пул.
func NewConfigRepo(pool *pgxpool.Pool) *ConfigRepo {
	return &ConfigRepo{db: pool, pool: pool}
}

// NewConfigRepoWith создаёт ConfigRepo поверх произвольного Querier
// (транзакция, тестовый двойник). Close ничего не закрывает.
func NewConfigRepoWith(db Querier) *ConfigRepo {
	return &ConfigRepo{db: db}
}

// Set записывает значение ключа (upsert).
func (r *ConfigRepo) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO config (keystring, valuestring)
		VALUES ($1, $2)
		ON CONFLICT (keystring) DO UPDATE SET valuestring = EXCLUDED.valuestring
	`
	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove удаляет ключ. Отсутствующий ключ не считается ошибкой.
func (r *ConfigRepo) Remove(ctx context.Context, key string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM config WHERE keystring = $1`, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// GetString возвращает строковое значение ключа.
func (r *ConfigRepo) GetString(ctx context.Context, key string) (string, error) {
	var value *string
	err := r.db.QueryRow(ctx, `SELECT valuestring FROM config WHERE keystring = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	if value == nil {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return *value, nil
}

// GetInt возвращает целочисленное значение ключа.
func (r *ConfigRepo) GetInt(ctx context.Context, key string) (int, error) {
	s, err := r.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %w", key, s, ErrInvalidValue)
	}
	return n, nil
}

// Close закрывает пул, если ConfigRepo им владеет.
func (r *ConfigRepo) Close() error {
	if r.pool != nil {
		r.pool.Close()
	}
	return nil
}
