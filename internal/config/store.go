package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justforname/osmo-trx/internal/repo"
)

// Store — хранилище конфигурации.
//
// GetString и GetInt возвращают ошибку, совместимую с ErrKeyNotFound,
// если ключа нет, и с ErrTypeMismatch, если значение не того типа.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	GetString(ctx context.Context, key string) (string, error)
	GetInt(ctx context.Context, key string) (int, error)
	Close() error
}

// OpenFunc открывает хранилище по location.
type OpenFunc func(ctx context.Context, location string) (Store, error)

// Open открывает хранилище: Postgres для postgres:// DSN, иначе YAML-файл.
func Open(ctx context.Context, location string) (Store, error) {
	if isPostgres(location) {
		pool, err := repo.NewPool(ctx, location)
		if err != nil {
			return nil, err
		}
		return &pgStore{repo: repo.NewConfigRepo(pool)}, nil
	}

	fs, err := OpenFile(location)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

func isPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}

// pgStore переводит ошибки repo в ошибки пакета config.
type pgStore struct {
	repo *repo.ConfigRepo
}

func (s *pgStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Set(ctx, key, value)
}

func (s *pgStore) Remove(ctx context.Context, key string) error {
	return s.repo.Remove(ctx, key)
}

func (s *pgStore) GetString(ctx context.Context, key string) (string, error) {
	v, err := s.repo.GetString(ctx, key)
	return v, translate(err)
}

func (s *pgStore) GetInt(ctx context.Context, key string) (int, error) {
	v, err := s.repo.GetInt(ctx, key)
	return v, translate(err)
}

func (s *pgStore) Close() error {
	return s.repo.Close()
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrKeyNotFound, err)
	case errors.Is(err, repo.ErrInvalidValue):
		return fmt.Errorf("%w: %w", ErrTypeMismatch, err)
	default:
		return err
	}
}
