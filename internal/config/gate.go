package config

import (
	"context"
	"fmt"
	"io"
)

// Обязательные ключи конфигурации.
const (
	KeyLogLevel = "Log.Level"
	KeyTRXPort  = "TRX.Port"
	KeyTRXIP    = "TRX.IP"
)

// Тестовый ключ для проверки записи. Никогда не остаётся в хранилище.
const (
	TestKey   = "sadf732zdvj2"
	testValue = "9999"
)

// Summary — проверенные значения, нужные следующим стадиям запуска.
type Summary struct {
	LogLevel string
	Port     int
	Address  string
}

// Validate проверяет открытое хранилище: запись тестового ключа и чтение
// обязательных ключей.
//
// Тестовый ключ удаляется независимо от результата записи.
func Validate(ctx context.Context, store Store) (Summary, error) {
	setErr := store.Set(ctx, TestKey, testValue)
	rmErr := store.Remove(ctx, TestKey)
	if setErr != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrStoreNotWritable, setErr)
	}
	if rmErr != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrStoreNotWritable, rmErr)
	}

	var s Summary
	var err error

	if s.LogLevel, err = store.GetString(ctx, KeyLogLevel); err != nil {
		return Summary{}, &RequiredKeyError{Key: KeyLogLevel, Err: err}
	}
	if s.Port, err = store.GetInt(ctx, KeyTRXPort); err != nil {
		return Summary{}, &RequiredKeyError{Key: KeyTRXPort, Err: err}
	}
	if s.Address, err = store.GetString(ctx, KeyTRXIP); err != nil {
		return Summary{}, &RequiredKeyError{Key: KeyTRXIP, Err: err}
	}

	return s, nil
}

// Gate открывает хранилище по location и проверяет его.
//
// Вызывается до инициализации логгера: диагностика пишется в stderr.
// При ошибке хранилище закрыто; при успехе владение переходит вызывающему.
func Gate(ctx context.Context, open OpenFunc, location string, stderr io.Writer) (Store, Summary, error) {
	store, err := open(ctx, location)
	if err != nil {
		fmt.Fprintf(stderr, "Config: store %s could not be opened: %v\n", location, err)
		return nil, Summary{}, fmt.Errorf("%w: %w", ErrStoreUnreachable, err)
	}

	summary, err := Validate(ctx, store)
	if err != nil {
		if rk, ok := err.(*RequiredKeyError); ok {
			fmt.Fprintf(stderr, "Config: failed query on %s: %v\n", rk.Key, rk.Err)
		} else {
			fmt.Fprintf(stderr, "Config: failed to set test key, permission to access the store? %v\n", err)
		}
		if cerr := store.Close(); cerr != nil {
			fmt.Fprintf(stderr, "Config: failed to close store: %v\n", cerr)
		}
		return nil, Summary{}, err
	}

	return store, summary, nil
}
