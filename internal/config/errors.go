package config

import (
	"errors"
	"fmt"
)

// Ошибки проверки конфигурации.
var (
	// ErrStoreUnreachable — хранилище не открывается.
	ErrStoreUnreachable = errors.New("config store unreachable")

	// ErrStoreNotWritable — хранилище открылось, но запись отклонена.
	ErrStoreNotWritable = errors.New("config store not writable")

	// ErrRequiredKeyMissing — обязательный ключ не читается.
	ErrRequiredKeyMissing = errors.New("required config key missing")

	// ErrKeyNotFound — ключа нет в хранилище.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch — значение ключа другого типа.
	ErrTypeMismatch = errors.New("value type mismatch")
)

// RequiredKeyError — ошибка чтения обязательного ключа.
type RequiredKeyError struct {
	Key string
	Err error
}

func (e *RequiredKeyError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrRequiredKeyMissing, e.Key, e.Err)
}

// Is позволяет errors.Is(err, ErrRequiredKeyMissing).
func (e *RequiredKeyError) Is(target error) bool {
	return target == ErrRequiredKeyMissing
}

func (e *RequiredKeyError) Unwrap() error {
	return e.Err
}
