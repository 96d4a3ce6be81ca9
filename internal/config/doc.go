// Package config проверяет хранилище конфигурации до запуска остальных
// подсистем (ConfigGate).
//
// # Обзор
//
// Хранилище — key-value таблица (строковые ключи, строковые или целые
// значения). Поддерживаются два backend'а, выбираемые по location:
//
//   - postgres:// или postgresql:// — таблица config в Postgres (repo.ConfigRepo)
//   - всё остальное — путь к YAML-файлу (FileStore)
//
// # Проверка
//
//  1. Open — хранилище должно открываться (ErrStoreUnreachable)
//  2. Set/Remove тестового ключа — хранилище должно быть доступно на запись
//     (ErrStoreNotWritable); тестовый ключ удаляется при любом исходе
//  3. Чтение Log.Level, TRX.Port, TRX.IP (ErrRequiredKeyMissing)
//
// Проверка выполняется до инициализации логгера: уровень логирования
// сам хранится в проверяемой конфигурации. Поэтому Gate пишет диагностику
// в переданный io.Writer (os.Stderr), а не в slog.
//
//	store, summary, err := config.Gate(ctx, config.Open, location, os.Stderr)
//	if err != nil {
//	    os.Exit(1)
//	}
//	defer store.Close()
//	logger := telemetry.SetupLogger(summary.LogLevel)
package config
