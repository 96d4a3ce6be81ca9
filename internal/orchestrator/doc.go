// Package orchestrator управляет жизненным циклом процесса трансивера.
//
// Orchestrator отвечает за:
//   - Проверку числа каналов до любых аллокаций
//   - Проверку хранилища конфигурации (config.Gate) до инициализации логгера
//   - Установку обработчиков SIGINT/SIGTERM
//   - Открытие радиоустройства и проверку режима
//   - Построение плана каналов и общего drive loop
//   - Запуск воркера на каждый канал (Spawn)
//   - Упорядоченную остановку (Sequencer)
//
// Порядок захвата ресурсов: устройство → радиоинтерфейс → drive loop →
// воркеры. Освобождение строго обратное.
//
// # Остановка
//
// Sequencer проходит состояния:
//
//	RUNNING → STOPPING → DRAINING → TORN_DOWN
//
// STOPPING наступает только когда управляющий цикл увидел поднятый
// shutdown.Flag. Затем всем воркерам отправляется Shutdown, в DRAINING
// каждый ожидается через Wait с общим дедлайном grace interval; воркер,
// не уложившийся в дедлайн, закрывается принудительно. Только после этого
// закрываются воркеры, drive loop, радиоинтерфейс и устройство.
package orchestrator
