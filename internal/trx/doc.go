// Package trx — канальный воркер трансивера.
//
// Transceiver обслуживает один канал: читает bursts своего канала из общего
// drive loop и ведёт статистику. Primary-канал (всегда канал 0) дополнительно
// отслеживает опорный номер кадра для остальных каналов.
//
// Жизненный цикл:
//
//	t := trx.New(trx.Config{Channel: 0, Port: 5700, Pump: pump, Radio: iface, Primary: true})
//	t.Start()        // без ошибки: сбои после старта идут в OnFailure
//	...
//	t.Shutdown()     // кооперативный запрос остановки, не блокирует
//	t.Wait(ctx)      // ожидание выхода цикла с дедлайном
//	t.Close()        // освобождение; если цикл ещё жив — принудительно
//
// Воркер никогда не закрывает drive loop и радиоинтерфейс.
package trx
