// Package drive строит общий sample pump (drive loop) и план каналов.
//
// # План каналов
//
// NewPlan проверяет 1 ≤ N ≤ MaxChannels до любых аллокаций, затем создаёт
// радиоинтерфейс на N каналов и ровно один Pump, привязанный к базовому
// порту и адресу. Канал i использует порт ChannelPort(base, i) = base + 2*i:
// пара портов (данные + управление) на канал.
//
// # Drive loop
//
// DriveLoop читает блоки с радиоинтерфейса и раздаёт bursts по буферам
// каналов. Переполненный буфер не блокирует цикл: burst отбрасывается и
// учитывается в trx_pump_dropped_bursts_total. Буферы создаются в
// конструкторе, поэтому воркер, запущенный раньше соседей, ничего не теряет.
//
// Раз в clockInterval drive loop отправляет "IND CLOCK <fn>" на
// address:port.
package drive
