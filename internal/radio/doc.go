// Package radio — абстракция радиоустройства трансивера.
//
// Device открывается строкой аргументов (передаётся как есть) и сообщает
// режим работы. Bootstrap поддерживает только ModeNormal: устройство в любом
// другом режиме открыто успешно, но запуск прерывается с ErrUnsupportedMode.
//
// Interface — многоканальный интерфейс поверх Device, через который
// drive loop читает блоки bursts. Устройство и интерфейс создаёт и
// закрывает только оркестратор.
package radio
