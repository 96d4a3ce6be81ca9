// Package shutdown реализует флаг завершения процесса.
//
// Flag поднимается один раз и больше не сбрасывается. Единственный
// писатель в штатном режиме — доставка SIGINT/SIGTERM, установленная
// через Install: она выполняет ровно одну операцию, атомарную запись.
// Воркер, упавший после старта, тоже может поднять флаг через Raise.
//
// Управляющий цикл опрашивает флаг с фиксированным интервалом (Poll).
package shutdown
