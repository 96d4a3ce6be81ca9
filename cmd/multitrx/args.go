package main

import (
	"errors"
	"fmt"
	"strconv"
)

const usageLine = "multitrx <chans> <device args>"

// errUsage — неверное число аргументов.
var errUsage = errors.New("usage: " + usageLine)

// invocation — разобранные позиционные аргументы.
type invocation struct {
	Channels   int
	DeviceArgs string
}

// parseArgs разбирает [chans] [device-args].
//
// Без аргументов — один канал и пустые аргументы устройства. Верхняя
// граница числа каналов проверяется оркестратором до открытия чего-либо.
func parseArgs(args []string) (invocation, error) {
	inv := invocation{Channels: 1}

	switch len(args) {
	case 2:
		inv.DeviceArgs = args[1]
		fallthrough
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return invocation{}, fmt.Errorf("invalid channel count %q", args[0])
		}
		inv.Channels = n
	case 0:
	default:
		return invocation{}, errUsage
	}

	return inv, nil
}
