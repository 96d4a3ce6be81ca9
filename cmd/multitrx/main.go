// multitrx — многоканальный трансивер.
//
// Использование:
//
//	multitrx [flags] [chans] [device args]
//
// Перед запуском проверяет хранилище конфигурации (--config), затем
// открывает радиоустройство и запускает по воркеру на канал. Завершается
// по SIGINT/SIGTERM.
//
// Коды выхода: 0 — штатная остановка, 1 — ошибка запуска или сбой
// воркера, 2 — неверные аргументы.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/justforname/osmo-trx/internal/orchestrator"
)

// version задаётся через ldflags при сборке.
var version = "dev"

// Коды выхода.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// options — флаги командной строки.
type options struct {
	configLocation string
	metricsAddr    string
	amqpURL        string
	pollInterval   time.Duration
	grace          time.Duration
}

func main() {
	// .env не обязателен
	_ = godotenv.Load()

	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute выполняет команду и возвращает код выхода.
func execute(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "multitrx [chans] [device args]",
		Short:         "Multi-channel transceiver",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 2 {
				return errUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := parseArgs(args)
			if err != nil {
				return err
			}
			code = run(cmd.Context(), inv, opts, stderr)
			return nil
		},
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.Flags()
	// Аргументы устройства могут начинаться с "-": флаги только до позиционных
	flags.SetInterspersed(false)
	flags.StringVar(&opts.configLocation, "config", envOr("TRX_CONFIG", "/etc/osmo-trx/trx.yaml"), "config store: YAML file path or postgres:// DSN")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", envOr("TRX_METRICS_ADDR", ":9110"), "address for /healthz and /metrics, empty disables")
	flags.StringVar(&opts.amqpURL, "amqp-url", os.Getenv("RABBITMQ_URL"), "RabbitMQ URL for lifecycle events, empty disables")
	flags.DurationVar(&opts.pollInterval, "poll-interval", time.Second, "shutdown flag poll interval")
	flags.DurationVar(&opts.grace, "grace", 2*time.Second, "time to wait for channel workers on shutdown")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stdout, usageLine)
		} else {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return exitUsage
	}
	return code
}

// run запускает оркестратор и HTTP-сервер метрик.
func run(ctx context.Context, inv invocation, opts *options, stderr io.Writer) int {
	events := newEventLink(opts.amqpURL)
	defer events.Close()

	orch := orchestrator.New(orchestrator.Config{
		Channels:      inv.Channels,
		DeviceArgs:    inv.DeviceArgs,
		StoreLocation: opts.configLocation,
		Events:        events.Publisher,
		PollInterval:  opts.pollInterval,
		GraceInterval: opts.grace,
		Stderr:        stderr,
	})

	srv := startHTTP(opts.metricsAddr, orch, stderr)
	defer stopHTTP(srv, stderr)

	if err := orch.Run(ctx); err != nil {
		if errors.Is(err, orchestrator.ErrWorkerFailed) {
			fmt.Fprintln(stderr, "multitrx stopped after channel failure:", err)
		} else {
			fmt.Fprintln(stderr, "multitrx failed to start:", err)
		}
		return exitFailure
	}
	return exitOK
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
