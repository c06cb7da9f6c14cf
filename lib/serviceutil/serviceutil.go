package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Returns a context that will live until Ctrl+C is pressed,
// a second Ctrl+C falls back to the default behavior and kills the process.
func SignalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
			slog.Warn("interrupt received, stopping after the current pair")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigs)
	}()

	return ctx
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}
