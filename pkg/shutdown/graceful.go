package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func WithSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		signal.Stop(ch)
		cancel()
	}()

	return ctx, cancel
}

// Hook is one resource to stop during shutdown.
type Hook struct {
	Name string
	Stop func(context.Context) error
}

// Drain runs hooks in order under a shared deadline. Failures are logged and
// do not stop the remaining hooks.
func Drain(log *slog.Logger, timeout time.Duration, hooks ...Hook) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, h := range hooks {
		if err := h.Stop(ctx); err != nil {
			log.Error("shutdown hook failed", "hook", h.Name, "err", err)
			continue
		}
		log.Info("shutdown hook done", "hook", h.Name)
	}
}
