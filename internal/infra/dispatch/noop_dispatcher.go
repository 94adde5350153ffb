package dispatch

import (
	"context"

	"github.com/rs/zerolog"

	"game-vip-service/internal/domain/ports/adapter"
)

var _ adapter.CommandDispatcher = (*NoopDispatcher)(nil)

// NoopDispatcher logs commands instead of executing them. Used in dev mode
// and when no host console is wired.
type NoopDispatcher struct {
	log *zerolog.Logger
}

func NewNoopDispatcher(logger *zerolog.Logger) *NoopDispatcher {
	l := logger.With().Str("component", "NoopDispatcher").Logger()
	return &NoopDispatcher{log: &l}
}

func (d *NoopDispatcher) Dispatch(_ context.Context, command string) error {
	d.log.Info().Str("command", command).Msg("noop dispatch")
	return nil
}
