package dispatch

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"game-vip-service/internal/domain/ports/adapter"
)

var _ adapter.CommandDispatcher = (*ExecDispatcher)(nil)

// ExecDispatcher runs commands through a shell, optionally behind a wrapper
// such as a game-console client. Each Dispatch call blocks until the command
// finished, which gives callers the awaited-in-order semantics the command
// chains rely on.
type ExecDispatcher struct {
	shell  string
	prefix string
	log    *zerolog.Logger
}

func NewExecDispatcher(shell, prefix string, logger *zerolog.Logger) *ExecDispatcher {
	l := logger.With().Str("component", "ExecDispatcher").Logger()
	return &ExecDispatcher{shell: shell, prefix: prefix, log: &l}
}

func (d *ExecDispatcher) Dispatch(ctx context.Context, command string) error {
	full := command
	if d.prefix != "" {
		full = strings.TrimSpace(d.prefix + " " + command)
	}
	d.log.Debug().Str("command", full).Msg("dispatching")

	cmd := exec.CommandContext(ctx, d.shell, "-c", full)
	out, err := cmd.CombinedOutput()
	if err != nil {
		d.log.Error().Err(err).Str("command", full).Str("output", strings.TrimSpace(string(out))).Msg("command failed")
		return err
	}
	return nil
}
