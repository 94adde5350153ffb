package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"game-vip-service/internal/domain"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/domain/ports/adapter"
)

// CommandService resolves a definition's command templates and dispatches
// them strictly in order, each awaited before the next. A failing command
// aborts the rest of the chain; entitlement state is already durable by the
// time any command runs, so a failure here never corrupts it.
type CommandService struct {
	dispatcher adapter.CommandDispatcher
	log        *zerolog.Logger
}

func NewCommandService(dispatcher adapter.CommandDispatcher, logger *zerolog.Logger) *CommandService {
	l := logger.With().Str("component", "CommandService").Logger()
	return &CommandService{dispatcher: dispatcher, log: &l}
}

// RunActivateCommands runs the definition's activation chain.
func (s *CommandService) RunActivateCommands(ctx context.Context, vip *model.VipDefinition, playerName string) error {
	if vip == nil {
		return nil
	}
	return s.runSequential(ctx, vip.CommandsOnActivate, commandVars(vip, playerName))
}

// RunExpireCommands runs the definition's expiry chain.
func (s *CommandService) RunExpireCommands(ctx context.Context, vip *model.VipDefinition, playerName string) error {
	if vip == nil {
		return nil
	}
	return s.runSequential(ctx, vip.CommandsOnExpire, commandVars(vip, playerName))
}

// Dispatch runs a single already-resolved command.
func (s *CommandService) Dispatch(ctx context.Context, resolved string) error {
	resolved = strings.TrimSpace(resolved)
	if resolved == "" {
		return nil
	}
	return s.dispatcher.Dispatch(ctx, resolved)
}

func (s *CommandService) runSequential(ctx context.Context, templates []string, vars map[string]string) error {
	for i, tmpl := range templates {
		resolved := ApplyTemplate(tmpl, vars)
		if resolved == "" {
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, resolved); err != nil {
			s.log.Error().Err(err).Int("index", i).Str("command", resolved).Msg("command chain aborted")
			return fmt.Errorf("command %d of %d: %w", i+1, len(templates), err)
		}
	}
	return nil
}

func commandVars(vip *model.VipDefinition, playerName string) map[string]string {
	return map[string]string{
		"player":          playerName,
		"vipId":           vip.ID,
		"vipDisplay":      vip.DisplayName,
		"durationSeconds": strconv.FormatInt(vip.DurationSeconds, 10),
		"durationHuman":   domain.FormatDuration(vip.DurationSeconds),
	}
}

// ApplyTemplate substitutes {key} placeholders and trims the result.
func ApplyTemplate(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return strings.TrimSpace(out)
}
