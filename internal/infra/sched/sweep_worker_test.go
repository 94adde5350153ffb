package sched

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"game-vip-service/internal/config"
	"game-vip-service/internal/domain/model"
	"game-vip-service/internal/infra/storage"
	"game-vip-service/internal/usecase"
)

type recordingDispatcher struct {
	commands []string
}

func (d *recordingDispatcher) Dispatch(_ context.Context, command string) error {
	d.commands = append(d.commands, command)
	return nil
}

func newTestWorker(t *testing.T) (*SweepWorker, *usecase.EntitlementUseCase, *recordingDispatcher) {
	t.Helper()
	l := zerolog.Nop()
	log := &l

	catalog, err := config.NewCatalog(map[string]*model.VipDefinition{
		"gold": {
			DisplayName:      "Gold",
			DurationSeconds:  3600,
			CommandsOnExpire: []string{"lp user {player} parent remove gold"},
		},
	}, "")
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	players := storage.NewPlayerStateStore(dir, log)
	history := storage.NewHistoryStore(dir, log)

	entitlements := usecase.NewEntitlementUseCase(catalog, players, history, log)
	sweepUC := usecase.NewSweepUseCase(catalog, players, history, log)

	dispatcher := &recordingDispatcher{}
	commands := usecase.NewCommandService(dispatcher, log)
	return NewSweepWorker(10*time.Millisecond, sweepUC, commands, log), entitlements, dispatcher
}

func TestRunStopsOnCancel(t *testing.T) {
	worker, _, _ := newTestWorker(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestSweepDispatchesExpiryCommands(t *testing.T) {
	worker, entitlements, dispatcher := newTestWorker(t)
	gold, err := entitlements.AdminAdd("gold", "steve", "Steve", 1)
	if err != nil || !gold.Applied() {
		t.Fatalf("grant: %+v %v", gold, err)
	}

	time.Sleep(1100 * time.Millisecond) // let the one-second grant lapse
	worker.runSweep(context.Background())

	if len(dispatcher.commands) != 1 || dispatcher.commands[0] != "lp user Steve parent remove gold" {
		t.Errorf("expiry commands: %v", dispatcher.commands)
	}
}

func TestWindowLabel(t *testing.T) {
	cases := []struct {
		seconds int64
		want    string
	}{
		{3600, "1h"},
		{86400, "1d"},
		{7 * 86400, "7d"},
	}
	for _, c := range cases {
		if got := windowLabel(c.seconds); got != c.want {
			t.Errorf("windowLabel(%d) = %q, want %q", c.seconds, got, c.want)
		}
	}
}
