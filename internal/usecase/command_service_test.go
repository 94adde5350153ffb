package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"game-vip-service/internal/domain/model"
)

// recordingDispatcher captures dispatched commands and can fail a given index.
type recordingDispatcher struct {
	commands []string
	failAt   int
	failWith error
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{failAt: -1}
}

func (d *recordingDispatcher) Dispatch(_ context.Context, command string) error {
	if d.failAt >= 0 && len(d.commands) == d.failAt {
		return d.failWith
	}
	d.commands = append(d.commands, command)
	return nil
}

func TestRunActivateCommands(t *testing.T) {
	d := newRecordingDispatcher()
	svc := NewCommandService(d, testLogger())
	vip := &model.VipDefinition{
		ID:              "gold",
		DisplayName:     "Gold",
		DurationSeconds: 90061,
		CommandsOnActivate: []string{
			"lp user {player} parent add {vipId}",
			"broadcast {player} is now {vipDisplay} for {durationHuman}",
			"title {player} times {durationSeconds}",
		},
	}

	if err := svc.RunActivateCommands(context.Background(), vip, "Steve"); err != nil {
		t.Fatalf("RunActivateCommands: %v", err)
	}
	want := []string{
		"lp user Steve parent add gold",
		"broadcast Steve is now Gold for 1d 1h 1m 1s",
		"title Steve times 90061",
	}
	if len(d.commands) != len(want) {
		t.Fatalf("dispatched %v", d.commands)
	}
	for i := range want {
		if d.commands[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, d.commands[i], want[i])
		}
	}
}

func TestRunCommandsAbortOnFailure(t *testing.T) {
	d := newRecordingDispatcher()
	d.failAt = 1
	d.failWith = errors.New("console unavailable")
	svc := NewCommandService(d, testLogger())
	vip := &model.VipDefinition{
		ID:              "gold",
		DurationSeconds: 60,
		CommandsOnExpire: []string{
			"first {player}",
			"second {player}",
			"third {player}",
		},
	}

	err := svc.RunExpireCommands(context.Background(), vip, "Steve")
	if err == nil {
		t.Fatal("expected chain failure")
	}
	if !errors.Is(err, d.failWith) {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "command 2 of 3") {
		t.Errorf("err lacks chain position: %v", err)
	}
	if len(d.commands) != 1 || d.commands[0] != "first Steve" {
		t.Errorf("dispatched after failure: %v", d.commands)
	}
}

func TestRunCommandsNilDefinition(t *testing.T) {
	d := newRecordingDispatcher()
	svc := NewCommandService(d, testLogger())
	if err := svc.RunActivateCommands(context.Background(), nil, "Steve"); err != nil {
		t.Fatal(err)
	}
	if err := svc.RunExpireCommands(context.Background(), nil, "Steve"); err != nil {
		t.Fatal(err)
	}
	if len(d.commands) != 0 {
		t.Errorf("dispatched for nil definition: %v", d.commands)
	}
}

func TestDispatchSkipsBlank(t *testing.T) {
	d := newRecordingDispatcher()
	svc := NewCommandService(d, testLogger())
	if err := svc.Dispatch(context.Background(), "   "); err != nil {
		t.Fatal(err)
	}
	if len(d.commands) != 0 {
		t.Errorf("blank command dispatched: %v", d.commands)
	}
}

func TestApplyTemplate(t *testing.T) {
	vars := map[string]string{"player": "Steve", "vipId": "gold"}
	cases := []struct {
		in   string
		want string
	}{
		{"give {player} {vipId}", "give Steve gold"},
		{"{player} {player}", "Steve Steve"},
		{"no placeholders", "no placeholders"},
		{"  padded {vipId}  ", "padded gold"},
		{"{unknown} stays", "{unknown} stays"},
	}
	for _, c := range cases {
		if got := ApplyTemplate(c.in, vars); got != c.want {
			t.Errorf("ApplyTemplate(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
