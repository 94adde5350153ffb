package adapter

import "context"

// CommandDispatcher runs one already-resolved host command. Implementations
// decide what a "command" means (game console, shell script, no-op); the core
// only requires that Dispatch returns once the command has been attempted.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, command string) error
}
