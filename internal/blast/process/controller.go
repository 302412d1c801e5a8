package process

import (
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultGracePeriod is the time between interrupt and kill on cancellation.
const DefaultGracePeriod = 3 * time.Second

var errNotStarted = errors.New("process not started")

// controller manages the child's lifecycle with platform-appropriate signals.
type controller interface {
	Start(cmd *exec.Cmd) error
	Interrupt(cmd *exec.Cmd) error
	Kill(cmd *exec.Cmd) error
}

// wait blocks until cmd exits. On ctx cancellation the child is interrupted, given
// grace to exit, then killed. It always reaps the child before returning.
func wait(ctx context.Context, c controller, cmd *exec.Cmd, grace time.Duration) error {
	if cmd.Process == nil {
		return errNotStarted
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = c.Interrupt(cmd)

		timer := time.NewTimer(grace)
		defer timer.Stop()
		select {
		case <-done:
		case <-timer.C:
			_ = c.Kill(cmd)
			<-done
		}
		return ctx.Err()
	}
}
