package macro

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/ava12/plotline/internal/ctxlog"
)

// DefaultShell runs substitution commands when ShellRunner.Shell is empty.
const DefaultShell = "/bin/sh"

// Runner runs a substitution command and returns its standard output.
// A command that ran but failed must be reported as *ExitError.
type Runner interface {
	Run(ctx context.Context, command string) ([]byte, error)
}

// ExitError reports a command that finished with non-zero status.
type ExitError struct {
	Command string
	Status  int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.Status)
}

// ShellRunner passes commands to a shell as "<shell> -c <command>".
type ShellRunner struct {
	Shell  string
	Dir    string
	Stderr io.Writer
}

func (r ShellRunner) Run(ctx context.Context, command string) ([]byte, error) {
	shell := r.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	cmd.Stderr = r.Stderr
	out, e := cmd.Output()
	if e == nil {
		return out, nil
	}

	var ee *exec.ExitError
	if errors.As(e, &ee) {
		ctxlog.FromContext(ctx).Debug("substitution command failed", "command", command, "status", ee.ExitCode())
		return out, &ExitError{command, ee.ExitCode()}
	}
	return nil, e
}
