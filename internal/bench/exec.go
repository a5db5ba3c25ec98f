package bench

import (
	"context"
	"os"
	"os/exec"
)

// Execer runs external commands. The production implementation shells out;
// tests substitute a recorder so provisioning logic can run without a
// bench installation.
type Execer interface {
	// Run executes a command in dir, streaming output to the terminal
	Run(ctx context.Context, dir, name string, args ...string) error
	// Output executes a command in dir and returns its stdout
	Output(ctx context.Context, dir, name string, args ...string) (string, error)
	// StartDetached launches a command in dir and does not wait for it
	StartDetached(dir, name string, args ...string) error
}

// systemExecer is the os/exec-backed Execer
type systemExecer struct{}

// NewSystemExecer creates the default Execer
func NewSystemExecer() Execer {
	return systemExecer{}
}

func (systemExecer) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func (systemExecer) Output(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	return string(out), err
}

func (systemExecer) StartDetached(dir, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}
