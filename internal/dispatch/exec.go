package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Options controls task unit execution.
type Options struct {
	// Dir is the child's working directory. The dispatcher always passes its
	// own directory here so task units see a stable relative-path
	// environment no matter where the scheduler invoked us from.
	Dir string

	// Env is the base environment; defaults to os.Environ().
	Env []string

	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs one unit to completion and returns its exit code.
//
// The returned error is non-nil only when the child could not be started
// (or the unit vanished between scan and exec); a child that ran and exited
// non-zero is NOT an error here — status pass-through is the contract, and
// interpreting the code is the scheduler's job.
func Execute(ctx context.Context, unit Unit, args []string, opt Options) (int, error) {
	cmd := exec.CommandContext(ctx, unit.Path, args...)
	cmd.Dir = opt.Dir

	env := opt.Env
	if env == nil {
		env = os.Environ()
	}
	cmd.Env = ensureUserPath(env)

	// Task units must not read stdin (boundary contract); leave it closed so
	// a misbehaving unit fails fast instead of hanging under cron.
	cmd.Stdin = nil
	cmd.Stdout = opt.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opt.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("exec %s: %w", unit.Name, err)
	}
	return 0, nil
}

// ensureUserPath prepends $HOME/.local/bin to PATH when missing, so task
// units can locate user-installed helpers regardless of how sparse the
// scheduler's environment is (cron famously ships PATH=/usr/bin:/bin).
func ensureUserPath(env []string) []string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return env
	}
	local := filepath.Join(home, ".local", "bin")

	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if !strings.HasPrefix(kv, "PATH=") {
			out = append(out, kv)
			continue
		}
		found = true
		val := strings.TrimPrefix(kv, "PATH=")
		if pathContains(val, local) {
			out = append(out, kv)
		} else {
			out = append(out, "PATH="+local+string(os.PathListSeparator)+val)
		}
	}
	if !found {
		out = append(out, "PATH="+local)
	}
	return out
}

func pathContains(pathVal, dir string) bool {
	for _, p := range strings.Split(pathVal, string(os.PathListSeparator)) {
		if p == dir {
			return true
		}
	}
	return false
}
