// SPDX-License-Identifier: EPL-2.0

package exttool

import (
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// Runner executes an external program and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec. Dir, when set, is the working
// directory of the child.
type ExecRunner struct {
	Dir string
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, newToolError(name, args, out, err)
	}

	return out, nil
}

// DefaultEncoders are tried in order by LookPath when no candidate is given.
var DefaultEncoders = []string{"oggenc2", "oggenc"}

// LookPath returns the first candidate found on PATH.
func LookPath(candidates ...string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultEncoders
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if path, err := exec.LookPath(c); err == nil {
			return path, nil
		}
	}

	return "", errors.Wrapf(ErrNoEncoder, "tried %v", candidates)
}
