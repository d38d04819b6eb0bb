// SPDX-License-Identifier: EPL-2.0

package exttool

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrExternalTool = errors.New("external tool failed")
	ErrNoEncoder    = errors.New("no Vorbis encoder found")
)

// ToolError records a failed invocation together with whatever the tool
// printed.
type ToolError struct {
	Tool   string
	Args   []string
	Output []byte
	Err    error
}

func newToolError(tool string, args []string, output []byte, cause error) *ToolError {
	return &ToolError{
		Tool:   tool,
		Args:   args,
		Output: output,
		Err:    errors.Wrapf(ErrExternalTool, "%s: %v", tool, cause),
	}
}

func (e *ToolError) Error() string {
	out := strings.TrimSpace(string(e.Output))
	if out == "" {
		return e.Err.Error()
	}

	return fmt.Sprintf("%v\n%s", e.Err, out)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Command renders the invocation for diagnostics.
func (e *ToolError) Command() string {
	return strings.Join(append([]string{e.Tool}, e.Args...), " ")
}
