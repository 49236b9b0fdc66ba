package converge

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/spec"
)

// CommandAuditor runs a configured audit command that inspects the codebase
// and writes any gap-specs it authors into GapDir as markdown files. The
// loop clears GapDir before each invocation, so whatever the command leaves
// behind is exactly this round's gap set.
type CommandAuditor struct {
	Command []string
	GapDir  string
}

// Audit implements Auditor. The command receives the codebase ref and the
// gap directory as its final two arguments; its exit status signals audit
// infrastructure failure, not the presence of gaps.
func (a *CommandAuditor) Audit(ctx context.Context, originals []*spec.Spec, codebaseRef string) ([]*spec.Spec, error) {
	logger := ctxlog.FromContext(ctx)
	if len(a.Command) == 0 {
		return nil, fmt.Errorf("audit command not configured")
	}

	args := append(append([]string{}, a.Command[1:]...), codebaseRef, a.GapDir)
	cmd := exec.CommandContext(ctx, a.Command[0], args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Spawning audit command.", "command", a.Command[0], "specs", len(originals))
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, fmt.Errorf("audit command failed: %s", detail)
	}

	gaps, err := spec.LoadDir(ctx, a.GapDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("Audit command finished.", "gaps", len(gaps))
	return gaps, nil
}
