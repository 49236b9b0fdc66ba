package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vk/specflow/internal/ctxlog"
	"github.com/vk/specflow/internal/spec"
)

// Local executes specs by shelling out to a configured command, appending
// the spec's file path as the final argument. In production the command is
// an agent CLI; the scheduler never looks inside.
type Local struct {
	command []string
}

// NewLocal creates a subprocess executor for the given command and
// arguments. The command slice must not be empty.
func NewLocal(command []string) *Local {
	return &Local{command: command}
}

// resultLine is the optional machine-readable trailer the command may print
// as its last stdout line.
type resultLine struct {
	CostUSD float64 `json:"cost_usd"`
}

// Execute implements Executor. A non-zero exit status becomes a failed
// Result carrying the stderr tail, with the raised error preserved for
// transient/fatal classification by the caller.
func (l *Local) Execute(ctx context.Context, s *spec.Spec) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("spec", s.Name)
	if len(l.command) == 0 {
		return nil, fmt.Errorf("executor command not configured")
	}

	args := append(append([]string{}, l.command[1:]...), s.Path)
	cmd := exec.CommandContext(ctx, l.command[0], args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Spawning executor command.", "command", l.command[0])
	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	res := &Result{
		Success:  runErr == nil,
		Duration: elapsed,
		Output:   stdout.String(),
	}
	res.CostUSD = parseCost(stdout.String())

	if runErr != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = runErr.Error()
		}
		res.Error = detail
		return res, fmt.Errorf("executor command failed: %s", detail)
	}

	logger.Debug("Executor command finished.", "duration", elapsed, "cost_usd", res.CostUSD)
	return res, nil
}

// parseCost reads the trailing JSON result line, if present. Commands that
// don't report cost simply yield zero.
func parseCost(output string) float64 {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return 0
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if !strings.HasPrefix(last, "{") {
		return 0
	}
	var rl resultLine
	if err := json.Unmarshal([]byte(last), &rl); err != nil {
		return 0
	}
	return rl.CostUSD
}
