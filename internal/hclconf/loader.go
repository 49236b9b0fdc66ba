// Package hclconf is the HCL implementation of the config.Loader interface.
// Manifests may define a variables block whose values are interpolated into
// the rest of the file (for example spec paths sharing a common root).
package hclconf

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/specflow/internal/config"
	"github.com/vk/specflow/internal/ctxlog"
)

// Loader is the HCL-specific implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all top-level blocks of a manifest file.
type fileRoot struct {
	Variables   *variablesBlock   `hcl:"variables,block"`
	Executor    *executorBlock    `hcl:"executor,block"`
	Workers     *workersBlock     `hcl:"workers,block"`
	Retry       *retryBlock       `hcl:"retry,block"`
	Convergence *convergenceBlock `hcl:"convergence,block"`
	Specs       []*specBlock      `hcl:"spec,block"`
}

type variablesBlock struct {
	Remain hcl.Body `hcl:",remain"`
}

type executorBlock struct {
	Command []string `hcl:"command"`
}

type workersBlock struct {
	Concurrency     int `hcl:"concurrency,optional"`
	SequentialFirst int `hcl:"sequential_first,optional"`
}

type retryBlock struct {
	MaxAttempts  int `hcl:"max_attempts,optional"`
	BaseDelayMs  int `hcl:"base_delay_ms,optional"`
	MaxBackoffMs int `hcl:"max_backoff_ms,optional"`
}

type convergenceBlock struct {
	Enabled      bool     `hcl:"enabled,optional"`
	MaxRounds    int      `hcl:"max_rounds,optional"`
	GapDir       string   `hcl:"gap_dir,optional"`
	AuditCommand []string `hcl:"audit_command,optional"`
}

type specBlock struct {
	Name      string   `hcl:"name,label"`
	Path      string   `hcl:"path"`
	DependsOn []string `hcl:"depends_on,optional"`
}

// Load implements config.Loader.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL manifest loader started.", "path", path)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, diags)
	}

	evalCtx, err := buildEvalContext(file.Body)
	if err != nil {
		return nil, err
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, evalCtx, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, diags)
	}

	model := &config.Model{}
	for _, s := range root.Specs {
		model.Specs = append(model.Specs, &config.SpecDef{
			Name:      s.Name,
			Path:      s.Path,
			DependsOn: s.DependsOn,
		})
	}
	if root.Executor != nil {
		model.Executor.Command = root.Executor.Command
	}
	if root.Workers != nil {
		model.Workers.Concurrency = root.Workers.Concurrency
		model.Workers.SequentialFirst = root.Workers.SequentialFirst
	}
	if root.Retry != nil {
		model.Retry.MaxAttempts = root.Retry.MaxAttempts
		model.Retry.BaseDelayMs = root.Retry.BaseDelayMs
		model.Retry.MaxBackoffMs = root.Retry.MaxBackoffMs
	}
	if root.Convergence != nil {
		model.Convergence.Enabled = root.Convergence.Enabled
		model.Convergence.MaxRounds = root.Convergence.MaxRounds
		model.Convergence.GapDir = root.Convergence.GapDir
		model.Convergence.AuditCommand = root.Convergence.AuditCommand
	}

	logger.Debug("HCL manifest loaded.", "specs", len(model.Specs))
	return model, model.Validate()
}

// variablesSchema extracts only the variables blocks in the first pass.
var variablesSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "variables"}},
}

// buildEvalContext statically evaluates the manifest's variables block and
// exposes the values as `variables.<name>` for interpolation elsewhere in
// the file.
func buildEvalContext(body hcl.Body) (*hcl.EvalContext, error) {
	content, _, diags := body.PartialContent(variablesSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading variables block: %w", diags)
	}

	values := make(map[string]cty.Value)
	for _, block := range content.Blocks {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("decoding variables block: %w", diags)
		}
		for name, attr := range attrs {
			// Variables are static; they cannot reference other variables.
			val, diags := attr.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("evaluating variable %q: %w", name, diags)
			}
			values[name] = val
		}
	}

	evalCtx := &hcl.EvalContext{Variables: map[string]cty.Value{}}
	if len(values) > 0 {
		evalCtx.Variables["variables"] = cty.ObjectVal(values)
	}
	return evalCtx, nil
}
