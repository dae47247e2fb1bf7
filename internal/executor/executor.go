// Package executor runs grid steps one at a time in dependency order.
//
// Sequential execution is deliberate: the device-resolution cell that
// pinned steps override is process-wide, so the host never lets two step
// executions overlap. See the pin package doc for the hazard this avoids.
package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/gridpin/internal/ctxlog"
	"github.com/vk/gridpin/internal/dag"
	"github.com/vk/gridpin/internal/invoke"
	"github.com/vk/gridpin/internal/registry"
	"github.com/vk/gridpin/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Executor dispatches grid steps to registered runner handlers and records
// their outputs for downstream argument expressions.
type Executor struct {
	registry *registry.Registry
	outputs  map[string]cty.Value
}

// New creates an Executor backed by the given registry.
func New(reg *registry.Registry) *Executor {
	return &Executor{
		registry: reg,
		outputs:  make(map[string]cty.Value),
	}
}

// Run executes every step, ordering them so dependencies run first. The
// first failing step aborts the run.
func (e *Executor) Run(ctx context.Context, steps []*schema.Step) error {
	byID := make(map[string]*schema.Step, len(steps))
	graph := dag.New()
	for _, step := range steps {
		id := step.ID()
		if _, exists := byID[id]; exists {
			return fmt.Errorf("duplicate step %s", id)
		}
		byID[id] = step
		graph.AddNode(id)
	}
	for _, step := range steps {
		for _, depID := range step.DependsOn {
			if _, ok := byID[depID]; !ok {
				return fmt.Errorf("step %s depends on unknown step %s", step.ID(), depID)
			}
			if err := graph.AddEdge(depID, step.ID()); err != nil {
				return err
			}
		}
	}

	order, err := graph.TopologicalOrder()
	if err != nil {
		return err
	}

	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.runStep(ctx, byID[id]); err != nil {
			return fmt.Errorf("step %s: %w", id, err)
		}
	}
	return nil
}

// Output returns the recorded output of a completed step.
func (e *Executor) Output(stepID string) (cty.Value, bool) {
	out, ok := e.outputs[stepID]
	return out, ok
}

func (e *Executor) runStep(ctx context.Context, step *schema.Step) error {
	logger := ctxlog.FromContext(ctx).With("step", step.ID())
	logger.Info("▶️ Starting step")

	runner, ok := e.registry.Lookup(step.RunnerType)
	if !ok {
		return fmt.Errorf("unknown runner type '%s'", step.RunnerType)
	}

	args, err := e.evalArgs(step)
	if err != nil {
		return err
	}

	output, err := invoke.Runner(ctx, runner, args)
	if err != nil {
		return err
	}
	e.outputs[step.ID()] = output

	logger.Info("✅ Finished step")
	return nil
}

// evalArgs evaluates the step's argument attributes against an eval context
// exposing earlier step outputs as step.<runner_type>.<name>.
func (e *Executor) evalArgs(step *schema.Step) (map[string]cty.Value, error) {
	if step.Arguments == nil {
		return nil, nil
	}
	attrs, diags := step.Arguments.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("reading arguments: %s", diags.Error())
	}

	evalCtx := e.buildEvalContext()
	args := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("evaluating argument %q: %s", name, diags.Error())
		}
		args[name] = val
	}
	return args, nil
}

func (e *Executor) buildEvalContext() *hcl.EvalContext {
	byType := make(map[string]map[string]cty.Value)
	for id, out := range e.outputs {
		runnerType, name, ok := splitStepID(id)
		if !ok {
			continue
		}
		if byType[runnerType] == nil {
			byType[runnerType] = make(map[string]cty.Value)
		}
		if out == cty.NilVal {
			out = cty.NullVal(cty.DynamicPseudoType)
		}
		byType[runnerType][name] = out
	}

	stepVars := make(map[string]cty.Value, len(byType))
	for runnerType, instances := range byType {
		stepVars[runnerType] = cty.ObjectVal(instances)
	}

	vars := map[string]cty.Value{}
	if len(stepVars) > 0 {
		vars["step"] = cty.ObjectVal(stepVars)
	}
	return &hcl.EvalContext{Variables: vars}
}

func splitStepID(id string) (runnerType, name string, ok bool) {
	return strings.Cut(id, ".")
}
