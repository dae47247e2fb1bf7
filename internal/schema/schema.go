// Package schema declares the HCL shapes of user-facing grid files.
package schema

import "github.com/hashicorp/hcl/v2"

// StepArgs represents the content of the 'arguments' block within a step.
// The body stays undecoded until execution so argument expressions can
// reference earlier step outputs.
type StepArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Step represents a `step` block from a user's grid file: one runnable
// instance of a registered node type.
type Step struct {
	RunnerType string    `hcl:"runner_type,label"`
	Name       string    `hcl:"instance_name,label"`
	Arguments  *StepArgs `hcl:"arguments,block"`
	DependsOn  []string  `hcl:"depends_on,optional"`
}

// ID returns the step's unique address within a grid, "runner_type.name".
func (s *Step) ID() string {
	return s.RunnerType + "." + s.Name
}

// GridConfig represents the top-level structure of a user's grid file.
type GridConfig struct {
	Steps []*Step  `hcl:"step,block"`
	Body  hcl.Body `hcl:",remain"`
}
