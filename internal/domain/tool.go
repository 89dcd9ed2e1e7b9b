package domain

import "context"

// Tool is the interface for locally executable agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Describer is implemented by tools that can be published to a remote agent runtime.
type Describer interface {
	Descriptor() (ToolDescriptor, error)
}

// ToolDescriptor is the explicit schema object uploaded to the agent runtime.
// It documents the calling convention; it is never executed by this process.
type ToolDescriptor struct {
	Name        string         `json:"name" yaml:"name" validate:"required,max=128,tool_name"`
	Description string         `json:"description" yaml:"description" validate:"required"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters" validate:"required"`
	SourceCode  string         `json:"source_code" yaml:"source_code" validate:"required"`
	Tags        []string       `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Documentation is the agent-facing function description. Runtimes show it
	// where function-calling models read tool docs; Description is the summary.
	Documentation string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
}

// ActionRequest is the shape an agent produces when it invokes the VOTC action tool.
// The downstream message handler consumes it; this module only describes it.
type ActionRequest struct {
	ActionName string         `json:"action_name" jsonschema_description:"The name of the action to execute (e.g. \"becomeLovers\")"`
	Params     map[string]any `json:"params,omitempty" jsonschema_description:"Dictionary of parameters for the action (action-specific)"`
}
