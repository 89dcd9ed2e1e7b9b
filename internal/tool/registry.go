package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"votcletta/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
)

// Registry holds the locally known tools and executes them.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]domain.Tool
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]domain.Tool),
		logger: logger,
	}
}

func (r *Registry) Register(t domain.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
	r.logger.Debug("registered tool", "name", t.Name())
}

func (r *Registry) Get(name string) domain.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t := r.Get(name)
	if t == nil {
		return "", errors.Newf("unknown tool: %s (available: %v)", name, r.Names())
	}
	return t.Execute(ctx, args)
}

// Descriptors returns the publishable descriptor of every tool that implements
// domain.Describer, ordered by name.
func (r *Registry) Descriptors() ([]domain.ToolDescriptor, error) {
	var descs []domain.ToolDescriptor
	for _, name := range r.Names() {
		d, ok := r.Get(name).(domain.Describer)
		if !ok {
			continue
		}
		desc, err := d.Descriptor()
		if err != nil {
			return nil, errors.Wrapf(err, "describe %s", name)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParametersFor reflects a JSON Schema "parameters" object from the struct v.
// Fields without omitempty are required.
func ParametersFor(v any, description string) (map[string]any, error) {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	s := r.Reflect(v)

	props, err := json.Marshal(s.Properties)
	if err != nil {
		return nil, errors.Wrap(err, "marshal schema properties")
	}
	var properties map[string]any
	if err := json.Unmarshal(props, &properties); err != nil {
		return nil, errors.Wrap(err, "unmarshal schema properties")
	}

	params := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if description != "" {
		params["description"] = description
	}
	if len(s.Required) > 0 {
		params["required"] = s.Required
	}
	return params, nil
}

func ArgsString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	v, ok := args[key]
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// ArgsMap returns args[key] as an object. A JSON-encoded string is decoded.
func ArgsMap(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case string:
		if m == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(m), &out); err != nil {
			return nil, errors.Wrapf(err, "%s must be an object", key)
		}
		return out, nil
	default:
		return nil, errors.Newf("%s must be an object, got %T", key, v)
	}
}
