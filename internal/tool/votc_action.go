package tool

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"votcletta/internal/domain"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

const (
	// VOTCActionName is the fixed name the tool is registered under.
	VOTCActionName = "execute_votc_action"
	// VOTCActionDescription is the short description sent on registration.
	VOTCActionDescription = "Execute Voices of the Court game actions in Crusader Kings 3"

	ackFormat = "Action '%s' queued for execution with params: %s"
)

// Acknowledge returns the message the tool reports back to the agent. A nil
// params map is treated as empty. Any action name is accepted.
func Acknowledge(actionName string, params map[string]any) string {
	if params == nil {
		params = map[string]any{}
	}
	return fmt.Sprintf(ackFormat, actionName, Repr(params))
}

var templateFuncs = func() template.FuncMap {
	fm := sprig.TxtFuncMap()
	fm["repr"] = Repr
	return fm
}()

var longDescriptionTmpl = template.Must(template.New("description").Funcs(templateFuncs).Parse(
	`Execute a Voices of the Court game action.

This tool allows agents to trigger actions in the Crusader Kings 3 game through
the Voices of the Court mod. Actions range from simple emotional expressions to
complex diplomatic maneuvers.

Available action categories:
{{- range .Categories }}
- {{ .Name }} ({{ join ", " .Actions }})
{{- end }}

Most actions require player approval before execution. The approval level is
configured in VOTC's config.json under actionApprovalLevels. Actions are not
executed immediately: they are queued and presented to the player for
confirmation unless the action is set to "auto".

Returns a message saying the action was queued for approval or execution.
{{- with .Examples }}

Examples:
{{- range . }}
  {{ $.Name }}({{ squote .Action }}, {{ repr .Params }})
{{- end }}
{{- end }}
`))

// sourceTmpl renders the server-side stub. The agent runtime stores it as the
// tool body; the real work happens in the game's message handler.
var sourceTmpl = template.Must(template.New("source").Funcs(templateFuncs).Parse(
	`def {{ .Name }}(action_name: str, params: dict = None) -> str:
{{ .Description | quote | indent 4 }}
    if params is None:
        params = {}
    return f{{ .Reply | quote }}
`))

// VOTCAction describes the Voices of the Court action tool. Execute only
// acknowledges; it never touches the game.
type VOTCAction struct {
	catalog *Catalog
}

// NewVOTCAction builds the tool. A nil catalog selects the built-in one.
func NewVOTCAction(catalog *Catalog) *VOTCAction {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &VOTCAction{catalog: catalog}
}

func (t *VOTCAction) Name() string        { return VOTCActionName }
func (t *VOTCAction) Description() string { return VOTCActionDescription }

// Knows reports whether action appears in the catalogue.
func (t *VOTCAction) Knows(action string) bool { return t.catalog.Has(action) }

// LongDescription is the agent-facing documentation of the calling convention.
func (t *VOTCAction) LongDescription() (string, error) {
	var buf bytes.Buffer
	err := longDescriptionTmpl.Execute(&buf, map[string]any{
		"Name":       VOTCActionName,
		"Categories": t.catalog.Categories,
		"Examples":   t.catalog.Examples,
	})
	if err != nil {
		return "", errors.Wrap(err, "render tool description")
	}
	return strings.TrimSpace(buf.String()), nil
}

func (t *VOTCAction) Parameters() map[string]any {
	params, err := ParametersFor(&domain.ActionRequest{}, "")
	if err != nil {
		// reflection over a fixed struct cannot fail at runtime
		panic(err)
	}
	return params
}

func (t *VOTCAction) Execute(ctx context.Context, args map[string]any) (string, error) {
	name := ArgsString(args, "action_name")
	if name == "" {
		return "", errors.New("action_name is required")
	}
	params, err := ArgsMap(args, "params")
	if err != nil {
		return "", err
	}
	return Acknowledge(name, params), nil
}

// Descriptor builds the schema object uploaded to the agent runtime.
func (t *VOTCAction) Descriptor() (domain.ToolDescriptor, error) {
	long, err := t.LongDescription()
	if err != nil {
		return domain.ToolDescriptor{}, err
	}
	params, err := ParametersFor(&domain.ActionRequest{}, "")
	if err != nil {
		return domain.ToolDescriptor{}, err
	}

	var src bytes.Buffer
	err = sourceTmpl.Execute(&src, map[string]string{
		"Name":        VOTCActionName,
		"Description": VOTCActionDescription,
		"Reply":       fmt.Sprintf(ackFormat, "{action_name}", "{params}"),
	})
	if err != nil {
		return domain.ToolDescriptor{}, errors.Wrap(err, "render tool source")
	}

	desc := domain.ToolDescriptor{
		Name:        VOTCActionName,
		Description: VOTCActionDescription,
		Parameters:  params,
		SourceCode:  src.String(),
		Tags:        []string{"votc", "ck3"},

		Documentation: long,
	}
	if err := ValidateDescriptor(desc); err != nil {
		return domain.ToolDescriptor{}, err
	}
	return desc, nil
}

var (
	_ domain.Tool      = (*VOTCAction)(nil)
	_ domain.Describer = (*VOTCAction)(nil)
)
