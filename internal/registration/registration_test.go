package registration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"votcletta/internal/domain"
	"votcletta/internal/letta"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistry is an in-memory domain.ToolRegistry.
type fakeRegistry struct {
	tools     []domain.ToolRecord
	createErr error
	listErr   error

	created    []domain.ToolDescriptor
	listCalls  int
	createCall int
}

func (f *fakeRegistry) Create(ctx context.Context, desc domain.ToolDescriptor) (*domain.ToolRecord, error) {
	f.createCall++
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, t := range f.tools {
		if t.Name == desc.Name {
			return nil, errors.Wrapf(domain.ErrToolExists, "name %s", desc.Name)
		}
	}
	rec := domain.ToolRecord{ID: "tool-" + uuid.NewString(), Name: desc.Name, Description: desc.Description}
	f.tools = append(f.tools, rec)
	f.created = append(f.created, desc)
	return &rec, nil
}

func (f *fakeRegistry) List(ctx context.Context) ([]domain.ToolRecord, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.ToolRecord(nil), f.tools...), nil
}

var _ domain.ToolRegistry = (*fakeRegistry)(nil)

func testDescriptor() domain.ToolDescriptor {
	return domain.ToolDescriptor{
		Name:        "execute_votc_action",
		Description: "Execute Voices of the Court game actions in Crusader Kings 3",
		Parameters:  map[string]any{"type": "object"},
		SourceCode:  "def execute_votc_action(action_name: str, params: dict = None) -> str: ...",
	}
}

func testConsole() (*Console, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewConsole(&out, &errOut), &out, &errOut
}

func TestRegister_Success(t *testing.T) {
	reg := &fakeRegistry{}
	con, out, errOut := testConsole()

	rec, err := Register(context.Background(), Options{Registry: reg, Descriptor: testDescriptor(), Console: con})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "tool-"))
	assert.Equal(t, "execute_votc_action", rec.Name)
	if diff := cmp.Diff([]domain.ToolDescriptor{testDescriptor()}, reg.created); diff != "" {
		t.Fatalf("uploaded descriptor mismatch (-want +got):\n%s", diff)
	}

	assert.Contains(t, out.String(), "Connecting to Letta server at http://localhost:8283...")
	assert.Contains(t, out.String(), "Registering execute_votc_action tool...")
	assert.Contains(t, out.String(), "✓ Successfully registered tool!")
	assert.Contains(t, out.String(), "  Tool ID: "+rec.ID)
	assert.Empty(t, errOut.String())
}

func TestRegister_FailurePrintsHints(t *testing.T) {
	reg := &fakeRegistry{createErr: errors.New("dial tcp 127.0.0.1:9999: connection refused")}
	con, out, errOut := testConsole()

	_, err := Register(context.Background(), Options{
		Registry:   reg,
		Descriptor: testDescriptor(),
		ServerURL:  "http://letta.internal:9999",
		Console:    con,
	})
	require.Error(t, err)

	stderr := errOut.String()
	assert.Contains(t, stderr, "✗ Error registering tool: dial tcp 127.0.0.1:9999: connection refused")
	assert.Contains(t, stderr, "1. Letta server is running at http://letta.internal:9999 (default: http://localhost:8283)")
	assert.Contains(t, stderr, "2. Your Letta credentials are set")
	assert.Contains(t, stderr, "3. Your Letta server is accessible")
	assert.NotContains(t, stderr, "already registered")
	assert.NotContains(t, out.String(), "Successfully")
}

func TestRegister_ConflictHint(t *testing.T) {
	reg := &fakeRegistry{tools: []domain.ToolRecord{{ID: "tool-old", Name: "execute_votc_action"}}}
	con, _, errOut := testConsole()

	_, err := Register(context.Background(), Options{Registry: reg, Descriptor: testDescriptor(), Console: con})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolExists))
	assert.Contains(t, errOut.String(), "A tool named execute_votc_action is already registered")
}

func TestVerify_Found(t *testing.T) {
	reg := &fakeRegistry{tools: []domain.ToolRecord{
		{ID: "tool-1", Name: "send_message"},
		{ID: "tool-2", Name: "execute_votc_action"},
	}}
	con, out, _ := testConsole()

	assert.True(t, Verify(context.Background(), reg, "execute_votc_action", con))
	assert.Contains(t, out.String(), "✓ Tool verified! ID: tool-2")
}

func TestVerify_NotFoundDoesNotFail(t *testing.T) {
	reg := &fakeRegistry{tools: []domain.ToolRecord{
		{ID: "tool-1", Name: "send_message"},
		{ID: "tool-3", Name: "execute_votc_action_v2"},
	}}
	con, out, errOut := testConsole()

	assert.False(t, Verify(context.Background(), reg, "execute_votc_action", con))
	assert.Contains(t, out.String(), "✗ Tool not found in registry")
	assert.Empty(t, errOut.String())
}

func TestVerify_EmptyRegistry(t *testing.T) {
	con, out, _ := testConsole()
	assert.False(t, Verify(context.Background(), &fakeRegistry{}, "execute_votc_action", con))
	assert.Contains(t, out.String(), "Tool not found in registry")
}

func TestVerify_ListErrorIsReported(t *testing.T) {
	reg := &fakeRegistry{listErr: errors.New("HTTP 503")}
	con, _, errOut := testConsole()

	assert.False(t, Verify(context.Background(), reg, "execute_votc_action", con))
	assert.Contains(t, errOut.String(), "✗ Error verifying tool: HTTP 503")
}

func TestRun_SuccessVerifiesOnce(t *testing.T) {
	reg := &fakeRegistry{}
	con, out, _ := testConsole()

	code := Run(context.Background(), Options{Registry: reg, Descriptor: testDescriptor(), Console: con})

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, reg.createCall)
	assert.Equal(t, 1, reg.listCalls)
	assert.Contains(t, out.String(), "VOTC Action Tool Registration for Letta")
	assert.Contains(t, out.String(), "Tool verified!")
	assert.Contains(t, out.String(), "Registration complete!")
}

func TestRun_RegistrationFailureSkipsVerify(t *testing.T) {
	reg := &fakeRegistry{createErr: errors.New("connection refused")}
	con, out, _ := testConsole()

	code := Run(context.Background(), Options{Registry: reg, Descriptor: testDescriptor(), Console: con})

	assert.Equal(t, 1, code)
	assert.Equal(t, 0, reg.listCalls)
	assert.NotContains(t, out.String(), "Verifying")
	assert.NotContains(t, out.String(), "Registration complete!")
}

func TestRun_VerifyFailureStillSucceeds(t *testing.T) {
	reg := &fakeRegistry{listErr: errors.New("timeout")}
	con, out, errOut := testConsole()

	code := Run(context.Background(), Options{Registry: reg, Descriptor: testDescriptor(), Console: con})

	assert.Equal(t, 0, code)
	assert.Equal(t, 1, reg.listCalls)
	assert.Contains(t, errOut.String(), "Error verifying tool: timeout")
	assert.Contains(t, out.String(), "Registration complete!")
}

func TestConsole_NoColorOnBuffers(t *testing.T) {
	con, out, errOut := testConsole()
	con.Success("ok")
	con.Failure("bad")
	assert.Equal(t, "✓ ok\n", out.String())
	assert.Equal(t, "✗ bad\n", errOut.String())
}

func TestRun_DefaultsConsoleToStdio(t *testing.T) {
	reg := &fakeRegistry{}

	var code int
	require.NotPanics(t, func() {
		code = Run(context.Background(), Options{Registry: reg, Descriptor: testDescriptor()})
	})
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, reg.createCall)
}

func TestDefaultServerURLMatchesClient(t *testing.T) {
	assert.Equal(t, letta.DefaultBaseURL, DefaultServerURL)
}
