// Package registration publishes a tool descriptor to an agent runtime and
// checks that the runtime lists it afterwards.
package registration

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"votcletta/internal/domain"
	"votcletta/internal/letta"

	"github.com/cockroachdb/errors"
)

// DefaultServerURL is shown in the remediation hints when no URL is configured.
const DefaultServerURL = letta.DefaultBaseURL

// ErrRegistrationFailed is returned to the CLI after the failure has already
// been reported on the console.
var ErrRegistrationFailed = errors.New("tool registration failed")

var rule = strings.Repeat("=", 60)

type Options struct {
	Registry   domain.ToolRegistry
	Descriptor domain.ToolDescriptor
	ServerURL  string
	Console    *Console
	Logger     *slog.Logger
}

func (o *Options) normalize() {
	if o.ServerURL == "" {
		o.ServerURL = DefaultServerURL
	}
	if o.Console == nil {
		o.Console = NewConsole(os.Stdout, os.Stderr)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
}

// Register submits the descriptor once. Failures are printed with remediation
// hints and returned; the caller decides the exit status.
func Register(ctx context.Context, opts Options) (*domain.ToolRecord, error) {
	opts.normalize()
	con := opts.Console

	con.Printf("Connecting to Letta server at %s...\n", opts.ServerURL)
	con.Printf("Registering %s tool...\n", opts.Descriptor.Name)

	rec, err := opts.Registry.Create(ctx, opts.Descriptor)
	if err != nil {
		opts.Logger.Debug("registration failed", "tool", opts.Descriptor.Name, "err", err)
		con.Errorf("\n")
		con.Failure("Error registering tool: %v", err)
		con.Errorf("\nMake sure:\n")
		con.Errorf("  1. Letta server is running at %s (default: %s)\n", opts.ServerURL, DefaultServerURL)
		con.Errorf("  2. Your Letta credentials are set if the server requires them (LETTA_API_KEY, LETTA_SERVER_PASSWORD)\n")
		con.Errorf("  3. Your Letta server is accessible from this machine\n")
		if errors.Is(err, domain.ErrToolExists) {
			con.Errorf("\nA tool named %s is already registered. Delete it on the server before registering again.\n", opts.Descriptor.Name)
		}
		return nil, err
	}

	opts.Logger.Debug("tool registered", "tool", rec.Name, "id", rec.ID)
	con.Println()
	con.Success("Successfully registered tool!")
	con.Printf("  Tool name: %s\n", rec.Name)
	con.Printf("  Tool ID: %s\n", rec.ID)
	con.Printf("\nYou can now attach this tool to agents by name: %s\n", rec.Name)
	return rec, nil
}

// Verify lists the registry and looks for name. It reports the outcome on the
// console and never fails the run.
func Verify(ctx context.Context, registry domain.ToolRegistry, name string, con *Console) bool {
	con.Println()
	con.Println("Verifying tool registration...")

	tools, err := registry.List(ctx)
	if err != nil {
		con.Failure("Error verifying tool: %v", err)
		return false
	}

	for _, t := range tools {
		if t.Name == name {
			con.Success("Tool verified! ID: %s", t.ID)
			return true
		}
	}
	con.Miss("Tool not found in registry")
	return false
}

// Run registers the descriptor and, only when that succeeds, verifies it.
// It returns the process exit status: 1 when registration fails, otherwise 0
// whatever verification found.
func Run(ctx context.Context, opts Options) int {
	opts.normalize()
	con := opts.Console

	con.Println(rule)
	con.Println("  VOTC Action Tool Registration for Letta")
	con.Println(rule)

	if _, err := Register(ctx, opts); err != nil {
		return 1
	}

	found := Verify(ctx, opts.Registry, opts.Descriptor.Name, con)
	opts.Logger.Debug("verification finished", "tool", opts.Descriptor.Name, "found", found)

	con.Println()
	con.Println(rule)
	con.Println("  Registration complete!")
	con.Println(rule)
	return 0
}
