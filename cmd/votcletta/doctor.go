package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"votcletta/internal/config"
	"votcletta/internal/tool"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks against your Letta setup",
		Long: `Verifies that the configuration loads, the tool descriptor is valid, the
Letta server answers, and whether the tool is already registered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			cfgPath := resolveConfigPath()
			fmt.Fprintf(w, "votcletta doctor v%s\n", version)
			fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			var r report

			// 1. Config file
			if _, err := os.Stat(config.ExpandPath(cfgPath)); err != nil {
				r.warn(w, "Config file", fmt.Sprintf("not found at %s (using defaults)", cfgPath))
			} else {
				r.pass(w, "Config file", cfgPath)
			}

			// 2. Config loads and validates
			s, err := openSession(cmd)
			if err != nil {
				r.fail(w, "Config validation", err.Error())
				return r.summary(w)
			}
			r.pass(w, "Config validation", "valid")

			// 3. Credentials
			switch {
			case s.cfg.Server.Token != "":
				r.pass(w, "Credentials", "bearer token configured")
			case s.cfg.Server.Password != "":
				r.pass(w, "Credentials", "server password configured")
			default:
				r.warn(w, "Credentials", "none configured (fine for an open local server)")
			}

			// 4. Descriptor
			desc, err := s.descriptor(tool.VOTCActionName)
			if err != nil {
				r.fail(w, "Tool descriptor", err.Error())
			} else {
				r.pass(w, "Tool descriptor", fmt.Sprintf("%s (%d bytes of source)", desc.Name, len(desc.SourceCode)))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), s.cfg.Server.Timeout())
			defer cancel()

			// 5. Server reachable
			h, err := s.client.Health(ctx)
			if err != nil {
				r.fail(w, "Letta server", err.Error())
				return r.summary(w)
			}
			r.pass(w, "Letta server", fmt.Sprintf("%s (version %s, %s)", s.client.BaseURL(), h.Version, h.Status))

			// 6. Tool registered
			tools, err := s.client.List(ctx)
			if err != nil {
				r.fail(w, "Tool registry", err.Error())
				return r.summary(w)
			}
			for _, t := range tools {
				if t.Name == tool.VOTCActionName {
					r.pass(w, "Tool registry", fmt.Sprintf("%s registered (ID %s)", t.Name, t.ID))
					return r.summary(w)
				}
			}
			r.warn(w, "Tool registry", fmt.Sprintf("%s not registered yet; run 'votcletta'", tool.VOTCActionName))
			return r.summary(w)
		},
	}
}

type report struct {
	passed, warned, failed int
}

func (r *report) pass(w io.Writer, check, detail string) {
	r.passed++
	fmt.Fprintf(w, "  [PASS] %-20s %s\n", check, detail)
}

func (r *report) fail(w io.Writer, check, detail string) {
	r.failed++
	fmt.Fprintf(w, "  [FAIL] %-20s %s\n", check, detail)
}

func (r *report) warn(w io.Writer, check, detail string) {
	r.warned++
	fmt.Fprintf(w, "  [WARN] %-20s %s\n", check, detail)
}

func (r *report) summary(w io.Writer) error {
	fmt.Fprintf(w, "\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", r.passed, r.warned, r.failed)
	if r.failed > 0 {
		fmt.Fprintf(w, "\nPlease fix the failed checks before registering the tool.\n")
		return errors.Newf("%d check(s) failed", r.failed)
	}
	if r.warned > 0 {
		fmt.Fprintf(w, "\nRegistration should work but consider fixing the warnings.\n")
	} else {
		fmt.Fprintf(w, "\nAll checks passed!\n")
	}
	return nil
}
