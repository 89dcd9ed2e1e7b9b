package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"votcletta/internal/config"
	"votcletta/internal/domain"
	"votcletta/internal/letta"
	"votcletta/internal/registration"
	"votcletta/internal/tool"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version    = "0.1.0"
	configPath string // overridable via --config flag
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		// a failed registration has already been reported with its hints
		if !errors.Is(err, registration.ErrRegistrationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	configPath = ""

	root := &cobra.Command{
		Use:   "votcletta",
		Short: "Register the Voices of the Court action tool with a Letta server",
		Long: `votcletta publishes the execute_votc_action tool to a Letta server so agents
can queue Crusader Kings 3 actions through the Voices of the Court mod.

Run without a subcommand to register the tool and verify it is listed.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runRegister,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: "+config.DefaultConfigPath()+")")

	root.AddCommand(verifyCmd())
	root.AddCommand(schemaCmd())
	root.AddCommand(previewCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(initCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())
	return root
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// session is everything a command needs once the config is loaded.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	tools  *tool.Registry
	client *letta.Client
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfgPath := resolveConfigPath()
	cfg, loaded, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())
	logger.Debug("config", "path", cfgPath, "loaded", loaded)

	catalog, err := tool.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	tools := tool.NewRegistry(logger)
	tools.Register(tool.NewVOTCAction(catalog))

	client := letta.NewClient(letta.Config{
		BaseURL:  cfg.Server.BaseURL,
		Token:    cfg.Server.Token,
		Password: cfg.Server.Password,
		Timeout:  cfg.Server.Timeout(),
		Logger:   logger,
	})

	return &session{cfg: cfg, logger: logger, tools: tools, client: client}, nil
}

func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// descriptor picks name out of the publishable descriptors of the local registry.
func (s *session) descriptor(name string) (domain.ToolDescriptor, error) {
	descs, err := s.tools.Descriptors()
	if err != nil {
		return domain.ToolDescriptor{}, err
	}
	for _, d := range descs {
		if d.Name == name {
			return d, nil
		}
	}
	return domain.ToolDescriptor{}, errors.Newf("tool %s has no descriptor", name)
}

func (s *session) console(cmd *cobra.Command) *registration.Console {
	return registration.NewConsole(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func runRegister(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	desc, err := s.descriptor(tool.VOTCActionName)
	if err != nil {
		return err
	}

	code := registration.Run(cmd.Context(), registration.Options{
		Registry:   s.client,
		Descriptor: desc,
		ServerURL:  s.client.BaseURL(),
		Console:    s.console(cmd),
		Logger:     s.logger,
	})
	if code != 0 {
		return registration.ErrRegistrationFailed
	}
	return nil
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the tool is listed by the Letta server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			found := registration.Verify(cmd.Context(), s.client, tool.VOTCActionName, s.console(cmd))
			s.logger.Debug("verify", "tool", tool.VOTCActionName, "found", found)
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the tool descriptor that registration uploads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return errors.Newf("unsupported format %q (use json or yaml)", format)
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			desc, err := s.descriptor(tool.VOTCActionName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "yaml" {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(desc); err != nil {
					return err
				}
				return enc.Close()
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(desc)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <action_name> [params-json]",
		Short: "Show the reply the tool gives for an invocation",
		Long: `Runs the tool locally and prints the acknowledgement an agent would receive.

  votcletta preview improveOpinionOfPlayer '{"amount": 10}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}

			call := map[string]any{"action_name": args[0]}
			if len(args) == 2 {
				call["params"] = args[1]
			}

			known := false
			if v, ok := s.tools.Get(tool.VOTCActionName).(*tool.VOTCAction); ok {
				known = v.Knows(args[0])
			}
			if !known {
				s.logger.Warn("action is not in the catalogue; the game may reject it", "action", args[0])
			}

			reply, err := s.tools.Execute(cmd.Context(), tool.VOTCActionName, call)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if _, err := os.Stat(config.ExpandPath(cfgPath)); err == nil && !force {
				return errors.Newf("config already exists at %s (use --force to overwrite)", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", cfgPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View configuration",
		Long:  "Show the effective configuration: file values, then environment overrides.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. server.baseUrl)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadOrDefault(resolveConfigPath())
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			val, err := config.GetByPath(config.Sanitize(cfg), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	var flat bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadOrDefault(resolveConfigPath())
			if err != nil {
				return errors.Wrap(err, "load config")
			}
			sanitized := config.Sanitize(cfg)
			if !flat {
				data, _ := json.MarshalIndent(sanitized, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			paths := config.ListPaths(sanitized)
			keys := make([]string, 0, len(paths))
			for k := range paths {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				val, _ := json.Marshal(paths[k])
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", k, val)
			}
			return nil
		},
	}
	list.Flags().BoolVar(&flat, "flat", false, "print one dot-path per line")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		},
	})

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "votcletta v%s\n", version)
		},
	}
}
