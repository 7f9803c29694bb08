package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/studiowebux/taxdesk/internal/cli"
	"github.com/studiowebux/taxdesk/internal/config"
	"github.com/studiowebux/taxdesk/internal/gateway"
	"github.com/studiowebux/taxdesk/internal/history"
	"github.com/studiowebux/taxdesk/internal/keybinds"
	"github.com/studiowebux/taxdesk/internal/logger"
	"github.com/studiowebux/taxdesk/internal/mock"
	"github.com/studiowebux/taxdesk/internal/tui"
	"github.com/studiowebux/taxdesk/internal/version"
)

var (
	appVersion = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taxdesk",
	Short: "Customer tax admin view",
	Long: `taxdesk lists and edits customer tax records served by a REST backend.

Run without arguments to start the interactive table. The subcommands cover
the same operations for scripts, plus a local mock backend.

Examples:
  taxdesk                                   # Start interactive TUI
  taxdesk list --country USA -o json        # Records from the USA as JSON
  taxdesk list --query "[].entity"          # JMESPath over the record list
  taxdesk update 3 --name "Rhine GmbH"      # Rename a customer
  taxdesk history --limit 20                # Recent edits made from here
  taxdesk history --record 3                # Edits of one record
  taxdesk keys                              # Key bindings per view
  taxdesk mock --fixtures fixtures.yaml     # Serve fixtures on :3000`,
	Version:       appVersion,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(flagConfig); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI()
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print tax records, optionally filtered by country",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, gw, err := setupGateway()
		if err != nil {
			return err
		}
		initStderrLogger(settings)

		return cli.List(cmd.Context(), gw, os.Stdout, cli.ListOptions{
			Countries: flagCountries,
			Output:    flagOutput,
			Query:     flagQuery,
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a record's name and country",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, gw, err := setupGateway()
		if err != nil {
			return err
		}
		initStderrLogger(settings)

		recorder, closeHistory := openHistory(settings)
		defer closeHistory()

		return cli.Update(cmd.Context(), gw, recorder, os.Stdout, cli.UpdateOptions{
			ID:          args[0],
			Name:        flagName,
			Country:     flagCountry,
			Output:      flagOutput,
			BaseURL:     settings.BaseURL,
			PickCountry: flagPick,
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List edits saved from this machine, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := history.NewManager(config.DatabasePath)
		if err != nil {
			return err
		}
		defer mgr.Close()

		if flagClear {
			if err := mgr.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "History cleared")
			return nil
		}

		return cli.History(cmd.Context(), mgr, os.Stdout, cli.HistoryOptions{
			Limit:  flagLimit,
			Output: flagOutput,
			Record: flagRecord,
		})
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the TUI key bindings, including overrides from keybinds.jsonc",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
		if err != nil {
			return fmt.Errorf("invalid keybindings in %s: %w", config.KeybindsFile, err)
		}
		return cli.Keys(os.Stdout, registry, flagOutput)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve /taxes and /countries from fixtures",
	Long: `Start a local backend with the same routes as the real API.

Fixtures are YAML, JSON or JSON with comments. Without --fixtures a small
built-in dataset is served. Edits are kept in memory until the server stops.
Each request is printed to stdout unless --quiet is set.

--write-fixtures saves the resolved fixtures (built-in or loaded, with the
flags applied) to a file and exits, as a starting point for custom data.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMock(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version, optionally checking for a newer release",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("taxdesk " + appVersion)
		if !flagCheck {
			return nil
		}

		update, err := version.NewChecker().Check(cmd.Context(), appVersion)
		if err != nil {
			return fmt.Errorf("update check failed: %w", err)
		}
		if update.Available {
			fmt.Printf("A newer version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Println("Up to date")
		}
		return nil
	},
}

// Persistent flags
var flagConfig string

// Flags for list/update/history
var (
	flagOutput    string
	flagCountries []string
	flagQuery     string
	flagName      string
	flagCountry   string
	flagPick      bool
	flagLimit     int
	flagRecord    string
	flagClear     bool
	flagCheck     bool
)

const defaultMockPort = 3000

// Flags for mock
var (
	mockFixtures    string
	mockPort        int
	mockHost        string
	mockDelay       int
	mockFailUpdates bool
	mockQuiet       bool
	mockWriteTo     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.taxdesk/config.yaml)")

	listCmd.Flags().StringSliceVarP(&flagCountries, "country", "c", nil, "Only records from these countries (repeatable)")
	listCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")
	listCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath expression applied to the JSON list")

	updateCmd.Flags().StringVarP(&flagName, "name", "n", "", "New customer name")
	updateCmd.Flags().StringVarP(&flagCountry, "country", "c", "", "New country, one of the backend's countries")
	updateCmd.Flags().BoolVar(&flagPick, "pick-country", false, "Choose the country from an interactive list")
	updateCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "Number of entries to show")
	historyCmd.Flags().StringVar(&flagRecord, "record", "", "Only edits of this record id")
	historyCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every entry")
	historyCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	mockCmd.Flags().StringVarP(&mockFixtures, "fixtures", "f", "", "Fixtures file (.yaml, .yml, .json, .jsonc)")
	mockCmd.Flags().IntVarP(&mockPort, "port", "p", defaultMockPort, "Port, 0 picks a free one (overrides the fixtures file)")
	mockCmd.Flags().StringVar(&mockHost, "host", "", "Host (overrides the fixtures file, default localhost)")
	mockCmd.Flags().IntVar(&mockDelay, "delay", 0, "Delay in milliseconds added to every response")
	mockCmd.Flags().BoolVar(&mockFailUpdates, "fail-updates", false, "Answer every update with 500")
	mockCmd.Flags().BoolVarP(&mockQuiet, "quiet", "q", false, "Do not print requests")
	mockCmd.Flags().StringVar(&mockWriteTo, "write-fixtures", "", "Write the resolved fixtures to this file and exit")

	keysCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/json/yaml)")

	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupGateway resolves settings and builds the backend client from them
func setupGateway() (config.Settings, *gateway.Client, error) {
	settings, err := config.Load()
	if err != nil {
		return config.Settings{}, nil, err
	}

	opts := gateway.Options{
		BaseURL: settings.BaseURL,
		Headers: settings.Headers,
		Timeout: settings.Timeout,
	}
	if settings.HasTLS() {
		opts.TLS = &gateway.TLSConfig{
			CertFile:           settings.CertFile,
			KeyFile:            settings.KeyFile,
			CAFile:             settings.CAFile,
			InsecureSkipVerify: settings.InsecureSkipVerify,
		}
	}

	gw, err := gateway.New(opts)
	if err != nil {
		return settings, nil, err
	}
	return settings, gw, nil
}

func initStderrLogger(settings config.Settings) {
	logger.Initialize(os.Stderr, logger.ParseLevel(settings.LogLevel))
}

// openHistory opens the edit history when enabled. A database that cannot be
// opened only disables history.
func openHistory(settings config.Settings) (history.Recorder, func()) {
	if !settings.HistoryEnabled {
		return nil, func() {}
	}

	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		logger.Warn("edit history disabled", "path", config.DatabasePath, "error", err)
		return nil, func() {}
	}
	return mgr, func() { mgr.Close() }
}

// runTUI starts the interactive TUI
func runTUI() error {
	settings, gw, err := setupGateway()
	if err != nil {
		return err
	}

	if err := logger.InitializeFile(config.LogFile, logger.ParseLevel(settings.LogLevel)); err != nil {
		return err
	}
	defer logger.Close()
	logger.Info("starting", "version", appVersion, "base_url", settings.BaseURL)

	registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return fmt.Errorf("invalid keybindings in %s: %w", config.KeybindsFile, err)
	}

	recorder, closeHistory := openHistory(settings)
	defer closeHistory()

	return tui.Run(tui.Options{
		Gateway:   gw,
		BaseURL:   settings.BaseURL,
		History:   recorder,
		Keybinds:  registry,
		Theme:     settings.Theme,
		SaveTheme: config.SaveTheme,
	})
}

// runMock serves fixtures until interrupted
func runMock(cmd *cobra.Command) error {
	logger.Initialize(os.Stderr, logger.ParseLevel("info"))

	cfg := mock.DefaultConfig()
	if mockFixtures != "" {
		loaded, err := mock.LoadConfig(mockFixtures)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("port") || cfg.Port == 0 {
		cfg.Port = mockPort
	}
	if mockHost != "" {
		cfg.Host = mockHost
	}
	if mockDelay > 0 {
		cfg.Delay = mockDelay
	}
	if mockFailUpdates {
		cfg.FailUpdates = true
	}
	if mockQuiet {
		cfg.Logging = false
	}

	if mockWriteTo != "" {
		if err := mock.SaveConfig(cfg, mockWriteTo); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Fixtures written to %s\n", mockWriteTo)
		return nil
	}

	srv := mock.NewServer(cfg)
	if err := srv.Start(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Mock backend listening on %s (Ctrl+C to stop)\n", srv.GetAddress())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Logging {
		go srv.FollowLogs(ctx, os.Stdout)
	}
	<-ctx.Done()

	fmt.Fprintln(os.Stderr, "\nShutting down...")
	return srv.Stop(context.Background())
}
