// Package commands implements the budgetctl command line client. Every
// command goes through the same controller as the web UI.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"budget/internal/amqp"
	"budget/internal/app"
	"budget/internal/cli"
	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/persist"
	"budget/internal/sheets"
	gsheet "budget/internal/sheets/google"
)

// Runtime supplies the controller and exporter commands operate on.
type Runtime struct {
	// Open returns a loaded controller and a function releasing its resources.
	Open func(ctx context.Context) (*app.Controller, func() error, error)
	// Exporter returns the spreadsheet target for the export command.
	Exporter func(ctx context.Context) (sheets.Exporter, error)
}

// NewRootCommand creates the root CLI command wired to the configured backend.
func NewRootCommand() *cobra.Command {
	return newRootCommand(envRuntime())
}

func newRootCommand(rt Runtime) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "budgetctl",
		Short: "Record and inspect personal transactions",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newAddCommand(rt),
		newListCommand(rt),
		newEditCommand(rt),
		newDeleteCommand(rt),
		newSummaryCommand(rt),
		newExportCommand(rt),
		newRecoveredCommand(rt),
	)
	return rootCmd
}

// withController opens the controller for the duration of fn.
func withController(ctx context.Context, rt Runtime, fn func(*app.Controller) error) error {
	ctrl, closeFn, err := rt.Open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(ctrl)
}

func envRuntime() Runtime {
	load := func() (*config.Config, *log.Logger, error) {
		cli.LoadEnvFile()
		cfg, err := cli.LoadAndValidateConfig()
		if err != nil {
			return nil, nil, err
		}
		// Only warnings reach stderr so command output stays clean.
		level := cfg.LogLevel
		if log.ParseLevel(level) < log.ParseLevel("warn") {
			level = "warn"
		}
		return cfg, cli.SetupLogger(level, log.ComponentCLI, stderr), nil
	}

	return Runtime{
		Open: func(ctx context.Context) (*app.Controller, func() error, error) {
			cfg, logger, err := load()
			if err != nil {
				return nil, nil, err
			}
			res, err := cli.OpenBackend(ctx, logger, cfg)
			if err != nil {
				return nil, nil, err
			}
			opts := []app.Option{app.WithLogger(logger)}
			closers := []func() error{res.Close}
			if cfg.EventsEnabled() {
				client := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
				opts = append(opts, app.WithPublisher(client))
				closers = append([]func() error{client.Close}, closers...)
			}
			closeAll := func() error {
				var first error
				for _, c := range closers {
					if err := c(); err != nil && first == nil {
						first = err
					}
				}
				return first
			}

			ctrl := app.New(persist.NewAdapter(res.KV), opts...)
			if err := ctrl.Load(ctx); err != nil {
				_ = closeAll()
				return nil, nil, err
			}
			if key := ctrl.Recovered(); key != "" {
				fmt.Fprintf(stderr, "warning: saved data was unreadable and moved to %q\n", key)
			}
			return ctrl, closeAll, nil
		},
		Exporter: func(ctx context.Context) (sheets.Exporter, error) {
			cfg, _, err := load()
			if err != nil {
				return nil, err
			}
			if !cfg.ExportEnabled() {
				return nil, fmt.Errorf("export needs GOOGLE_SPREADSHEET_ID")
			}
			return gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:   cfg.GoogleSpreadsheetID,
				SheetName:       cfg.GoogleSheetName,
				CredentialsJSON: cfg.GoogleServiceAccountJSON,
				CredentialsFile: cfg.GoogleServiceAccountFile,
			})
		},
	}
}

var stderr io.Writer = os.Stderr
