// Package commands holds the showroomctl command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/WessleyAI/showroom/engine/carquery"
	"github.com/WessleyAI/showroom/engine/pricing"
	"github.com/WessleyAI/showroom/pkg/config"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// env is shared by every subcommand once the root has loaded the config.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	visitor string
}

func (e *env) lookup() *carquery.Client {
	return carquery.New(carquery.Options{
		BaseURL: e.cfg.CarQueryURL,
		Timeout: e.cfg.Timeout,
		RPS:     e.cfg.LookupRPS,
		Logger:  e.logger,
	})
}

func (e *env) pricer() *pricing.Client {
	return pricing.New(pricing.Options{
		BaseURL: e.cfg.CarAPIURL,
		Token:   e.cfg.CarAPIToken,
		Relay:   e.cfg.CarAPIRelay,
		Timeout: e.cfg.Timeout,
		Logger:  e.logger,
	})
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	e := &env{}
	var verbose bool
	root := &cobra.Command{
		Use:           "showroomctl",
		Short:         "showroomctl is a command line client for the showroom services.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			e.cfg = cfg
			e.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")
	root.PersistentFlags().StringVar(&e.visitor, "visitor", "cli", "storage namespace for favorites")

	root.AddCommand(
		makesCmd(e),
		modelsCmd(e),
		trimsCmd(e),
		priceCmd(e),
		favoritesCmd(e),
		bookingsCmd(e),
	)
	return root
}

// ExecuteContext runs the CLI and returns the process exit code.
func ExecuteContext(ctx context.Context) int {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func parseYear(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return y, nil
}

func render(w io.Writer, header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	t.AppendRows(rows)
	t.SetStyle(table.StyleRounded)
	t.Render()
}
