package commands

import (
	"context"
	"fmt"

	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/favorites"
	"github.com/WessleyAI/showroom/engine/storage"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// withStore opens the configured storage for the duration of f.
func (e *env) withStore(ctx context.Context, f func(*favorites.Store) error) error {
	st, closeStore, err := storage.Open(ctx, storage.Options{
		Backend:    e.cfg.Storage,
		SQLitePath: e.cfg.SQLitePath,
		Neo4jURL:   e.cfg.Neo4jURL,
		Neo4jUser:  e.cfg.Neo4jUser,
		Neo4jPass:  e.cfg.Neo4jPass,
	})
	if err != nil {
		return err
	}
	defer closeStore(ctx)
	return f(favorites.New(st, e.logger))
}

func favoritesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "favorites",
		Short: "Manages the favorites saved under --visitor.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Lists saved favorites.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withStore(cmd.Context(), func(s *favorites.Store) error {
					list, err := s.List(cmd.Context(), e.visitor)
					if err != nil {
						return err
					}
					rows := make([]table.Row, len(list))
					for i, v := range list {
						rows[i] = table.Row{v.ID, v.Title()}
					}
					render(cmd.OutOrStdout(), table.Row{"ID", "Vehicle"}, rows)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <year> <make> <model> [trim]",
			Short: "Saves a vehicle.",
			Args:  cobra.RangeArgs(3, 4),
			RunE: func(cmd *cobra.Command, args []string) error {
				year, err := parseYear(args[0])
				if err != nil {
					return err
				}
				v := domain.Vehicle{Year: year, Make: args[1], Model: args[2]}
				if len(args) == 4 {
					v.Trim = args[3]
				}
				v = v.WithDefaults().WithID()
				years := domain.YearRange{Min: e.cfg.MinYear, Max: e.cfg.MaxYear}
				if err := years.Validate(v); err != nil {
					return err
				}
				return e.withStore(cmd.Context(), func(s *favorites.Store) error {
					if err := s.Add(cmd.Context(), e.visitor, v); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", v.ID)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Removes a saved vehicle by id.",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return e.withStore(cmd.Context(), func(s *favorites.Store) error {
					return s.Remove(cmd.Context(), e.visitor, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Removes every saved vehicle.",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return e.withStore(cmd.Context(), func(s *favorites.Store) error {
					return s.Clear(cmd.Context(), e.visitor)
				})
			},
		},
	)
	return cmd
}
