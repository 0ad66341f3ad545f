package commands

import (
	"fmt"

	"github.com/WessleyAI/showroom/engine/inventory"
	"github.com/WessleyAI/showroom/engine/pricing"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func makesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "makes <year>",
		Short: "Lists the makes sold in the US for a model year.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			makes, err := e.lookup().Makes(cmd.Context(), year)
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(makes))
			for i, m := range makes {
				rows[i] = table.Row{m.ID, m.Display, m.Country}
			}
			render(cmd.OutOrStdout(), table.Row{"ID", "Make", "Country"}, rows)
			return nil
		},
	}
}

func modelsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "models <year> <make-id>",
		Short: "Lists the models of a make for a model year.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			models, err := e.lookup().Models(cmd.Context(), year, args[1])
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(models))
			for i, m := range models {
				rows[i] = table.Row{m.Name}
			}
			render(cmd.OutOrStdout(), table.Row{"Model"}, rows)
			return nil
		},
	}
}

func trimsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "trims <year> <make-id> <model>",
		Short: "Lists the trims of a model, as the inventory search shows them.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			trims, err := e.lookup().Trims(cmd.Context(), year, args[1], args[2])
			if err != nil {
				return err
			}
			rows := make([]table.Row, len(trims))
			for i, t := range trims {
				v := inventory.VehicleFromTrim(year, args[1], t)
				rows[i] = table.Row{v.ID, v.Trim, v.Body, v.Drive, v.Power}
			}
			render(cmd.OutOrStdout(), table.Row{"ID", "Trim", "Body", "Drive", "Power"}, rows)
			return nil
		},
	}
}

func priceCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "price <year> <make> <model> [trim]",
		Short: "Prints the estimated MSRP of a trim, or N/A.",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := parseYear(args[0])
			if err != nil {
				return err
			}
			trim := ""
			if len(args) == 4 {
				trim = args[3]
			}
			p := e.pricer().Price(cmd.Context(), year, args[1], args[2], trim)
			fmt.Fprintln(cmd.OutOrStdout(), pricing.FormatPrice(p))
			return nil
		},
	}
}
