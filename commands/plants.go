package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/verdantlabs/verdant/plant"
)

// Plants returns the plant-collection command group.
func Plants(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plants",
		Short: "Browse the plant collection",
	}
	cmd.AddCommand(plantsList(app), plantsRecent(app))
	return cmd
}

func plantsList(app *App) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List uploaded plants, one page at a time",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Plants.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(result)
			}

			out := cmd.OutOrStdout()
			for _, p := range result.Content {
				printPlantLine(out, p)
			}
			fmt.Fprintln(out, pageFooter(result.Number, result.TotalPages, result.TotalElements))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	return cmd
}

func plantsRecent(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show the most recently added plants, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			recent, err := app.Plants.Recent(cmd.Context())
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(recent)
			}
			for _, p := range recent {
				printPlantLine(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
}

func printPlantLine(out io.Writer, p plant.Plant) {
	fmt.Fprintf(out, "%-36s  %-20s  stage=%s  species=%s\n",
		p.ID, p.Name,
		valueOr(p.PlantStage, "-"),
		valueOr(p.DetectedSpecies, "-"))
}
