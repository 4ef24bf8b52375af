package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Plant returns the single-plant command group.
func Plant(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plant",
		Short: "Create and inspect individual plants",
	}
	cmd.AddCommand(plantCreate(app), plantShow(app), plantHistory(app), plantUpload(app))
	return cmd
}

func plantCreate(app *App) *cobra.Command {
	var name, imagePath string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a plant from a name and a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, closeFn, err := loadUpload(imagePath)
			if err != nil {
				return err
			}
			defer closeFn()

			created, err := app.Plants.Create(cmd.Context(), name, upload)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", created.Name, created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Plant name")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the first photo")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func plantShow(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plant-id>",
		Short: "Show the latest analysis for a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Plants.Details(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(p)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", p.Name)
			if !p.Analyzed() {
				fmt.Fprintln(out, "No analysis yet. Upload an image to get started.")
				return nil
			}
			fmt.Fprintf(out, "Stage:   %s\n", valueOr(p.PlantStage, "-"))
			fmt.Fprintf(out, "Species: %s\n", valueOr(p.DetectedSpecies, "-"))
			if m := p.LatestData; m != nil {
				if m.HealthScore != nil {
					fmt.Fprintf(out, "Health:  %.1f\n", *m.HealthScore)
				}
				if m.LastWatered != "" {
					fmt.Fprintf(out, "Watered: %s\n", m.LastWatered)
				}
				if m.LastFertilized != "" {
					fmt.Fprintf(out, "Fed:     %s\n", m.LastFertilized)
				}
			}
			return nil
		},
	}
}

func plantHistory(app *App) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "history <plant-id>",
		Short: "Show past uploads and their analyses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Plants.History(cmd.Context(), args[0], page)
			if err != nil {
				return err
			}
			if app.JSON {
				return printJSON(result)
			}

			out := cmd.OutOrStdout()
			for _, e := range result.Content {
				fmt.Fprintf(out, "%s  by %-20s  stage=%-12s species=%s\n",
					e.UploadDate, e.UploaderName,
					valueOr(e.PlantStage, "-"),
					valueOr(e.DetectedSpecies, "-"))
			}
			fmt.Fprintln(out, pageFooter(result.Number, result.TotalPages, result.TotalElements))
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "Zero-based page number")
	return cmd
}

func plantUpload(app *App) *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "upload <plant-id>",
		Short: "Upload a new photo for re-analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			upload, closeFn, err := loadUpload(imagePath)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := app.Plants.UploadImage(cmd.Context(), args[0], upload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Uploaded; analysis runs in the background. Check `plant show` shortly")
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the photo")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
