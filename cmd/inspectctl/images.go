package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var imagesJSON bool

var imagesCmd = &cobra.Command{
	Use:   "images [reference-no]",
	Short: "List annotated images for a reference number",
	Args:  cobra.ExactArgs(1),
	RunE:  runImages,
}

func init() {
	imagesCmd.Flags().BoolVar(&imagesJSON, "json", false, "output images as JSON")
	rootCmd.AddCommand(imagesCmd)
}

func runImages(cmd *cobra.Command, args []string) error {
	images, err := newClient().ListImages(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}

	if imagesJSON {
		data, err := json.MarshalIndent(images, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal images: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(images) == 0 {
		cmd.Println("No readable images.")
		return nil
	}
	for i, img := range images {
		cmd.Printf("[%d] %s  %dx%d  %d damage box(es)\n", i+1, img.ImageName,
			img.ImageDimensions.Width, img.ImageDimensions.Height, len(img.DamageInfo))
		for _, d := range img.DamageInfo {
			cmd.Printf("    %-8s x=%.1f y=%.1f w=%.1f h=%.1f\n", d.RepairReplace,
				d.Coordinates.X, d.Coordinates.Y, d.Coordinates.Width, d.Coordinates.Height)
		}
	}
	return nil
}
