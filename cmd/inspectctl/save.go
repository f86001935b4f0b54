package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bitfantasy/nimo-inspect/internal/inspect/client"
)

var saveAtomic bool

var saveCmd = &cobra.Command{
	Use:   "save [file.json]",
	Short: "Save a batch of damage annotations from a JSON array",
	Args:  cobra.ExactArgs(1),
	RunE:  runSave,
}

func init() {
	saveCmd.Flags().BoolVar(&saveAtomic, "atomic", false, "roll back the whole batch when any row fails")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	var items []client.AnnotationInput
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse %s: %w", args[0], err)
	}

	result, saveErr := newClient().SaveAll(cmd.Context(), items, saveAtomic)
	if result != nil {
		for _, r := range result.Results {
			line := fmt.Sprintf("[%d] %s part=%d %s", r.Index, r.ImageName, r.CarPartID, r.Status)
			if r.ID != 0 {
				line += fmt.Sprintf(" id=%d", r.ID)
			}
			if r.Error != "" {
				line += " error=" + r.Error
			}
			cmd.Println(line)
		}
	}
	if saveErr != nil {
		return fmt.Errorf("save annotations: %w", saveErr)
	}
	return nil
}
