package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var reportXLSX string

var reportCmd = &cobra.Command{
	Use:   "report [reference-no]",
	Short: "Print the damage report or export it as xlsx",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportXLSX, "xlsx", "", "write the report workbook to this file")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	c := newClient()
	ref := args[0]

	if reportXLSX != "" {
		f, err := os.Create(reportXLSX)
		if err != nil {
			return fmt.Errorf("create %s: %w", reportXLSX, err)
		}
		if err := c.ExportReport(cmd.Context(), ref, f); err != nil {
			f.Close()
			_ = os.Remove(reportXLSX)
			return fmt.Errorf("export report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close %s: %w", reportXLSX, err)
		}
		cmd.Printf("Report written to %s\n", reportXLSX)
		return nil
	}

	report, err := c.ImageReports(cmd.Context(), ref)
	if err != nil {
		return fmt.Errorf("image reports: %w", err)
	}
	cmd.Printf("Reference %s: %d damage item(s), total %.2f\n", report.ReferenceNo, report.DamageCount, report.TotalCost)
	for _, img := range report.Images {
		cmd.Printf("\nAssessment #%d (%s)  subtotal %.2f\n", img.ImageID, img.Status, img.TotalCost)
		for _, d := range img.DamageInfo {
			cmd.Printf("  %-20s %-10s %-8s %-8s %10.2f  %s\n",
				d.CarPartName, d.PartType, d.DamageType, d.RepairReplace, d.ActualCostRepair, d.ImageName)
		}
	}
	return nil
}
