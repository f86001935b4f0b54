package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	costPart          int
	costDamageType    int
	costRepairReplace int
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate repair cost for a part, damage type and action",
	RunE:  runCost,
}

var carPartsCmd = &cobra.Command{
	Use:   "carparts",
	Short: "List car parts",
	Args:  cobra.NoArgs,
	RunE:  runCarParts,
}

func init() {
	costCmd.Flags().IntVar(&costPart, "part", 0, "car part master id")
	costCmd.Flags().IntVar(&costDamageType, "damage-type", 0, "damage type id (0 dent, 1 scratch, 2 broken)")
	costCmd.Flags().IntVar(&costRepairReplace, "repair-replace", 0, "repair/replace id (0 NA, 1 repair, 2 replace)")
	_ = costCmd.MarkFlagRequired("part")
	rootCmd.AddCommand(costCmd)
	rootCmd.AddCommand(carPartsCmd)
}

func runCost(cmd *cobra.Command, args []string) error {
	est, err := newClient().CostOfRepair(cmd.Context(), costPart, costDamageType, costRepairReplace)
	if err != nil {
		return fmt.Errorf("cost of repair: %w", err)
	}
	cmd.Printf("%.2f (%s)\n", est.CostOfRepair, est.Source)
	return nil
}

func runCarParts(cmd *cobra.Command, args []string) error {
	parts, err := newClient().ListCarParts(cmd.Context())
	if err != nil {
		return fmt.Errorf("list car parts: %w", err)
	}
	for _, p := range parts {
		cmd.Printf("%4d  %s\n", p.ID, p.Name)
	}
	return nil
}
