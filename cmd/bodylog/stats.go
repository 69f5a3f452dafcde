package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bodylog/internal/analytics"
	"bodylog/internal/app"
	"bodylog/internal/domain"
)

var statsUnit string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard statistics of the active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := domain.ParseUnit(statsUnit)
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			p, err := ws.Profile(ctx)
			if err != nil {
				return err
			}
			entries, err := ws.Entries(ctx)
			if err != nil {
				return err
			}
			printSummary(p, analytics.Summarize(p, entries), unit)
			return nil
		})
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsUnit, "unit", "u", "kg", "display unit: kg or lb")
}

func printSummary(p domain.Profile, s analytics.Summary, unit domain.Unit) {
	cyan := color.New(color.FgCyan, color.Bold)
	gray := color.New(color.FgHiBlack)

	cyan.Printf("%s (%s)\n", p.Name, p.ID)
	if s.Count == 0 {
		gray.Println("No entries yet.")
		return
	}

	weight := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return domain.FormatWeight(*v, unit)
	}
	signed := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%+.1f %s", domain.ConvertWeight(*v, domain.Kilograms, unit), unit)
	}

	row := func(label, value string) {
		gray.Printf("  %-12s", label)
		fmt.Println(value)
	}
	row("Entries", fmt.Sprint(s.Count))
	row("Last", fmt.Sprintf("%s on %s", weight(s.LastWeight), s.LastDate))
	row("Change", signed(s.Delta))
	row("7-day avg", weight(s.Avg7))
	row("7-day trend", signed(s.Trend7))
	row("BMI", numOrDash(s.BMI, 1))
	row("Goal", weight(s.GoalKg))
	row("To goal", signed(s.ToGoal))
	row("Waist", numOrDash(s.LastWaist, 1))
	row("Body fat", numOrDash(s.LastBF, 1))
	row("BMR", numOrDash(s.BMR, 0))
	row("TDEE", numOrDash(s.TDEE, 0))

	if b := s.Bands; b != nil {
		fmt.Println()
		cyan.Println("Calorie targets (kcal/day)")
		row("Cut", fmt.Sprintf("%.0f", b.Cut))
		row("Mild cut", fmt.Sprintf("%.0f", b.MildCut))
		row("Maintain", fmt.Sprintf("%.0f", b.Maintain))
		row("Mild bulk", fmt.Sprintf("%.0f", b.MildBulk))
		row("Bulk", fmt.Sprintf("%.0f", b.Bulk))
	}
}
