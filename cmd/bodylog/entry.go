package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bodylog/internal/app"
	"bodylog/internal/domain"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record and list daily entries",
}

var entryFlags struct {
	date    string
	weight  float64
	unit    string
	waist   float64
	bodyfat float64
	workout string
	minutes float64
	note    string
	limit   int
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record the entry of a day (replaces an existing one)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := domain.ParseUnit(entryFlags.unit)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		e := domain.Entry{
			Date:   entryFlags.date,
			Weight: entryFlags.weight,
			Note:   entryFlags.note,
		}
		if f.Changed("waist") {
			e.WaistCm = &entryFlags.waist
		}
		if f.Changed("bodyfat") {
			e.BodyFatPct = &entryFlags.bodyfat
		}
		if f.Changed("workout") {
			e.Workout = &entryFlags.workout
		}
		if f.Changed("minutes") {
			e.WorkoutMin = &entryFlags.minutes
		}

		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			e.ProfileID = ws.ProfileID()
			saved, err := app.NewEntryService(ws.Repo).Record(ctx, e, unit)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("Saved %s: %s\n", saved.Date, domain.FormatWeight(saved.Weight, unit))
			return nil
		})
	},
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		unit, err := domain.ParseUnit(entryFlags.unit)
		if err != nil {
			return err
		}
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			entries, err := app.NewEntryService(ws.Repo).List(ctx, ws.ProfileID(), entryFlags.limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				color.New(color.FgHiBlack).Println("No entries yet.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tWEIGHT\tWAIST\tBF%\tWORKOUT\tNOTE")
			for _, e := range entries {
				workout := "-"
				if e.Workout != nil && *e.Workout != "" {
					workout = *e.Workout
					if e.WorkoutMin != nil {
						workout += fmt.Sprintf(" (%.0f min)", *e.WorkoutMin)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", e.Date, domain.FormatWeight(e.Weight, unit),
					numOrDash(e.WaistCm, 1), numOrDash(e.BodyFatPct, 1), workout, e.Note)
			}
			return w.Flush()
		})
	},
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <date>",
	Short: "Delete the entry of a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			if err := app.NewEntryService(ws.Repo).Delete(ctx, ws.ProfileID(), args[0]); err != nil {
				return err
			}
			color.New(color.FgYellow).Printf("Deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	f := entryAddCmd.Flags()
	f.StringVar(&entryFlags.date, "date", "", "day as YYYY-MM-DD (default today)")
	f.Float64VarP(&entryFlags.weight, "weight", "w", 0, "body weight")
	f.StringVarP(&entryFlags.unit, "unit", "u", "kg", "weight unit: kg or lb")
	f.Float64Var(&entryFlags.waist, "waist", 0, "waist in cm")
	f.Float64Var(&entryFlags.bodyfat, "bodyfat", 0, "body fat percentage")
	f.StringVar(&entryFlags.workout, "workout", "", "workout description")
	f.Float64Var(&entryFlags.minutes, "minutes", 0, "workout duration in minutes")
	f.StringVar(&entryFlags.note, "note", "", "free-form note")
	_ = entryAddCmd.MarkFlagRequired("weight")

	entryListCmd.Flags().IntVarP(&entryFlags.limit, "limit", "n", 0, "show at most n entries")
	entryListCmd.Flags().StringVarP(&entryFlags.unit, "unit", "u", "kg", "display unit: kg or lb")

	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryRmCmd)
}
