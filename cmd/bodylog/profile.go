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

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			profiles, err := app.NewProfileService(ws.Repo).List(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSEX\tAGE\tHEIGHT\tGOAL")
			for _, p := range profiles {
				marker := ""
				if p.ID == ws.ProfileID() {
					marker = " *"
				}
				fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, marker, p.Name, p.Sex,
					intOrDash(p.Age), numOrDash(p.HeightCm, 0), numOrDash(p.GoalKg, 1))
			}
			return w.Flush()
		})
	},
}

var profileFlags struct {
	name     string
	sex      string
	age      int
	height   float64
	goal     float64
	activity float64
	style    string
}

func addProfileFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&profileFlags.name, "name", "", "display name")
	f.StringVar(&profileFlags.sex, "sex", "", "M, F or empty")
	f.IntVar(&profileFlags.age, "age", 0, "age in years")
	f.Float64Var(&profileFlags.height, "height", 0, "height in cm")
	f.Float64Var(&profileFlags.goal, "goal", 0, "goal weight in kg")
	f.Float64Var(&profileFlags.activity, "activity", domain.DefaultActivity, "TDEE activity multiplier")
	f.StringVar(&profileFlags.style, "training-style", "", "free-form training style")
}

// applyProfileFlags copies the flags the user actually set onto p.
func applyProfileFlags(cmd *cobra.Command, p *domain.Profile) {
	f := cmd.Flags()
	if f.Changed("name") {
		p.Name = profileFlags.name
	}
	if f.Changed("sex") {
		p.Sex = domain.Sex(profileFlags.sex)
	}
	if f.Changed("age") {
		p.Age = &profileFlags.age
	}
	if f.Changed("height") {
		p.HeightCm = &profileFlags.height
	}
	if f.Changed("goal") {
		p.GoalKg = &profileFlags.goal
	}
	if f.Changed("activity") {
		p.Activity = profileFlags.activity
	}
	if f.Changed("training-style") {
		p.TrainingStyle = profileFlags.style
	}
}

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			var p domain.Profile
			applyProfileFlags(cmd, &p)
			created, err := app.NewProfileService(ws.Repo).Create(ctx, p)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("Created profile %s (%s)\n", created.ID, created.Name)
			return nil
		})
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the active profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			p, err := ws.Profile(ctx)
			if err != nil {
				return err
			}
			applyProfileFlags(cmd, &p)
			updated, err := app.NewProfileService(ws.Repo).Update(ctx, p)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("Updated profile %s\n", updated.ID)
			return nil
		})
	},
}

var profileRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a profile and all of its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			if err := app.NewProfileService(ws.Repo).Delete(ctx, args[0]); err != nil {
				return err
			}
			color.New(color.FgYellow).Printf("Deleted profile %s\n", args[0])
			return nil
		})
	},
}

func init() {
	addProfileFlags(profileAddCmd)
	addProfileFlags(profileSetCmd)
	profileCmd.AddCommand(profileListCmd, profileAddCmd, profileSetCmd, profileRmCmd)
}

func intOrDash(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func numOrDash(v *float64, decimals int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}
