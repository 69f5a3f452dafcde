package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bodylog/internal/app"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:       "export <json|csv>",
	Short:     "Export a full JSON backup or the active profile as CSV",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"json", "csv"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			var w io.Writer = os.Stdout
			if exportOut != "" && exportOut != "-" {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer f.Close() //nolint:errcheck
				w = f
			}

			svc := app.NewBackupService(ws.Repo)
			if args[0] == "csv" {
				return svc.ExportCSV(ctx, w, ws.ProfileID())
			}
			return svc.ExportJSON(ctx, w)
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace all data with the contents of a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck

		if !confirmed("This replaces every profile and entry. Continue?") {
			return nil
		}
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			report, err := app.NewBackupService(ws.Repo).ImportJSON(ctx, f)
			if err != nil {
				return err
			}
			color.New(color.FgGreen).Printf("Imported %d profiles and %d entries", report.Profiles, report.Entries)
			if report.Skipped > 0 {
				color.New(color.FgYellow).Printf(" (%d skipped)", report.Skipped)
			}
			fmt.Println()
			return nil
		})
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete every profile and entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !confirmed("This deletes all data. Continue?") {
			return nil
		}
		return withWorkspace(cmd, func(ctx context.Context, ws app.Workspace) error {
			if err := app.NewBackupService(ws.Repo).Wipe(ctx); err != nil {
				return err
			}
			color.New(color.FgYellow).Println("All data deleted.")
			return nil
		})
	},
}

var assumeYes bool

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
	wipeCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation")
}

func confirmed(question string) bool {
	if assumeYes {
		return true
	}
	color.New(color.FgYellow).Printf("%s [y/N] ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
