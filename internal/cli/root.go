// Package cli implements curriculumctl, an offline companion to the API that
// works on project files instead of the database.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"curriculum/api/internal/export"
)

func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "curriculumctl",
		Short: "Inspect and convert curriculum project files",
		Long: `curriculumctl reads curriculum trees from disk or stdin.

A project file is either a JSON export envelope, a bare project object with
title, strategy and structure, or a bare array of sessions. Use "-" to read
from stdin.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("catalog", "", "Catalog YAML file (default: built-in catalog)")

	normalizeCmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Turn loose generator output into a valid session tree",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunNormalize,
	}

	totalsCmd := &cobra.Command{
		Use:   "totals [file]",
		Short: "Print project totals and per-session progress",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunTotals,
	}
	totalsCmd.Flags().Bool("json", false, "Print machine-readable totals")

	gatesCmd := &cobra.Command{
		Use:   "gates [file]",
		Short: "Evaluate the readiness gates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunGates,
	}
	gatesCmd.Flags().Bool("json", false, "Print machine-readable gate results")
	gatesCmd.Flags().Bool("strict", false, "Exit with an error unless every gate passes")

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Render a project file as json, csv, html, pdf or docx",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunExport,
	}
	exportCmd.Flags().StringP("format", "f", string(export.FormatJSON), "Output format: json|csv|html|pdf|docx")
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().String("org", "", "Organization id stamped into the export")
	exportCmd.Flags().String("exported-at", "", "RFC3339 export timestamp (default: now)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "curriculumctl %s\n", version)
		},
	}

	rootCmd.AddCommand(normalizeCmd, totalsCmd, gatesCmd, exportCmd, versionCmd)
	return rootCmd
}
