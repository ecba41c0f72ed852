package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/export"
	"curriculum/api/internal/util"
)

func RunNormalize(cmd *cobra.Command, args []string) error {
	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	opts := cat.EditorOptions()
	opts.NewID = util.NewID
	tree := curriculum.NewEditor(opts).NormalizeJSON(data)
	return writeJSON(cmd.OutOrStdout(), tree)
}

func RunTotals(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	totals := curriculum.ProjectTotals(project.Sessions)
	summaries := curriculum.SessionSummaries(project.Sessions)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		return writeJSON(out, map[string]any{"totals": totals, "sessions": summaries})
	}
	fmt.Fprintf(out, "%s\n", project.Title)
	fmt.Fprintf(out, "sessions: %d  scenes: %d  with activity: %d  complete: %d  completion: %d%%\n",
		totals.TotalSessions, totals.TotalScenes, totals.ScenesWithActivity, totals.CompletedScenes, totals.CompletionRate)
	for _, s := range summaries {
		fmt.Fprintf(out, "  %-30s %2d modules  %3d scenes  %3d%%\n", s.Title, s.Modules, s.Scenes, s.CompletionPercent)
	}
	return nil
}

func RunGates(cmd *cobra.Command, args []string) error {
	project, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	results := curriculum.EvaluateGates(project.Sessions, project.Strategy)
	passed := curriculum.GatesPassed(results)

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := writeJSON(out, map[string]any{"gates": results, "passed": passed}); err != nil {
			return err
		}
	} else {
		for _, g := range results {
			mark := " "
			if g.Passed {
				mark = "x"
			}
			fmt.Fprintf(out, "[%s] %s\n", mark, g.Label)
		}
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && !passed {
		return fmt.Errorf("readiness gates failed")
	}
	return nil
}

func RunExport(cmd *cobra.Command, args []string) error {
	formatName, _ := cmd.Flags().GetString("format")
	format, ok := export.ParseFormat(formatName)
	if !ok {
		return fmt.Errorf("%w: %q", export.ErrUnsupportedFormat, formatName)
	}
	exportedAt := time.Time{}
	if raw, _ := cmd.Flags().GetString("exported-at"); strings.TrimSpace(raw) != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("--exported-at: %w", err)
		}
		exportedAt = parsed
	}

	cat, err := loadCatalog(cmd)
	if err != nil {
		return err
	}
	project, err := loadProject(cmd, args)
	if err != nil {
		return err
	}
	if org, _ := cmd.Flags().GetString("org"); org != "" {
		project.OrgID = org
	}

	result, err := export.NewService(cat).Export(cmd.Context(), export.Request{
		Project:    project,
		Format:     format,
		ExportedAt: exportedAt,
	})
	if err != nil {
		return err
	}

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(result.Data)
		return err
	}
	if err := os.WriteFile(outPath, result.Data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", outPath, len(result.Data))
	return nil
}
