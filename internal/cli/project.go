package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"curriculum/api/internal/catalog"
	"curriculum/api/internal/curriculum"
	"curriculum/api/internal/export"
)

const maxInputBytes = 16 << 20

type projectFile struct {
	Title             string              `json:"title"`
	Strategy          curriculum.Strategy `json:"strategy"`
	Structure         curriculum.Tree     `json:"structure"`
	Sessions          curriculum.Tree     `json:"sessions"`
	SyllabusBlueprint json.RawMessage     `json:"syllabusBlueprint"`
}

// readInput returns the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var r io.Reader = cmd.InOrStdin()
	name := "stdin"
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
		name = args[0]
	}
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxInputBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxInputBytes)
	}
	return data, nil
}

// parseProject accepts an export envelope, a project object or a session
// array. Unlike normalize it is strict: the input must already be a tree.
func parseProject(data []byte) (export.Project, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return export.Project{}, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var tree curriculum.Tree
		if err := json.Unmarshal(trimmed, &tree); err != nil {
			return export.Project{}, fmt.Errorf("parse session array: %w", err)
		}
		if err := curriculum.Validate(tree); err != nil {
			return export.Project{}, fmt.Errorf("invalid structure: %w", err)
		}
		return export.Project{Title: "Untitled", Sessions: tree}, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return export.Project{}, fmt.Errorf("parse project: %w", err)
	}
	body := trimmed
	orgID := ""
	if inner, ok := top["project"]; ok {
		body = inner
		var envelope struct {
			Metadata struct {
				OrgID string `json:"org_id"`
			} `json:"metadata"`
		}
		_ = json.Unmarshal(trimmed, &envelope)
		orgID = envelope.Metadata.OrgID
	}

	var file projectFile
	if err := json.Unmarshal(body, &file); err != nil {
		return export.Project{}, fmt.Errorf("parse project: %w", err)
	}
	tree := file.Structure
	if tree == nil {
		tree = file.Sessions
	}
	if err := curriculum.Validate(tree); err != nil {
		return export.Project{}, fmt.Errorf("invalid structure: %w", err)
	}
	title := strings.TrimSpace(file.Title)
	if title == "" {
		title = "Untitled"
	}
	blueprint := file.SyllabusBlueprint
	if string(bytes.TrimSpace(blueprint)) == "null" {
		blueprint = nil
	}
	return export.Project{
		OrgID:             orgID,
		Title:             title,
		Strategy:          file.Strategy,
		Sessions:          tree,
		SyllabusBlueprint: blueprint,
	}, nil
}

func loadProject(cmd *cobra.Command, args []string) (export.Project, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return export.Project{}, err
	}
	return parseProject(data)
}

func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	return catalog.Load(path)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
