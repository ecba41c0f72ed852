package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"curriculum/api/internal/curriculum"
)

type fakeNamer map[string]string

func (f fakeNamer) ActivityName(id string) string {
	if name, ok := f[id]; ok {
		return name
	}
	return "unassigned"
}

var exportedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleProject() Project {
	return Project{
		ID:    "prj_1",
		OrgID: "org_demo",
		Title: "First Aid, Basics",
		Strategy: curriculum.Strategy{
			TargetAudience:   "Volunteers",
			GeneralObjective: "Respond to emergencies",
			Methodology:      "Blended",
		},
		Sessions: curriculum.Tree{{
			ID: "ses_1", Title: "Session 1",
			Modules: []*curriculum.Module{{
				ID: "mod_1", Title: "Module 1",
				Units: []*curriculum.Unit{{
					ID: "uni_1", Title: "Unit 1",
					Topics: []*curriculum.Topic{{
						ID: "top_1", Title: "Tema 1",
						Scenes: []*curriculum.Scene{
							{
								ID: "sce_1", Title: `Check "airway"`, DurationMinutes: 15,
								LearningObjective: "Open the airway", ABCMethod: curriculum.ABCPractice,
								MediaLevel: curriculum.MediaLevel2, MediaFormat: "video",
								InteractionMoment: "Opening", SelectedActivityID: "act_quiz",
							},
							{ID: "sce_2", Title: "Recovery\nposition", DurationMinutes: 10},
						},
					}},
				}},
			}},
		}},
		SyllabusBlueprint: json.RawMessage(`{"weeks":4}`),
	}
}

func newTestService() *Service {
	s := NewService(fakeNamer{"act_quiz": "Self-check quiz"})
	s.now = func() time.Time { return exportedAt }
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
		ok    bool
	}{
		{"json", FormatJSON, true},
		{" CSV ", FormatCSV, true},
		{"Pdf", FormatPDF, true},
		{"docx", FormatDOCX, true},
		{"html", FormatHTML, true},
		{"xlsx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseFormat(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExportJSONEnvelope(t *testing.T) {
	result, err := newTestService().Export(context.Background(), Request{Project: sampleProject(), Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.Filename != "First-Aid-Basics.json" || result.MimeType != "application/json" {
		t.Fatalf("unexpected result meta %q %q", result.Filename, result.MimeType)
	}

	var doc struct {
		Metadata map[string]string `json:"metadata"`
		Project  struct {
			Title             string              `json:"title"`
			Strategy          curriculum.Strategy `json:"strategy"`
			Structure         curriculum.Tree     `json:"structure"`
			SyllabusBlueprint map[string]int      `json:"syllabusBlueprint"`
		} `json:"project"`
	}
	if err := json.Unmarshal(result.Data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]string{
		"exportedAt": "2026-03-14T09:30:00Z",
		"version":    SchemaVersion,
		"org_id":     "org_demo",
		"exporter":   Exporter,
	}
	for k, v := range want {
		if doc.Metadata[k] != v {
			t.Errorf("metadata[%s] = %q, want %q", k, doc.Metadata[k], v)
		}
	}
	if doc.Project.Title != "First Aid, Basics" || doc.Project.Strategy.Methodology != "Blended" {
		t.Errorf("project header = %+v", doc.Project)
	}
	if len(doc.Project.Structure) != 1 || doc.Project.Structure[0].Modules[0].Units[0].Topics[0].Scenes[1].ID != "sce_2" {
		t.Error("structure did not round trip")
	}
	if doc.Project.SyllabusBlueprint["weeks"] != 4 {
		t.Errorf("blueprint = %v", doc.Project.SyllabusBlueprint)
	}
}

func TestExportJSONEmptyProject(t *testing.T) {
	result, err := newTestService().Export(context.Background(), Request{Project: Project{Title: "Empty"}, Format: FormatJSON})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	body := string(result.Data)
	if !strings.Contains(body, `"structure": []`) || !strings.Contains(body, `"syllabusBlueprint": null`) {
		t.Errorf("empty project encoded as %s", body)
	}
}

func TestExportCSV(t *testing.T) {
	result, err := newTestService().Export(context.Background(), Request{Project: sampleProject(), Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(result.Data, utf8BOM) {
		t.Fatal("csv missing UTF-8 BOM")
	}
	body := string(result.Data[len(utf8BOM):])
	for _, line := range []string{
		"# project: First Aid, Basics\n",
		"# exported_at: 2026-03-14T09:30:00Z\n",
		"# version: 1.0\n",
		"# org_id: org_demo\n",
	} {
		if !strings.Contains(body, line) {
			t.Errorf("csv missing metadata line %q", line)
		}
	}

	r := csv.NewReader(strings.NewReader(body))
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		t.Errorf("header = %v", records[0])
	}
	first := records[1]
	if first[4] != `Check "airway"` || first[5] != "15" || first[6] != "Practice" || first[8] != "Self-check quiz" {
		t.Errorf("first row = %v", first)
	}
	second := records[2]
	if second[4] != "Recovery\nposition" || second[8] != "unassigned" {
		t.Errorf("second row = %v", second)
	}
	if !strings.Contains(body, `"Check ""airway"""`) {
		t.Error("embedded quotes should be doubled")
	}
}

func TestExportCSVKeepsRowsStartingWithHash(t *testing.T) {
	project := sampleProject()
	project.Sessions[0].Title = `#1 "Intro"`
	project.Sessions[0].Modules[0].Title = "#2"

	result, err := newTestService().Export(context.Background(), Request{Project: project, Format: FormatCSV})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	body := string(result.Data[len(utf8BOM):])
	if !strings.Contains(body, "\n\"#1 \"\"Intro\"\"\",#2,Unit 1,") {
		t.Errorf("leading '#' field not quoted:\n%s", body)
	}

	r := csv.NewReader(strings.NewReader(body))
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	for _, record := range records[1:] {
		if record[0] != `#1 "Intro"` || record[1] != "#2" {
			t.Errorf("row = %v", record)
		}
	}
	if records[2][4] != "Recovery\nposition" {
		t.Errorf("second row scene = %q", records[2][4])
	}
}

func TestExportHTMLSyllabus(t *testing.T) {
	result, err := newTestService().Export(context.Background(), Request{Project: sampleProject(), Format: FormatHTML})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	html := string(result.Data)
	for _, want := range []string{
		"<title>First Aid, Basics</title>",
		"Volunteers",
		"Tema 1",
		"Self-check quiz",
		"25 minutes",
		`class="incomplete"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
	if strings.Contains(html, `Check "airway"`) {
		t.Error("scene titles should be HTML escaped")
	}
}

func TestExportRoutesRenderers(t *testing.T) {
	s := newTestService()
	var gotHTML, gotTitle string
	s.renderPDF = func(_ context.Context, html, title string) (*Result, error) {
		gotHTML, gotTitle = html, title
		return &Result{Data: []byte("%PDF"), Filename: sanitizeFilename(title) + ".pdf"}, nil
	}
	s.renderDOCX = func(context.Context, string, string) (*Result, error) {
		return nil, ErrDOCXDependencyMissing
	}

	result, err := s.Export(context.Background(), Request{Project: sampleProject(), Format: FormatPDF})
	if err != nil {
		t.Fatalf("pdf Export() error = %v", err)
	}
	if string(result.Data) != "%PDF" || gotTitle != "First Aid, Basics" || !strings.Contains(gotHTML, "<h1>") {
		t.Errorf("pdf renderer got title %q", gotTitle)
	}

	if _, err := s.Export(context.Background(), Request{Project: sampleProject(), Format: FormatDOCX}); !errors.Is(err, ErrDOCXDependencyMissing) {
		t.Errorf("docx error = %v", err)
	}
	if _, err := s.Export(context.Background(), Request{Project: sampleProject(), Format: "xlsx"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unsupported error = %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "Hello-World"},
		{"Course v1.2", "Course-v12"},
		{"Primeros Auxilios: Módulo", "Primeros-Auxilios-Mdulo"},
		{"", "curriculum"},
		{"Very Long Title That Exceeds Fifty Characters Limit", "Very-Long-Title-That-Exceeds-Fifty-Characters-Limi"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := sanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello world", "hello%20world"},
		{"test+sign", "test%2Bsign"},
		{"special<>", "special%3C%3E"},
		{"normal-text.txt", "normal-text.txt"},
		{"é", "%C3%A9"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := percentEncodeForDataURL(tt.input)
			if result != tt.expected {
				t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
