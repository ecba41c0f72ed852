package export

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"curriculum/api/internal/curriculum"
)

//go:embed templates/*.html
var templateFS embed.FS

var syllabusTemplate = template.Must(template.New("syllabus.html").Funcs(template.FuncMap{
	"formatDate": func(t time.Time, layout string) string {
		return t.Format(layout)
	},
}).ParseFS(templateFS, "templates/syllabus.html"))

// TemplateData holds data for syllabus template rendering
type TemplateData struct {
	Title        string
	OrgID        string
	ExportedAt   time.Time
	Strategy     curriculum.Strategy
	Totals       curriculum.Totals
	TotalMinutes int
	Gates        []curriculum.GateResult
	Sessions     []TemplateSession
}

type TemplateSession struct {
	Title   string
	Modules []TemplateModule
}

type TemplateModule struct {
	Title string
	Units []TemplateUnit
}

type TemplateUnit struct {
	Title  string
	Topics []TemplateTopic
}

type TemplateTopic struct {
	Title  string
	Scenes []TemplateScene
}

// TemplateScene is a Scene with its activity already resolved to a name.
type TemplateScene struct {
	curriculum.Scene
	Activity string
	Complete bool
}

func buildTemplateData(req Request, activities ActivityNamer) TemplateData {
	tree := req.Project.Sessions
	data := TemplateData{
		Title:      req.Project.Title,
		OrgID:      req.Project.OrgID,
		ExportedAt: req.ExportedAt,
		Strategy:   req.Project.Strategy,
		Totals:     curriculum.ProjectTotals(tree),
		Gates:      curriculum.EvaluateGates(tree, req.Project.Strategy),
	}
	for _, session := range tree {
		ts := TemplateSession{Title: session.Title}
		for _, module := range session.Modules {
			tm := TemplateModule{Title: module.Title}
			for _, unit := range module.Units {
				tu := TemplateUnit{Title: unit.Title}
				for _, topic := range unit.Topics {
					tt := TemplateTopic{Title: topic.Title}
					for _, scene := range topic.Scenes {
						data.TotalMinutes += scene.DurationMinutes
						tt.Scenes = append(tt.Scenes, TemplateScene{
							Scene:    *scene,
							Activity: activityName(activities, scene.SelectedActivityID),
							Complete: curriculum.SceneComplete(scene),
						})
					}
					tu.Topics = append(tu.Topics, tt)
				}
				tm.Units = append(tm.Units, tu)
			}
			ts.Modules = append(ts.Modules, tm)
		}
		data.Sessions = append(data.Sessions, ts)
	}
	return data
}

// RenderSyllabusHTML renders the syllabus template with provided data
func RenderSyllabusHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := syllabusTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
