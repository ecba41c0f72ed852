package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"curriculum/api/internal/curriculum"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"session", "module", "unit", "topic", "scene",
	"duration_minutes", "abc_method", "media_level", "activity",
}

// encodeCSV writes one row per Scene behind a BOM and '#' metadata lines.
// encoding/csv quotes fields holding commas, quotes or line breaks.
func encodeCSV(req Request, activities ActivityNamer) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	buf.WriteString("# project: " + commentSafe(req.Project.Title) + "\n")
	buf.WriteString("# exported_at: " + req.ExportedAt.Format(time.RFC3339) + "\n")
	buf.WriteString("# version: " + SchemaVersion + "\n")
	buf.WriteString("# org_id: " + commentSafe(req.Project.OrgID) + "\n")

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range curriculum.FlattenScenes(req.Project.Sessions) {
		scene := row.Scene
		record := []string{
			row.SessionTitle,
			row.ModuleTitle,
			row.UnitTitle,
			row.TopicTitle,
			scene.Title,
			strconv.Itoa(scene.DurationMinutes),
			string(scene.ABCMethod),
			string(scene.MediaLevel),
			activityName(activities, scene.SelectedActivityID),
		}
		if err := writeRecord(w, &buf, record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeRecord writes record through w, quoting a leading field that starts
// with '#' so comment-aware readers keep the row. encoding/csv has no option
// to force quotes, so that field is written to buf directly.
func writeRecord(w *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) == 0 || !strings.HasPrefix(record[0], "#") {
		return w.Write(record)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	buf.WriteString(`"` + strings.ReplaceAll(record[0], `"`, `""`) + `"`)
	if len(record) == 1 {
		buf.WriteByte('\n')
		return nil
	}
	buf.WriteByte(',')
	return w.Write(record[1:])
}

func activityName(activities ActivityNamer, id string) string {
	if activities != nil {
		return activities.ActivityName(id)
	}
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return "unassigned"
}

// Comment lines cannot span rows.
func commentSafe(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
