package curriculum

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize turns loosely typed generator output into a structurally valid
// Tree. It never fails: missing or mistyped fields fall back to placeholders,
// every node receives a fresh identifier regardless of what the input
// carried, and every Topic ends up with at least one Scene. Pedagogy fields
// are never invented.
//
// raw is the result of decoding JSON into an `any`: either an object with a
// "sessions" array or the sessions array itself.
func (e *Editor) Normalize(raw any) Tree {
	var sessions []any
	switch v := raw.(type) {
	case map[string]any:
		sessions = asList(v["sessions"])
	case []any:
		sessions = v
	}
	out := make(Tree, 0, len(sessions))
	for i, item := range sessions {
		out = append(out, e.normalizeSession(asObject(item), i+1))
	}
	return out
}

// NormalizeJSON decodes data leniently (see DecodeLoose) and normalizes it.
func (e *Editor) NormalizeJSON(data []byte) Tree {
	return e.Normalize(DecodeLoose(data))
}

func (e *Editor) normalizeSession(obj map[string]any, n int) *Session {
	items := asList(obj["modules"])
	session := &Session{
		ID:      e.id(KindSession),
		Title:   titleOr(obj, e.placeholders.Title(KindSession, n)),
		Modules: make([]*Module, 0, len(items)),
	}
	for i, item := range items {
		session.Modules = append(session.Modules, e.normalizeModule(asObject(item), i+1))
	}
	return session
}

func (e *Editor) normalizeModule(obj map[string]any, n int) *Module {
	items := asList(obj["units"])
	module := &Module{
		ID:    e.id(KindModule),
		Title: titleOr(obj, e.placeholders.Title(KindModule, n)),
		Units: make([]*Unit, 0, len(items)),
	}
	for i, item := range items {
		module.Units = append(module.Units, e.normalizeUnit(asObject(item), i+1))
	}
	return module
}

func (e *Editor) normalizeUnit(obj map[string]any, n int) *Unit {
	items := asList(obj["topics"])
	unit := &Unit{
		ID:     e.id(KindUnit),
		Title:  titleOr(obj, e.placeholders.Title(KindUnit, n)),
		Topics: make([]*Topic, 0, len(items)),
	}
	for i, item := range items {
		unit.Topics = append(unit.Topics, e.normalizeTopic(asObject(item), i+1))
	}
	return unit
}

func (e *Editor) normalizeTopic(obj map[string]any, n int) *Topic {
	items := asList(obj["scenes"])
	topic := &Topic{
		ID:     e.id(KindTopic),
		Title:  titleOr(obj, e.placeholders.Title(KindTopic, n)),
		Scenes: make([]*Scene, 0, max(len(items), 1)),
	}
	for i, item := range items {
		sceneObj := asObject(item)
		topic.Scenes = append(topic.Scenes, &Scene{
			ID:              e.id(KindScene),
			Title:           titleOr(sceneObj, e.placeholders.Title(KindScene, i+1)),
			DurationMinutes: coerceMinutes(sceneObj["durationMinutes"], e.placeholders.SceneMinutes),
		})
	}
	if len(topic.Scenes) == 0 {
		topic.Scenes = append(topic.Scenes, &Scene{
			ID:              e.id(KindScene),
			Title:           e.placeholders.Title(KindScene, 1),
			DurationMinutes: e.placeholders.SceneMinutes,
		})
	}
	return topic
}

// DecodeLoose decodes generator output that may be wrapped in a Markdown code
// fence or surrounded by prose. It returns nil when no JSON value can be
// recovered.
func DecodeLoose(data []byte) any {
	trimmed := bytes.TrimSpace(stripFence(data))
	if len(trimmed) == 0 {
		return nil
	}
	var out any
	if err := json.Unmarshal(trimmed, &out); err == nil {
		return out
	}
	start := bytes.IndexAny(trimmed, "{[")
	if start < 0 {
		return nil
	}
	closer := byte('}')
	if trimmed[start] == '[' {
		closer = ']'
	}
	end := bytes.LastIndexByte(trimmed, closer)
	if end <= start {
		return nil
	}
	if err := json.Unmarshal(trimmed[start:end+1], &out); err != nil {
		return nil
	}
	return out
}

func stripFence(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte("```")) {
		return trimmed
	}
	body := trimmed[3:]
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}
	if end := bytes.LastIndex(body, []byte("```")); end >= 0 {
		body = body[:end]
	}
	return body
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func titleOr(obj map[string]any, fallback string) string {
	if title, ok := obj["title"].(string); ok {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

// coerceMinutes accepts JSON numbers and numeric strings, rounding to whole
// minutes. Anything else, including negative or non-finite values, yields
// fallback.
func coerceMinutes(v any, fallback int) int {
	var f float64
	switch value := v.(type) {
	case float64:
		f = value
	case int:
		f = float64(value)
	case int64:
		f = float64(value)
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return fallback
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fallback
		}
		f = parsed
	default:
		return fallback
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return fallback
	}
	return int(math.Round(f))
}
