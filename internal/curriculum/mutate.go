package curriculum

import (
	"strconv"
	"strings"

	"curriculum/api/internal/util"
)

var defaultID IDFunc = util.NewID

// Labels configures the placeholder titles given to nodes that have none.
// Level formats may contain "{n}", replaced by the node's 1-based position
// among its siblings.
type Labels struct {
	Session      string `yaml:"session" json:"session"`
	Module       string `yaml:"module" json:"module"`
	Unit         string `yaml:"unit" json:"unit"`
	Topic        string `yaml:"topic" json:"topic"`
	Scene        string `yaml:"scene" json:"scene"`
	SceneMinutes int    `yaml:"sceneMinutes" json:"sceneMinutes"`
}

// DefaultLabels titles nodes created interactively.
var DefaultLabels = Labels{
	Session:      "Session {n}",
	Module:       "Module {n}",
	Unit:         "Unit {n}",
	Topic:        "Tema {n}",
	Scene:        "Nueva Escena",
	SceneMinutes: 15,
}

// DefaultPlaceholders titles nodes produced by Normalize when the source
// omitted a title.
var DefaultPlaceholders = Labels{
	Session:      "Sesion {n}",
	Module:       "Modulo {n}",
	Unit:         "Unidad {n}",
	Topic:        "Tema {n}",
	Scene:        "Escena {n}",
	SceneMinutes: 10,
}

// Title renders the placeholder for the n-th node of kind.
func (l Labels) Title(kind Kind, n int) string {
	var format string
	switch kind {
	case KindSession:
		format = l.Session
	case KindModule:
		format = l.Module
	case KindUnit:
		format = l.Unit
	case KindTopic:
		format = l.Topic
	case KindScene:
		format = l.Scene
	}
	return strings.ReplaceAll(format, "{n}", strconv.Itoa(n))
}

func (l Labels) withDefaults(fallback Labels) Labels {
	if strings.TrimSpace(l.Session) == "" {
		l.Session = fallback.Session
	}
	if strings.TrimSpace(l.Module) == "" {
		l.Module = fallback.Module
	}
	if strings.TrimSpace(l.Unit) == "" {
		l.Unit = fallback.Unit
	}
	if strings.TrimSpace(l.Topic) == "" {
		l.Topic = fallback.Topic
	}
	if strings.TrimSpace(l.Scene) == "" {
		l.Scene = fallback.Scene
	}
	if l.SceneMinutes <= 0 {
		l.SceneMinutes = fallback.SceneMinutes
	}
	return l
}

// Options configures an Editor. Zero-valued fields fall back to defaults.
type Options struct {
	NewID        IDFunc
	Labels       Labels
	Placeholders Labels
}

// Editor performs the operations that create nodes and therefore need an
// identifier source. All other edits are package-level functions.
type Editor struct {
	newID        IDFunc
	labels       Labels
	placeholders Labels
}

func NewEditor(opts Options) *Editor {
	newID := opts.NewID
	if newID == nil {
		newID = defaultID
	}
	return &Editor{
		newID:        newID,
		labels:       opts.Labels.withDefaults(DefaultLabels),
		placeholders: opts.Placeholders.withDefaults(DefaultPlaceholders),
	}
}

func (e *Editor) id(kind Kind) string {
	return e.newID(kind.IDPrefix())
}

// AddSession appends an empty Session titled after the current count.
func (e *Editor) AddSession(t Tree) Tree {
	return appendTo(t, e.newSession(len(t)+1))
}

// AddChild appends a defaulted child of kind under the node at parent. The
// kind must be the parent's child kind; an empty parent with KindSession
// behaves as AddSession. Anything else returns t unchanged.
func (e *Editor) AddChild(t Tree, parent Path, kind Kind) Tree {
	if len(parent) == 0 {
		if kind == KindSession {
			return e.AddSession(t)
		}
		return t
	}
	parentKind, ok := parent.Kind()
	if !ok {
		return t
	}
	if childKind, ok := parentKind.ChildKind(); !ok || childKind != kind {
		return t
	}
	next, ok := edit(t, parent, func(n Node) (Node, bool) {
		return e.appendChild(n), true
	})
	if !ok {
		return t
	}
	return next
}

func (e *Editor) newSession(n int) *Session {
	return &Session{ID: e.id(KindSession), Title: e.labels.Title(KindSession, n), Modules: []*Module{}}
}

func (e *Editor) appendChild(n Node) Node {
	switch n.Kind {
	case KindSession:
		cp := *n.Session
		cp.Modules = appendTo(cp.Modules, &Module{
			ID:    e.id(KindModule),
			Title: e.labels.Title(KindModule, len(cp.Modules)+1),
			Units: []*Unit{},
		})
		return Node{Kind: KindSession, Session: &cp}
	case KindModule:
		cp := *n.Module
		cp.Units = appendTo(cp.Units, &Unit{
			ID:     e.id(KindUnit),
			Title:  e.labels.Title(KindUnit, len(cp.Units)+1),
			Topics: []*Topic{},
		})
		return Node{Kind: KindModule, Module: &cp}
	case KindUnit:
		cp := *n.Unit
		cp.Topics = appendTo(cp.Topics, &Topic{
			ID:     e.id(KindTopic),
			Title:  e.labels.Title(KindTopic, len(cp.Topics)+1),
			Scenes: []*Scene{},
		})
		return Node{Kind: KindUnit, Unit: &cp}
	case KindTopic:
		cp := *n.Topic
		cp.Scenes = appendTo(cp.Scenes, &Scene{
			ID:              e.id(KindScene),
			Title:           e.labels.Title(KindScene, len(cp.Scenes)+1),
			DurationMinutes: e.labels.SceneMinutes,
		})
		return Node{Kind: KindTopic, Topic: &cp}
	}
	return n
}

// RenameNode sets the title of the node at path. Blank titles and paths that
// do not resolve leave t unchanged.
func RenameNode(t Tree, path Path, title string) Tree {
	title = strings.TrimSpace(title)
	if title == "" {
		return t
	}
	next, ok := edit(t, path, func(n Node) (Node, bool) {
		if n.Title() == title {
			return n, false
		}
		switch n.Kind {
		case KindSession:
			cp := *n.Session
			cp.Title = title
			return Node{Kind: n.Kind, Session: &cp}, true
		case KindModule:
			cp := *n.Module
			cp.Title = title
			return Node{Kind: n.Kind, Module: &cp}, true
		case KindUnit:
			cp := *n.Unit
			cp.Title = title
			return Node{Kind: n.Kind, Unit: &cp}, true
		case KindTopic:
			cp := *n.Topic
			cp.Title = title
			return Node{Kind: n.Kind, Topic: &cp}, true
		case KindScene:
			cp := *n.Scene
			cp.Title = title
			return Node{Kind: n.Kind, Scene: &cp}, true
		}
		return n, false
	})
	if !ok {
		return t
	}
	return next
}

// DeleteNode removes the node at path together with its whole subtree.
func DeleteNode(t Tree, path Path) Tree {
	if _, ok := path.Kind(); !ok {
		return t
	}
	id := path[len(path)-1]
	if len(path) == 1 {
		next, ok := removeIn(t, id)
		if !ok {
			return t
		}
		return next
	}
	next, ok := edit(t, path.Parent(), func(n Node) (Node, bool) {
		return removeChild(n, id)
	})
	if !ok {
		return t
	}
	return next
}

func removeChild(n Node, id string) (Node, bool) {
	switch n.Kind {
	case KindSession:
		modules, ok := removeIn(n.Session.Modules, id)
		if !ok {
			return n, false
		}
		cp := *n.Session
		cp.Modules = modules
		return Node{Kind: n.Kind, Session: &cp}, true
	case KindModule:
		units, ok := removeIn(n.Module.Units, id)
		if !ok {
			return n, false
		}
		cp := *n.Module
		cp.Units = units
		return Node{Kind: n.Kind, Module: &cp}, true
	case KindUnit:
		topics, ok := removeIn(n.Unit.Topics, id)
		if !ok {
			return n, false
		}
		cp := *n.Unit
		cp.Topics = topics
		return Node{Kind: n.Kind, Unit: &cp}, true
	case KindTopic:
		scenes, ok := removeIn(n.Topic.Scenes, id)
		if !ok {
			return n, false
		}
		cp := *n.Topic
		cp.Scenes = scenes
		return Node{Kind: n.Kind, Topic: &cp}, true
	}
	return n, false
}

// ScenePatch carries the Scene fields to overwrite; nil fields are kept.
// Setting an optional field to "" clears it.
type ScenePatch struct {
	Title              *string     `json:"title,omitempty"`
	DurationMinutes    *int        `json:"durationMinutes,omitempty"`
	LearningObjective  *string     `json:"learningObjective,omitempty"`
	ABCMethod          *ABCMethod  `json:"abcMethod,omitempty"`
	MediaLevel         *MediaLevel `json:"mediaLevel,omitempty"`
	MediaFormat        *string     `json:"mediaFormat,omitempty"`
	InteractionMoment  *string     `json:"interactionMoment,omitempty"`
	SelectedActivityID *string     `json:"selectedActivityId,omitempty"`
}

// Apply merges p into a copy of s. Blank titles, negative durations and
// unknown enum values are ignored.
func (p ScenePatch) Apply(s Scene) Scene {
	if p.Title != nil {
		if title := strings.TrimSpace(*p.Title); title != "" {
			s.Title = title
		}
	}
	if p.DurationMinutes != nil && *p.DurationMinutes >= 0 {
		s.DurationMinutes = *p.DurationMinutes
	}
	if p.LearningObjective != nil {
		s.LearningObjective = strings.TrimSpace(*p.LearningObjective)
	}
	if p.ABCMethod != nil && (*p.ABCMethod == "" || p.ABCMethod.Valid()) {
		s.ABCMethod = *p.ABCMethod
	}
	if p.MediaLevel != nil && (*p.MediaLevel == "" || p.MediaLevel.Valid()) {
		s.MediaLevel = *p.MediaLevel
	}
	if p.MediaFormat != nil {
		s.MediaFormat = strings.TrimSpace(*p.MediaFormat)
	}
	if p.InteractionMoment != nil {
		s.InteractionMoment = strings.TrimSpace(*p.InteractionMoment)
	}
	if p.SelectedActivityID != nil {
		s.SelectedActivityID = strings.TrimSpace(*p.SelectedActivityID)
	}
	return s
}

// UpdateScene merges patch into the Scene with sceneID wherever it sits in
// the tree. Scene ids are unique tree-wide, so no path is needed.
func UpdateScene(t Tree, sceneID string, patch ScenePatch) Tree {
	path, _, ok := FindScene(t, sceneID)
	if !ok {
		return t
	}
	next, ok := edit(t, path, func(n Node) (Node, bool) {
		updated := patch.Apply(*n.Scene)
		if updated == *n.Scene {
			return n, false
		}
		return Node{Kind: KindScene, Scene: &updated}, true
	})
	if !ok {
		return t
	}
	return next
}

// ReplaceAll discards t in favour of sessions.
func ReplaceAll(_ Tree, sessions Tree) Tree {
	out := make(Tree, len(sessions))
	copy(out, sessions)
	return out
}

// edit returns a copy of t where the node at path is replaced by fn's
// result. Only the ancestors of that node are copied; all other subtrees are
// shared with t. It reports false, and returns t, when path does not resolve
// or fn declines the change.
func edit(t Tree, path Path, fn func(Node) (Node, bool)) (Tree, bool) {
	if _, ok := path.Kind(); !ok {
		return t, false
	}
	i := indexOf(t, path[0])
	if i < 0 {
		return t, false
	}
	session, ok := editSession(t[i], path[1:], fn)
	if !ok {
		return t, false
	}
	return replaceAt(t, i, session), true
}

func editSession(s *Session, rest Path, fn func(Node) (Node, bool)) (*Session, bool) {
	if len(rest) == 0 {
		n, ok := fn(Node{Kind: KindSession, Session: s})
		return n.Session, ok
	}
	i := indexOf(s.Modules, rest[0])
	if i < 0 {
		return nil, false
	}
	module, ok := editModule(s.Modules[i], rest[1:], fn)
	if !ok {
		return nil, false
	}
	cp := *s
	cp.Modules = replaceAt(s.Modules, i, module)
	return &cp, true
}

func editModule(m *Module, rest Path, fn func(Node) (Node, bool)) (*Module, bool) {
	if len(rest) == 0 {
		n, ok := fn(Node{Kind: KindModule, Module: m})
		return n.Module, ok
	}
	i := indexOf(m.Units, rest[0])
	if i < 0 {
		return nil, false
	}
	unit, ok := editUnit(m.Units[i], rest[1:], fn)
	if !ok {
		return nil, false
	}
	cp := *m
	cp.Units = replaceAt(m.Units, i, unit)
	return &cp, true
}

func editUnit(u *Unit, rest Path, fn func(Node) (Node, bool)) (*Unit, bool) {
	if len(rest) == 0 {
		n, ok := fn(Node{Kind: KindUnit, Unit: u})
		return n.Unit, ok
	}
	i := indexOf(u.Topics, rest[0])
	if i < 0 {
		return nil, false
	}
	topic, ok := editTopic(u.Topics[i], rest[1:], fn)
	if !ok {
		return nil, false
	}
	cp := *u
	cp.Topics = replaceAt(u.Topics, i, topic)
	return &cp, true
}

func editTopic(t *Topic, rest Path, fn func(Node) (Node, bool)) (*Topic, bool) {
	if len(rest) == 0 {
		n, ok := fn(Node{Kind: KindTopic, Topic: t})
		return n.Topic, ok
	}
	if len(rest) != 1 {
		return nil, false
	}
	i := indexOf(t.Scenes, rest[0])
	if i < 0 {
		return nil, false
	}
	n, ok := fn(Node{Kind: KindScene, Scene: t.Scenes[i]})
	if !ok {
		return nil, false
	}
	cp := *t
	cp.Scenes = replaceAt(t.Scenes, i, n.Scene)
	return &cp, true
}

// The slice helpers below always allocate, so a published slice is never
// written through a shared backing array.

func appendTo[S ~[]T, T any](items S, item T) S {
	out := make(S, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func replaceAt[S ~[]T, T any](items S, i int, item T) S {
	out := make(S, len(items))
	copy(out, items)
	out[i] = item
	return out
}

func removeIn[S ~[]T, T identified](items S, id string) (S, bool) {
	i := indexOf[T](items, id)
	if i < 0 {
		return items, false
	}
	out := make(S, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), true
}
