// Package curriculum holds the canonical Session → Module → Unit → Topic →
// Scene tree and the pure operations that edit, reorder, normalize and roll
// it up.
//
// A Tree is treated as immutable once published: every operation returns a
// new top-level slice, rebuilds the ancestor chain of the node it touched and
// reuses every other subtree by pointer, so callers can compare pointers at
// any level to find what changed.
package curriculum

import (
	"fmt"
	"strings"
)

// Kind identifies one of the five levels of the hierarchy. Its numeric value
// equals the length of a Path that addresses a node of that kind.
type Kind int

const (
	KindSession Kind = iota + 1
	KindModule
	KindUnit
	KindTopic
	KindScene
)

var kindNames = map[Kind]string{
	KindSession: "session",
	KindModule:  "module",
	KindUnit:    "unit",
	KindTopic:   "topic",
	KindScene:   "scene",
}

var kindPrefixes = map[Kind]string{
	KindSession: "ses",
	KindModule:  "mod",
	KindUnit:    "unt",
	KindTopic:   "top",
	KindScene:   "scn",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the five levels.
func (k Kind) Valid() bool {
	return k >= KindSession && k <= KindScene
}

// ChildKind returns the kind of k's children. Scenes have none.
func (k Kind) ChildKind() (Kind, bool) {
	if k < KindSession || k >= KindScene {
		return 0, false
	}
	return k + 1, true
}

// IDPrefix is the identifier prefix used for freshly created nodes of kind k.
func (k Kind) IDPrefix() string {
	return kindPrefixes[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, ok := ParseKind(string(text))
	if !ok {
		return fmt.Errorf("unknown kind %q", string(text))
	}
	*k = parsed
	return nil
}

// ParseKind accepts the lower-case level name ("session" … "scene").
func ParseKind(value string) (Kind, bool) {
	needle := strings.ToLower(strings.TrimSpace(value))
	for kind, name := range kindNames {
		if name == needle {
			return kind, true
		}
	}
	return 0, false
}

// ABCMethod is the ABC learning design activity type of a Scene.
type ABCMethod string

const (
	ABCAcquisition   ABCMethod = "Acquisition"
	ABCInquiry       ABCMethod = "Inquiry"
	ABCDiscussion    ABCMethod = "Discussion"
	ABCPractice      ABCMethod = "Practice"
	ABCCollaboration ABCMethod = "Collaboration"
	ABCProduction    ABCMethod = "Production"
)

// ABCMethods lists the methods in display order.
var ABCMethods = []ABCMethod{
	ABCAcquisition, ABCInquiry, ABCDiscussion, ABCPractice, ABCCollaboration, ABCProduction,
}

func (m ABCMethod) Valid() bool {
	for _, candidate := range ABCMethods {
		if m == candidate {
			return true
		}
	}
	return false
}

// MediaLevel grades the production effort of a Scene's media.
type MediaLevel string

const (
	MediaLevel1 MediaLevel = "Level1"
	MediaLevel2 MediaLevel = "Level2"
	MediaLevel3 MediaLevel = "Level3"
	MediaLevel4 MediaLevel = "Level4"
)

var MediaLevels = []MediaLevel{MediaLevel1, MediaLevel2, MediaLevel3, MediaLevel4}

func (l MediaLevel) Valid() bool {
	for _, candidate := range MediaLevels {
		if l == candidate {
			return true
		}
	}
	return false
}

// Tree is the root sequence of Sessions.
type Tree []*Session

type Session struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Modules []*Module `json:"modules"`
}

type Module struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Units []*Unit `json:"units"`
}

type Unit struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Topics []*Topic `json:"topics"`
}

type Topic struct {
	ID     string   `json:"id"`
	Title  string   `json:"title"`
	Scenes []*Scene `json:"scenes"`
}

// Scene is the leaf of the hierarchy and the unit of pedagogical enrichment.
// Optional string fields are absent when blank.
type Scene struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	DurationMinutes    int        `json:"durationMinutes"`
	LearningObjective  string     `json:"learningObjective,omitempty"`
	ABCMethod          ABCMethod  `json:"abcMethod,omitempty"`
	MediaLevel         MediaLevel `json:"mediaLevel,omitempty"`
	MediaFormat        string     `json:"mediaFormat,omitempty"`
	InteractionMoment  string     `json:"interactionMoment,omitempty"`
	SelectedActivityID string     `json:"selectedActivityId,omitempty"`
}

// Path addresses a node from the root: [sessionID, moduleID?, unitID?,
// topicID?, sceneID?]. Its length selects the level.
type Path []string

// Kind returns the level addressed by p.
func (p Path) Kind() (Kind, bool) {
	kind := Kind(len(p))
	return kind, kind.Valid()
}

// Child returns a new path extended by id.
func (p Path) Child(id string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, id)
}

// Parent returns the path of p's parent; the root has an empty path.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

func (p Path) String() string {
	return strings.Join(p, "/")
}

// Node is a tagged variant holding exactly one of the five concrete node
// pointers, selected by Kind.
type Node struct {
	Kind    Kind
	Session *Session
	Module  *Module
	Unit    *Unit
	Topic   *Topic
	Scene   *Scene
}

func (n Node) ID() string {
	switch n.Kind {
	case KindSession:
		return n.Session.ID
	case KindModule:
		return n.Module.ID
	case KindUnit:
		return n.Unit.ID
	case KindTopic:
		return n.Topic.ID
	case KindScene:
		return n.Scene.ID
	}
	return ""
}

func (n Node) Title() string {
	switch n.Kind {
	case KindSession:
		return n.Session.Title
	case KindModule:
		return n.Module.Title
	case KindUnit:
		return n.Unit.Title
	case KindTopic:
		return n.Topic.Title
	case KindScene:
		return n.Scene.Title
	}
	return ""
}

// ChildCount returns the number of direct children of n.
func (n Node) ChildCount() int {
	switch n.Kind {
	case KindSession:
		return len(n.Session.Modules)
	case KindModule:
		return len(n.Module.Units)
	case KindUnit:
		return len(n.Unit.Topics)
	case KindTopic:
		return len(n.Topic.Scenes)
	}
	return 0
}

// IDFunc produces a fresh identifier for a node with the given prefix.
// util.NewID satisfies it.
type IDFunc func(prefix string) string
