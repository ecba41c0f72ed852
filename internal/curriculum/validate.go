package curriculum

import (
	"fmt"
	"strings"
)

// TreeError describes the first invalid node found by Validate. Location
// addresses the node by position, e.g. "sessions[0].modules[2]", so null
// nodes and nodes with blank ids can still be named.
type TreeError struct {
	Location string
	ID       string
	Field    string
	Reason   string
}

func (e *TreeError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s (%s): %s %s", e.Location, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Location, e.Field, e.Reason)
}

// Validate checks a tree received from outside the editor. Every node must be
// non-null with a non-blank id unique across all levels; scenes must have a
// non-negative duration and, when set, a known ABC method and media level.
func Validate(t Tree) error {
	c := treeChecker{seen: make(map[string]string)}
	for i, session := range t {
		loc := fmt.Sprintf("sessions[%d]", i)
		if session == nil {
			return nullNode(loc)
		}
		if err := c.id(loc, session.ID); err != nil {
			return err
		}
		for j, module := range session.Modules {
			loc := fmt.Sprintf("%s.modules[%d]", loc, j)
			if module == nil {
				return nullNode(loc)
			}
			if err := c.id(loc, module.ID); err != nil {
				return err
			}
			for k, unit := range module.Units {
				loc := fmt.Sprintf("%s.units[%d]", loc, k)
				if unit == nil {
					return nullNode(loc)
				}
				if err := c.id(loc, unit.ID); err != nil {
					return err
				}
				for l, topic := range unit.Topics {
					loc := fmt.Sprintf("%s.topics[%d]", loc, l)
					if topic == nil {
						return nullNode(loc)
					}
					if err := c.id(loc, topic.ID); err != nil {
						return err
					}
					for m, scene := range topic.Scenes {
						loc := fmt.Sprintf("%s.scenes[%d]", loc, m)
						if scene == nil {
							return nullNode(loc)
						}
						if err := c.id(loc, scene.ID); err != nil {
							return err
						}
						if err := checkScene(loc, scene); err != nil {
							return err
						}
					}
				}
			}
		}
	}
	return nil
}

type treeChecker struct {
	// id -> location of first use
	seen map[string]string
}

func (c treeChecker) id(loc, id string) error {
	if strings.TrimSpace(id) == "" {
		return &TreeError{Location: loc, Field: "id", Reason: "is required"}
	}
	if first, ok := c.seen[id]; ok {
		return &TreeError{Location: loc, ID: id, Field: "id", Reason: "duplicates " + first}
	}
	c.seen[id] = loc
	return nil
}

func checkScene(loc string, scene *Scene) error {
	switch {
	case scene.DurationMinutes < 0:
		return &TreeError{Location: loc, ID: scene.ID, Field: "durationMinutes", Reason: "must not be negative"}
	case scene.ABCMethod != "" && !scene.ABCMethod.Valid():
		return &TreeError{Location: loc, ID: scene.ID, Field: "abcMethod", Reason: fmt.Sprintf("unknown value %q", scene.ABCMethod)}
	case scene.MediaLevel != "" && !scene.MediaLevel.Valid():
		return &TreeError{Location: loc, ID: scene.ID, Field: "mediaLevel", Reason: fmt.Sprintf("unknown value %q", scene.MediaLevel)}
	}
	return nil
}

func nullNode(loc string) error {
	return &TreeError{Location: loc, Field: "node", Reason: "must not be null"}
}

// Compact returns t without null nodes at any level. Nodes are copied; t is
// left untouched. A nil child list stays nil.
func Compact(t Tree) Tree {
	out := make(Tree, 0, len(t))
	for _, session := range t {
		if session == nil {
			continue
		}
		s := *session
		s.Modules = compactCap[*Module](session.Modules)
		for _, module := range session.Modules {
			if module == nil {
				continue
			}
			m := *module
			m.Units = compactCap[*Unit](module.Units)
			for _, unit := range module.Units {
				if unit == nil {
					continue
				}
				u := *unit
				u.Topics = compactCap[*Topic](unit.Topics)
				for _, topic := range unit.Topics {
					if topic == nil {
						continue
					}
					tp := *topic
					tp.Scenes = compactCap[*Scene](topic.Scenes)
					for _, scene := range topic.Scenes {
						if scene == nil {
							continue
						}
						sc := *scene
						tp.Scenes = append(tp.Scenes, &sc)
					}
					u.Topics = append(u.Topics, &tp)
				}
				m.Units = append(m.Units, &u)
			}
			s.Modules = append(s.Modules, &m)
		}
		out = append(out, &s)
	}
	return out
}

func compactCap[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return make([]T, 0, len(in))
}
