package curriculum

import "sync"

// Store holds the current Tree of one project. Replace swaps the whole tree
// at once; readers observe either the previous or the new tree.
type Store struct {
	mu   sync.RWMutex
	root Tree
}

func NewStore(initial Tree) *Store {
	return &Store{root: initial}
}

// Root returns the current tree. Callers must not mutate it.
func (s *Store) Root() Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Get resolves path against the current tree.
func (s *Store) Get(path Path) (Node, bool) {
	return Resolve(s.Root(), path)
}

// Replace installs next as the current tree.
func (s *Store) Replace(next Tree) {
	s.mu.Lock()
	s.root = next
	s.mu.Unlock()
}

// Apply runs op against the current tree and installs its result, holding
// the write lock so two edits in flight cannot drop each other. It returns
// the installed tree.
func (s *Store) Apply(op func(Tree) Tree) Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = op(s.root)
	return s.root
}

// Resolve finds the node addressed by path. A path that does not resolve,
// including an empty path or one longer than five segments, yields false.
func Resolve(t Tree, path Path) (Node, bool) {
	if _, ok := path.Kind(); !ok {
		return Node{}, false
	}
	i := indexOf(t, path[0])
	if i < 0 {
		return Node{}, false
	}
	session := t[i]
	if len(path) == 1 {
		return Node{Kind: KindSession, Session: session}, true
	}
	i = indexOf(session.Modules, path[1])
	if i < 0 {
		return Node{}, false
	}
	module := session.Modules[i]
	if len(path) == 2 {
		return Node{Kind: KindModule, Module: module}, true
	}
	i = indexOf(module.Units, path[2])
	if i < 0 {
		return Node{}, false
	}
	unit := module.Units[i]
	if len(path) == 3 {
		return Node{Kind: KindUnit, Unit: unit}, true
	}
	i = indexOf(unit.Topics, path[3])
	if i < 0 {
		return Node{}, false
	}
	topic := unit.Topics[i]
	if len(path) == 4 {
		return Node{Kind: KindTopic, Topic: topic}, true
	}
	i = indexOf(topic.Scenes, path[4])
	if i < 0 {
		return Node{}, false
	}
	return Node{Kind: KindScene, Scene: topic.Scenes[i]}, true
}

// FindScene scans the tree for a Scene by id and returns its full path.
func FindScene(t Tree, sceneID string) (Path, *Scene, bool) {
	for _, session := range t {
		for _, module := range session.Modules {
			for _, unit := range module.Units {
				for _, topic := range unit.Topics {
					for _, scene := range topic.Scenes {
						if scene.ID == sceneID {
							return Path{session.ID, module.ID, unit.ID, topic.ID, scene.ID}, scene, true
						}
					}
				}
			}
		}
	}
	return nil, nil, false
}

// Walk visits every node depth-first in display order. Returning false from
// visit skips the node's descendants.
func Walk(t Tree, visit func(path Path, node Node) bool) {
	for _, session := range t {
		sp := Path{session.ID}
		if !visit(sp, Node{Kind: KindSession, Session: session}) {
			continue
		}
		for _, module := range session.Modules {
			mp := sp.Child(module.ID)
			if !visit(mp, Node{Kind: KindModule, Module: module}) {
				continue
			}
			for _, unit := range module.Units {
				up := mp.Child(unit.ID)
				if !visit(up, Node{Kind: KindUnit, Unit: unit}) {
					continue
				}
				for _, topic := range unit.Topics {
					tp := up.Child(topic.ID)
					if !visit(tp, Node{Kind: KindTopic, Topic: topic}) {
						continue
					}
					for _, scene := range topic.Scenes {
						visit(tp.Child(scene.ID), Node{Kind: KindScene, Scene: scene})
					}
				}
			}
		}
	}
}

type identified interface {
	nodeID() string
}

func (s *Session) nodeID() string { return s.ID }
func (m *Module) nodeID() string  { return m.ID }
func (u *Unit) nodeID() string    { return u.ID }
func (t *Topic) nodeID() string   { return t.ID }
func (s *Scene) nodeID() string   { return s.ID }

func indexOf[T identified](items []T, id string) int {
	for i, item := range items {
		if item.nodeID() == id {
			return i
		}
	}
	return -1
}
