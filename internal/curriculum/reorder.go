package curriculum

// Reorder moves the sibling activeID to the position held by overID. Both
// must be children of kind directly under parent (an empty parent addresses
// the root Sessions). The move has splice semantics: nodes between the two
// positions shift by one slot. Cross-kind or cross-parent requests, unknown
// ids and activeID == overID return t unchanged.
func Reorder(t Tree, activeID, overID string, kind Kind, parent Path) Tree {
	if activeID == overID || !kind.Valid() || int(kind) != len(parent)+1 {
		return t
	}
	if len(parent) == 0 {
		next, ok := moveIn(t, activeID, overID)
		if !ok {
			return t
		}
		return next
	}
	next, ok := edit(t, parent, func(n Node) (Node, bool) {
		return moveChild(n, activeID, overID)
	})
	if !ok {
		return t
	}
	return next
}

func moveChild(n Node, activeID, overID string) (Node, bool) {
	switch n.Kind {
	case KindSession:
		modules, ok := moveIn(n.Session.Modules, activeID, overID)
		if !ok {
			return n, false
		}
		cp := *n.Session
		cp.Modules = modules
		return Node{Kind: n.Kind, Session: &cp}, true
	case KindModule:
		units, ok := moveIn(n.Module.Units, activeID, overID)
		if !ok {
			return n, false
		}
		cp := *n.Module
		cp.Units = units
		return Node{Kind: n.Kind, Module: &cp}, true
	case KindUnit:
		topics, ok := moveIn(n.Unit.Topics, activeID, overID)
		if !ok {
			return n, false
		}
		cp := *n.Unit
		cp.Topics = topics
		return Node{Kind: n.Kind, Unit: &cp}, true
	case KindTopic:
		scenes, ok := moveIn(n.Topic.Scenes, activeID, overID)
		if !ok {
			return n, false
		}
		cp := *n.Topic
		cp.Scenes = scenes
		return Node{Kind: n.Kind, Topic: &cp}, true
	}
	return n, false
}

func moveIn[S ~[]T, T identified](items S, activeID, overID string) (S, bool) {
	from := indexOf[T](items, activeID)
	to := indexOf[T](items, overID)
	if from < 0 || to < 0 || from == to {
		return items, false
	}
	return arrayMove(items, from, to), true
}

// arrayMove returns a copy of items with the element at from relocated to to.
func arrayMove[S ~[]T, T any](items S, from, to int) S {
	moved := items[from]
	out := make(S, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	out = append(out, moved)
	copy(out[to+1:], out[to:len(out)-1])
	out[to] = moved
	return out
}
