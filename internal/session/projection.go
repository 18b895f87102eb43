package session

// Lens focuses on a field U of T
type Lens[T, U any] struct {
	Get func(T) U
	Set func(*T, U)
}

// Prism focuses on one variant U of a tagged union T
type Prism[T, U any] struct {
	Extract func(T) (U, bool)
	Embed   func(U) T
}

// Project derives a state scoped to the part of the child selected by get
func Project[T, U any](s State[T], get func(T) U) State[U] {
	return State[U]{
		currentUser: s.currentUser,
		accounts:    s.accounts,
		child:       get(s.child),
	}
}

// ProjectOptional is like Project for a child that may be absent
func ProjectOptional[T, U any](s State[T], get func(T) (U, bool)) (State[U], bool) {
	child, ok := get(s.child)
	if !ok {
		return State[U]{}, false
	}
	return State[U]{
		currentUser: s.currentUser,
		accounts:    s.accounts,
		child:       child,
	}, true
}

// ProjectCase derives a state scoped to one variant of the child. It reports
// false if the child holds another variant.
func ProjectCase[T, U any](s State[T], p Prism[T, U]) (State[U], bool) {
	return ProjectOptional(s, p.Extract)
}

// Merge writes child back into s at the site described by set, then takes
// over child's current user and selected account status.
func Merge[T, U any](s *State[T], set func(*T, U), child State[U]) {
	set(&s.child, child.child)
	s.adopt(child.currentUser, child.accounts)
}

// MergeOptional is Merge for the result of ProjectOptional. Nothing happens
// when ok is false.
func MergeOptional[T, U any](s *State[T], set func(*T, U), child State[U], ok bool) {
	if !ok {
		return
	}
	Merge(s, set, child)
}

// MergeCase embeds child as the new variant of s. Nothing happens when ok is
// false.
func MergeCase[T, U any](s *State[T], p Prism[T, U], child State[U], ok bool) {
	if !ok {
		return
	}
	s.child = p.Embed(child.child)
	s.adopt(child.currentUser, child.accounts)
}

// Scope projects s through l, runs fn on the projection and merges it back
func Scope[T, U, R any](s *State[T], l Lens[T, U], fn func(*State[U]) R) R {
	child := Project(*s, l.Get)
	r := fn(&child)
	Merge(s, l.Set, child)
	return r
}

// ScopeCase runs fn on the variant of s selected by p. It reports false, and
// does not call fn, if s holds another variant.
func ScopeCase[T, U, R any](s *State[T], p Prism[T, U], fn func(*State[U]) R) (R, bool) {
	child, ok := ProjectCase(*s, p)
	if !ok {
		var zero R
		return zero, false
	}
	r := fn(&child)
	MergeCase(s, p, child, true)
	return r, true
}
