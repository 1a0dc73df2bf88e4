package audience

import "sort"

// UserSet is an unordered set of user ids
type UserSet map[int64]struct{}

// NewUserSet builds a set from ids; duplicates collapse
func NewUserSet(ids ...int64) UserSet {
	s := make(UserSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports membership
func (s UserSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the set size
func (s UserSet) Len() int {
	return len(s)
}

// Intersect returns the ids present in both sets
func (s UserSet) Intersect(other UserSet) UserSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(UserSet, len(small))
	for id := range small {
		if large.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Union returns the ids present in either set
func (s UserSet) Union(other UserSet) UserSet {
	out := make(UserSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the ids in ascending order
func (s UserSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
