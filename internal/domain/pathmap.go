package domain

import (
	"path"
	"sort"
)

// PathMap is an immutable old path -> new path mapping.
// The zero value is an empty map.
type PathMap struct {
	m map[string]string
}

// NewPathMap copies pairs into a new PathMap
func NewPathMap(pairs map[string]string) PathMap {
	m := make(map[string]string, len(pairs))
	for k, v := range pairs {
		m[k] = v
	}
	return PathMap{m: m}
}

// BuildPathMap translates every path from source to destination
func BuildPathMap(source, destination RootInfo, paths []string) PathMap {
	m := make(map[string]string, len(paths))
	for _, p := range paths {
		m[p] = Translate(source, destination, p)
	}
	return PathMap{m: m}
}

// Get returns the new path for old
func (p PathMap) Get(old string) (string, bool) {
	v, ok := p.m[old]
	return v, ok
}

// Len returns the number of pairs
func (p PathMap) Len() int {
	return len(p.m)
}

// Olds returns the old paths in sorted order
func (p PathMap) Olds() []string {
	olds := make([]string, 0, len(p.m))
	for k := range p.m {
		olds = append(olds, k)
	}
	sort.Strings(olds)
	return olds
}

// Values returns the distinct new paths in sorted order
func (p PathMap) Values() []string {
	set := make(PathSet, len(p.m))
	for _, v := range p.m {
		set.Add(v)
	}
	return set.Sorted()
}

// Each calls fn for every pair in old-path order
func (p PathMap) Each(fn func(oldPath, newPath string)) {
	for _, old := range p.Olds() {
		fn(old, p.m[old])
	}
}

// With returns a copy of the map with one more pair
func (p PathMap) With(oldPath, newPath string) PathMap {
	next := NewPathMap(p.m)
	next.m[oldPath] = newPath
	return next
}

// Union returns a copy containing every pair of p and others; later maps win
func (p PathMap) Union(others ...PathMap) PathMap {
	next := NewPathMap(p.m)
	for _, o := range others {
		for k, v := range o.m {
			next.m[k] = v
		}
	}
	return next
}

// FileNames maps old file names to new file names
func (p PathMap) FileNames() map[string]string {
	names := make(map[string]string, len(p.m))
	for k, v := range p.m {
		names[path.Base(k)] = path.Base(v)
	}
	return names
}

// AsMap returns a copy of the pairs
func (p PathMap) AsMap() map[string]string {
	return NewPathMap(p.m).m
}

// PathSet is a set of archive paths
type PathSet map[string]struct{}

// NewPathSet builds a set from paths
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s.Add(p)
	}
	return s
}

func (s PathSet) Add(p string) {
	s[p] = struct{}{}
}

func (s PathSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s PathSet) Remove(p string) {
	delete(s, p)
}

// Clone returns an independent copy
func (s PathSet) Clone() PathSet {
	c := make(PathSet, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

// With returns a copy of s that also holds paths
func (s PathSet) With(paths ...string) PathSet {
	c := s.Clone()
	for _, p := range paths {
		c.Add(p)
	}
	return c
}

// Sorted returns the members in sorted order
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
