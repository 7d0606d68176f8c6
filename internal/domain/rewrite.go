package domain

import (
	"path"
	"sort"
	"strings"
)

// MaterialReferencer exposes the material references held by a model's mesh groups
type MaterialReferencer interface {
	MaterialRefs() []string
	SetMaterialRef(i int, ref string)
}

// TextureReferencer exposes the texture references held by a material
type TextureReferencer interface {
	TextureRefs() []string
	SetTextureRef(i int, ref string)
}

// RewriteMaterialRefs replaces every material reference whose file name is a
// key of names. References keep their folder part (usually a bare "/").
// Returns true when at least one reference changed.
func RewriteMaterialRefs(doc MaterialReferencer, names map[string]string) bool {
	changed := false
	for i, ref := range doc.MaterialRefs() {
		dir, file := path.Split(ref)
		repl, ok := names[file]
		if !ok || repl == file {
			continue
		}
		doc.SetMaterialRef(i, dir+repl)
		changed = true
	}
	return changed
}

// RewriteTextureRefs replaces old texture paths with their new paths inside
// every texture reference. Longer old paths are substituted first.
func RewriteTextureRefs(doc TextureReferencer, textures PathMap) bool {
	olds := textures.Olds()
	sort.SliceStable(olds, func(i, j int) bool { return len(olds[i]) > len(olds[j]) })

	changed := false
	for i, ref := range doc.TextureRefs() {
		next := ref
		for _, old := range olds {
			if !strings.Contains(next, old) {
				continue
			}
			repl, _ := textures.Get(old)
			next = strings.ReplaceAll(next, old, repl)
			break
		}
		if next != ref {
			doc.SetTextureRef(i, next)
			changed = true
		}
	}
	return changed
}
