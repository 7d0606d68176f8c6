package domain

import (
	"path"
	"regexp"
	"strings"
)

const commonAssetPrefix = "chara/common/"

// translation carries one path through the rule list
type translation struct {
	source      RootInfo
	destination RootInfo
	oldPath     string
}

// PathRule is one step of path translation: a predicate and the transform
// applied when it matches. Rules are tried in order and the first match wins.
type PathRule struct {
	Name  string
	Match func(t translation) bool
	Apply func(t translation) string
}

var pathRules = []PathRule{
	{Name: "common-asset", Match: matchCommonAsset, Apply: applyCommonAsset},
	{Name: "hair-material", Match: matchHairMaterial, Apply: applyHairMaterial},
	{Name: "root-relative", Match: matchRootRelative, Apply: applyRootRelative},
	{Name: "fallback", Match: func(translation) bool { return true }, Apply: applyFallback},
}

// Translate maps a path of source's file graph onto destination.
// A root cloned onto itself keeps every path.
func Translate(source, destination RootInfo, oldPath string) string {
	if source == destination {
		return oldPath
	}
	t := translation{source: source, destination: destination, oldPath: oldPath}
	for _, rule := range pathRules {
		if rule.Match(t) {
			return rule.Apply(t)
		}
	}
	return oldPath
}

// RuleFor returns the name of the rule that translates oldPath
func RuleFor(source, destination RootInfo, oldPath string) string {
	t := translation{source: source, destination: destination, oldPath: oldPath}
	for _, rule := range pathRules {
		if rule.Match(t) {
			return rule.Name
		}
	}
	return ""
}

func matchCommonAsset(t translation) bool {
	return strings.HasPrefix(t.oldPath, commonAssetPrefix)
}

func applyCommonAsset(t translation) string {
	return t.destination.RootFolder() + "common/" + strings.TrimPrefix(t.oldPath, commonAssetPrefix)
}

var (
	raceFolderToken = regexp.MustCompile(`/c[0-9]{4}`)
	hairFolderToken = regexp.MustCompile(`/h[0-9]{4}`)
	hairFilePrefix  = regexp.MustCompile(`^mt_c[0-9]{4}h[0-9]{4}`)
	hairFileSuffix  = regexp.MustCompile(`^(mt_c[0-9]{4}h[0-9]{4})(?:_c[0-9]{4})?(.+)$`)
)

func matchHairMaterial(t translation) bool {
	d := t.destination
	return d.PrimaryType == ItemTypeHuman && d.SecondaryType == ItemTypeHair &&
		strings.HasSuffix(t.oldPath, ".mtrl")
}

func applyHairMaterial(t translation) string {
	hairRoot := t.destination.HairMaterialRoot()
	race := pad4(hairRoot.PrimaryID)
	hair := pad4(hairRoot.SecondaryID)

	p := raceFolderToken.ReplaceAllString(t.oldPath, "/c"+race)
	p = hairFolderToken.ReplaceAllString(p, "/h"+hair)

	folder, file := path.Dir(p), path.Base(p)
	if !strings.HasPrefix(folder+"/", hairRoot.RootFolder()) {
		folder = hairRoot.RootFolder() + "material/v0001"
	}

	file = hairFilePrefix.ReplaceAllString(file, "mt_c"+race+"h"+hair)
	file = hairFileSuffix.ReplaceAllString(file, "${1}_c"+pad4(t.destination.PrimaryID)+"${2}")
	return folder + "/" + file
}

// splitRootPath returns the part of p below the root folder when p has the
// chara/<type>/<p><id>[/obj/<sub>/<s><subid>]/<rest> shape.
func splitRootPath(p string) (string, bool) {
	segs := strings.Split(p, "/")
	if len(segs) < 4 || segs[0] != "chara" || !isLowerWord(segs[1]) || !isIDToken(segs[2]) {
		return "", false
	}
	rest := segs[3:]
	if len(segs) >= 7 && segs[3] == "obj" && isLowerWord(segs[4]) && isIDToken(segs[5]) {
		rest = segs[6:]
	}
	joined := strings.Join(rest, "/")
	if joined == "" {
		return "", false
	}
	return joined, true
}

func isLowerWord(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

func isIDToken(s string) bool {
	if len(s) != 5 || s[0] < 'a' || s[0] > 'z' {
		return false
	}
	for _, c := range s[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func matchRootRelative(t translation) bool {
	_, ok := splitRootPath(t.oldPath)
	return ok
}

func applyRootRelative(t translation) string {
	rest, _ := splitRootPath(t.oldPath)
	folder := path.Dir(t.destination.RootFolder() + rest)
	return folder + "/" + translateFileName(t.source, t.destination, path.Base(t.oldPath))
}

func applyFallback(t translation) string {
	folder := strings.TrimSuffix(t.destination.RootFolder(), "/")
	return folder + "/" + translateFileName(t.source, t.destination, path.Base(t.oldPath))
}

var idPairToken = regexp.MustCompile(`[a-z][0-9]{4}([a-z][0-9]{4})`)

// translateFileName swaps the id token embedded in a file name. Single-id
// sources only have their trailing id replaced; dual-id sources lose the whole pair.
func translateFileName(source, destination RootInfo, file string) string {
	m := idPairToken.FindStringSubmatch(file)
	if m == nil {
		return file
	}
	if source.HasSecondary() {
		return strings.ReplaceAll(file, m[0], destination.BaseFileName(false))
	}
	return strings.ReplaceAll(file, m[1], destination.BaseFileName(false))
}
