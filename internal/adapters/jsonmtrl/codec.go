// Package jsonmtrl reads and writes materials stored as JSON:
//
//	{"path": "...", "shader": "...", "textures": [{"path": "...", "usage": "..."}]}
//
// Serialization patches only the fields that changed, so unknown keys survive.
package jsonmtrl

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"rootforge/internal/ports"
)

// Document is a parsed material
type Document struct {
	raw      []byte
	path     string
	pathSet  bool
	textures []string
	changed  map[int]bool
}

var _ ports.MaterialDocument = (*Document)(nil)

func (d *Document) Path() string {
	return d.path
}

func (d *Document) SetPath(path string) {
	if path != d.path {
		d.path = path
		d.pathSet = true
	}
}

func (d *Document) TextureRefs() []string {
	return d.textures
}

func (d *Document) SetTextureRef(i int, ref string) {
	if d.textures[i] == ref {
		return
	}
	d.textures[i] = ref
	d.changed[i] = true
}

// Shader returns the material's shader package name
func (d *Document) Shader() string {
	return gjson.GetBytes(d.raw, "shader").String()
}

// Codec implements ports.MaterialCodec
type Codec struct{}

var _ ports.MaterialCodec = (*Codec)(nil)

func NewCodec() *Codec {
	return &Codec{}
}

func (c *Codec) ParseMaterial(path string, data []byte) (ports.MaterialDocument, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("material %s is not valid JSON", path)
	}
	textures := gjson.GetBytes(data, "textures")
	if textures.Exists() && !textures.IsArray() {
		return nil, fmt.Errorf("material %s: textures must be an array", path)
	}

	doc := &Document{
		raw:     append([]byte(nil), data...),
		path:    path,
		changed: make(map[int]bool),
	}
	// a stale stored path is corrected on the next write
	if stored := gjson.GetBytes(data, "path"); stored.Exists() && stored.String() != path {
		doc.pathSet = true
	}
	for _, tex := range textures.Array() {
		doc.textures = append(doc.textures, tex.Get("path").String())
	}
	return doc, nil
}

func (c *Codec) SerializeMaterial(doc ports.MaterialDocument) ([]byte, error) {
	d, ok := doc.(*Document)
	if !ok {
		return nil, fmt.Errorf("cannot serialize %T as a JSON material", doc)
	}

	out := d.raw
	var err error
	if d.pathSet {
		if out, err = sjson.SetBytes(out, "path", d.path); err != nil {
			return nil, fmt.Errorf("setting material path: %w", err)
		}
	}
	for i, ref := range d.textures {
		if !d.changed[i] {
			continue
		}
		if out, err = sjson.SetBytes(out, fmt.Sprintf("textures.%d.path", i), ref); err != nil {
			return nil, fmt.Errorf("setting texture %d: %w", i, err)
		}
	}
	return out, nil
}

// Texture is one texture slot of a new material
type Texture struct {
	Path  string `json:"path"`
	Usage string `json:"usage"`
}

// Encode builds a material document from scratch
func Encode(path, shader string, textures ...Texture) ([]byte, error) {
	out := []byte(`{}`)
	var err error
	if out, err = sjson.SetBytes(out, "path", path); err != nil {
		return nil, err
	}
	if out, err = sjson.SetBytes(out, "shader", shader); err != nil {
		return nil, err
	}
	if textures == nil {
		textures = []Texture{}
	}
	if out, err = sjson.SetBytes(out, "textures", textures); err != nil {
		return nil, err
	}
	return out, nil
}
