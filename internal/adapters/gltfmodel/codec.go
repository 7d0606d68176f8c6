// Package gltfmodel stores models as binary glTF. Each glTF material's name
// is the material reference of the mesh groups that use it.
package gltfmodel

import (
	"bytes"
	"fmt"

	"github.com/qmuntal/gltf"

	"rootforge/internal/ports"
)

const pathExtra = "rootforge.path"

// Document is a parsed model
type Document struct {
	path string
	doc  *gltf.Document
}

var _ ports.ModelDocument = (*Document)(nil)

func (d *Document) Path() string {
	return d.path
}

// SetPath re-points the model and records path in the asset extras, so a
// serialized model carries the archive path it was written for
func (d *Document) SetPath(path string) {
	d.path = path
	extras, ok := d.doc.Asset.Extras.(map[string]any)
	if !ok {
		extras = map[string]any{}
	}
	extras[pathExtra] = path
	d.doc.Asset.Extras = extras
}

// StoredPath returns the archive path recorded in the model, if any
func (d *Document) StoredPath() string {
	extras, _ := d.doc.Asset.Extras.(map[string]any)
	p, _ := extras[pathExtra].(string)
	return p
}

// MaterialRefs returns one reference per material slot
func (d *Document) MaterialRefs() []string {
	refs := make([]string, len(d.doc.Materials))
	for i, m := range d.doc.Materials {
		if m != nil {
			refs[i] = m.Name
		}
	}
	return refs
}

func (d *Document) SetMaterialRef(i int, ref string) {
	if d.doc.Materials[i] == nil {
		d.doc.Materials[i] = &gltf.Material{}
	}
	d.doc.Materials[i].Name = ref
}

// MeshGroups returns the number of meshes in the model
func (d *Document) MeshGroups() int {
	return len(d.doc.Meshes)
}

// Codec implements ports.ModelCodec
type Codec struct{}

var _ ports.ModelCodec = (*Codec)(nil)

// NewCodec creates a model codec
func NewCodec() *Codec {
	return &Codec{}
}

// ParseModel decodes a binary glTF model and checks its material indices
func (c *Codec) ParseModel(path string, data []byte) (ports.ModelDocument, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", path, err)
	}
	for i, mesh := range doc.Meshes {
		if mesh == nil {
			continue
		}
		for _, p := range mesh.Primitives {
			if p != nil && p.Material != nil && int(*p.Material) >= len(doc.Materials) {
				return nil, fmt.Errorf("model %s: mesh %d references missing material %d", path, i, *p.Material)
			}
		}
	}
	return &Document{path: path, doc: doc}, nil
}

// SerializeModel encodes a document produced by ParseModel
func (c *Codec) SerializeModel(doc ports.ModelDocument) ([]byte, error) {
	d, ok := doc.(*Document)
	if !ok {
		return nil, fmt.Errorf("cannot serialize %T as glTF", doc)
	}
	return Encode(d.doc)
}

// Encode writes doc as binary glTF
func Encode(doc *gltf.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return buf.Bytes(), nil
}

// NewDocument builds a model with one mesh group per material reference
func NewDocument(materials ...string) *gltf.Document {
	doc := &gltf.Document{
		Asset: gltf.Asset{Version: "2.0", Generator: "rootforge"},
	}
	for i, ref := range materials {
		doc.Materials = append(doc.Materials, &gltf.Material{Name: ref})
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       fmt.Sprintf("group%d", i),
			Primitives: []*gltf.Primitive{{Material: gltf.Index(uint32(i))}},
		})
	}
	return doc
}
