package codec

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/gltfscene/scene"
)

// WriteBinary writes doc as a single GLB container.
func WriteBinary(w io.Writer, doc *gltf.Document) error {
	e := gltf.NewEncoder(w)
	e.AsBinary = true
	return e.Encode(doc)
}

// WriteJSON writes doc as JSON with its buffers embedded as base64 data
// URIs. doc itself is not modified.
func WriteJSON(w io.Writer, doc *gltf.Document) error {
	e := gltf.NewEncoder(w)
	e.AsBinary = false
	return e.Encode(withBufferURIs(doc, func(i int, b *gltf.Buffer) {
		b.EmbeddedResource()
	}))
}

// withBufferURIs returns a shallow copy of doc whose buffers without URI
// were passed through set.
func withBufferURIs(doc *gltf.Document, set func(i int, b *gltf.Buffer)) *gltf.Document {
	cp := *doc
	cp.Buffers = make([]*gltf.Buffer, len(doc.Buffers))
	for i, b := range doc.Buffers {
		nb := *b
		if nb.URI == "" {
			set(i, &nb)
		}
		cp.Buffers[i] = &nb
	}
	return &cp
}

// Save writes doc to path. ".glb" files are binary containers; ".gltf"
// files embed their buffers, or write them as sibling ".bin" files when
// external is set.
func Save(doc *gltf.Document, path string, external bool) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		return errors.Wrapf(gltf.SaveBinary(doc, path), "save %q", path)
	case ".gltf":
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		out := withBufferURIs(doc, func(i int, b *gltf.Buffer) {
			if !external {
				b.EmbeddedResource()
			} else if i == 0 {
				b.URI = base + ".bin"
			} else {
				b.URI = fmt.Sprintf("%s_%d.bin", base, i)
			}
		})
		return errors.Wrapf(gltf.Save(out, path), "save %q", path)
	}
	return errors.Errorf("save %q: unknown container extension", path)
}

// Open parses a container file, loading sibling buffer files if needed.
func Open(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	return doc, nil
}

// Read parses a GLB or JSON container with embedded buffers.
func Read(r io.Reader) (*gltf.Document, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, errors.Wrapf(err, "parse container")
	}
	return doc, nil
}

// EncodeBinary encodes tree straight to GLB bytes.
func EncodeBinary(tree *scene.Tree, opts Options) ([]byte, error) {
	doc, err := Encode(tree, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteBinary(&buf, doc); err != nil {
		return nil, errors.Wrapf(err, "write container")
	}
	return buf.Bytes(), nil
}

// DecodeBytes parses and decodes a GLB or embedded JSON container.
func DecodeBytes(data []byte, opts Options) (*scene.Tree, error) {
	doc, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return Decode(doc, opts)
}

// DecodeFile opens and decodes a container file.
func DecodeFile(path string, opts Options) (*scene.Tree, error) {
	doc, err := Open(path)
	if err != nil {
		return nil, err
	}
	return Decode(doc, opts)
}
