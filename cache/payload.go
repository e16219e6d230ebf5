package cache

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"golang.org/x/crypto/blake2b"
)

// Kind selects the slot table a payload is interned into.
type Kind int

const (
	KindBufferView Kind = iota
	KindAccessor
	KindMaterial
	KindMesh
	KindCamera
	KindObject
)

var kindNames = [...]string{
	KindBufferView: "bufferView",
	KindAccessor:   "accessor",
	KindMaterial:   "material",
	KindMesh:       "mesh",
	KindCamera:     "camera",
	KindObject:     "object",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Digest is a full 256-bit content hash. Equal digests are treated as
// equal values.
type Digest [blake2b.Size256]byte

// Payload is one of Blob, Record or Object.
type Payload interface {
	Kind() Kind
	payload()
}

// Blob is raw bytes, keyed by their content and buffer view target.
type Blob struct {
	Data   []byte
	Target gltf.Target
}

// Record is a structured value compared by its field tuple, like a
// material or an accessor description.
type Record struct {
	Of     Kind
	Fields []interface{}
}

// Object is an already serialized extension object.
type Object struct {
	Extension string
	Data      json.RawMessage
}

func (Blob) Kind() Kind     { return KindBufferView }
func (r Record) Kind() Kind { return r.Of }
func (Object) Kind() Kind   { return KindObject }

func (Blob) payload()   {}
func (Record) payload() {}
func (Object) payload() {}

// Sum computes the canonical digest of p. Each payload kind has its own
// hashing strategy.
func Sum(p Payload) (Digest, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return Digest{}, err
	}
	switch v := p.(type) {
	case Blob:
		var hdr [4]byte
		binary.LittleEndian.PutUint32(hdr[:], uint32(v.Target))
		h.Write([]byte("blob\x00"))
		h.Write(hdr[:])
		h.Write(v.Data)
	case Record:
		fields, err := json.Marshal(v.Fields)
		if err != nil {
			return Digest{}, errors.Wrapf(err, "digest %v record", v.Of)
		}
		h.Write([]byte(v.Of.String()))
		h.Write([]byte{0})
		h.Write(fields)
	case Object:
		h.Write([]byte(v.Extension))
		h.Write([]byte{0})
		h.Write(v.Data)
	default:
		return Digest{}, errors.Errorf("unknown payload %T", p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}
