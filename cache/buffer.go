package cache

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
)

const Alignment = 4

func Pad(n int) int {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// View is a byte range inside the binary buffer.
type View struct {
	ByteOffset uint32
	ByteLength uint32
	Target     gltf.Target
}

// BinaryBuffer is the single binary resource built during an encode.
// Every view starts and ends on a 4-byte boundary.
type BinaryBuffer struct {
	cache *Cache
	data  []byte
	views []View
}

func NewBinaryBuffer(c *Cache) *BinaryBuffer {
	return &BinaryBuffer{cache: c}
}

// StoreIfAbsent appends blob as a new view unless byte-identical content
// with the same target is already stored, and returns the view index.
func (b *BinaryBuffer) StoreIfAbsent(blob []byte, target gltf.Target) (int, error) {
	index, _, err := b.cache.StoreIfAbsent(Blob{Data: blob, Target: target}, func() (int, error) {
		if len(blob) == 0 {
			return 0, errors.New("empty buffer view")
		}
		b.align()
		offset := len(b.data)
		b.data = append(b.data, blob...)
		b.align()
		b.views = append(b.views, View{
			ByteOffset: uint32(offset),
			ByteLength: uint32(len(b.data) - offset),
			Target:     target,
		})
		return len(b.views) - 1, nil
	})
	return index, err
}

func (b *BinaryBuffer) align() {
	for len(b.data)%Alignment != 0 {
		b.data = append(b.data, 0)
	}
}

func (b *BinaryBuffer) Bytes() []byte { return b.data }

func (b *BinaryBuffer) Views() []View { return b.views }

func (b *BinaryBuffer) Len() int { return len(b.data) }
