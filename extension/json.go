package extension

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/mogaika/gltfscene/scene"
)

// JSON builds a descriptor whose payload is the component's own JSON
// encoding. newFn returns an empty component to decode into.
func JSON(name string, scope Scope, newFn func() scene.Component) Descriptor {
	return Descriptor{
		Name:  name,
		Scope: scope,
		Encode: func(ctx EncodeContext, c scene.Component) (interface{}, error) {
			return c, nil
		},
		Decode: func(ctx DecodeContext, raw json.RawMessage) (scene.Component, error) {
			c := newFn()
			if err := json.Unmarshal(raw, c); err != nil {
				return nil, errors.Wrapf(err, "decode %s", name)
			}
			return c, nil
		},
	}
}
