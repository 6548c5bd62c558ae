package rpc

import (
	"bytes"
	"encoding/gob"

	"google.golang.org/grpc/encoding"
)

// codecName is registered as a grpc content-subtype. The teacher's
// go.mod carries grpc and protobuf, but no protoc toolchain runs as part
// of this exercise (see DESIGN.md), so the wire messages below are plain
// Go structs carried over a gob codec registered with grpc's encoding
// package instead of protoc-generated .pb.go types. This is a supported
// grpc-go extension point (encoding.RegisterCodec), not a reimplementation
// of grpc itself.
const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}
