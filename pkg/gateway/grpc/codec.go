// Package grpc fronts the matching engine with a hand-written gRPC
// service. There is no .proto schema anywhere in this repository — the
// wire contract is the fixed 64-byte wire.Command/wire.Event structs, so
// instead of generated message types this package registers a custom
// codec that marshals through their MarshalBinary/UnmarshalBinary
// methods and defines the service by hand against a grpc.ServiceDesc.
package grpc

import (
	"encoding"
	"fmt"

	grpcencoding "google.golang.org/grpc/encoding"
)

// codecName is registered with google.golang.org/grpc/encoding and
// selected on both the client and server via grpc.ForceCodec, bypassing
// the default proto codec entirely.
const codecName = "microlob-binary"

// binaryCodec marshals any value implementing encoding.BinaryMarshaler /
// encoding.BinaryUnmarshaler — exactly what wire.Command and wire.Event
// implement — instead of expecting a proto.Message.
type binaryCodec struct{}

func (binaryCodec) Name() string { return codecName }

func (binaryCodec) Marshal(v interface{}) ([]byte, error) {
	m, ok := v.(encoding.BinaryMarshaler)
	if !ok {
		return nil, fmt.Errorf("grpc: %T does not implement encoding.BinaryMarshaler", v)
	}
	return m.MarshalBinary()
}

func (binaryCodec) Unmarshal(data []byte, v interface{}) error {
	u, ok := v.(encoding.BinaryUnmarshaler)
	if !ok {
		return fmt.Errorf("grpc: %T does not implement encoding.BinaryUnmarshaler", v)
	}
	return u.UnmarshalBinary(data)
}

func init() {
	grpcencoding.RegisterCodec(binaryCodec{})
}

// Codec returns the registered codec for use with grpc.ForceServerCodec
// when a host process wants to build its *grpc.Server directly rather
// than relying on ForceCodec's per-call override.
func Codec() grpcencoding.Codec { return binaryCodec{} }
