// Package wire defines the request and response messages exchanged with the
// service, the gRPC method names that carry them, and the codec used to
// frame them.
//
// Messages are encoded as CBOR maps with integer keys. The codec registers
// itself with gRPC under the "cbor" content-subtype when the package is
// imported.
package wire

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"google.golang.org/grpc/encoding"
)

// CodecName is the gRPC content-subtype used by every call.
const CodecName = "cbor"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wire: cbor encoder: %v", err))
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wire: cbor decoder: %v", err))
	}

	encoding.RegisterCodec(Codec{})
}

// Codec implements encoding.Codec over CBOR.
type Codec struct{}

func (Codec) Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

func (Codec) Name() string {
	return CodecName
}
