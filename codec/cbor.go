package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode produces Core Deterministic Encoding, so saving an unchanged
// document yields identical bytes.
var encMode cbor.EncMode

// decMode decodes untyped maps as map[string]any.
var decMode cbor.DecMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// CBOREncMode returns the deterministic encoding mode shared by the CBOR
// codec and by types that marshal themselves to CBOR.
func CBOREncMode() cbor.EncMode { return encMode }

// CBORDecMode returns the decoding mode shared by the CBOR codec.
func CBORDecMode() cbor.DecMode { return decMode }

type cborCodec struct{}

// CBOR encodes documents as deterministic CBOR.
var CBOR Codec = cborCodec{}

func (cborCodec) Name() string      { return "cbor" }
func (cborCodec) Extension() string { return ".cbor" }

func (cborCodec) Encode(w io.Writer, v any) error {
	if err := encMode.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode cbor: %w", err)
	}
	return nil
}

func (cborCodec) Decode(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	// 0xf6 is null and 0xf7 undefined.
	if len(data) == 0 || data[0] == 0xf6 || data[0] == 0xf7 {
		return ErrNoDocument
	}
	if err := decMode.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode cbor: %w", err)
	}
	return nil
}
