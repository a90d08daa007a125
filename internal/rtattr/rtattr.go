// Package rtattr encodes and decodes netlink route attributes (struct rtattr).
//
// An attribute is a type-length-value record: a 4-byte header holding the
// record length (header plus payload, before padding) and a type code, both
// little-endian, followed by the payload and zero padding up to the next
// multiple of 4. The codec does not know which types exist; mapping codes to
// fields is left to higher layers.
package rtattr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// HeaderLen is the size of the rtattr length/type header.
const HeaderLen = 4

// Type code flag bits the kernel may set on the wire.
const (
	FlagNested       uint16 = 0x8000 // NLA_F_NESTED
	FlagNetByteorder uint16 = 0x4000 // NLA_F_NET_BYTEORDER

	// TypeMask strips the flag bits from a type code.
	TypeMask = ^(FlagNested | FlagNetByteorder)
)

var (
	// ErrCorruptAttribute is returned when a buffer does not hold a valid
	// attribute sequence.
	ErrCorruptAttribute = errors.New("corrupt attribute")

	// ErrEncodingOverflow is returned when a payload does not fit the 16-bit
	// length field.
	ErrEncodingOverflow = errors.New("attribute payload too large")
)

// Attribute is one TLV record.
type Attribute struct {
	Type uint16
	Data []byte
}

// Align rounds n up to the next multiple of 4.
func Align(n int) int {
	return (n + 3) &^ 3
}

// EncodedLen returns the number of bytes Encode produces for attrs, padding
// included.
func EncodedLen(attrs []Attribute) int {
	n := 0
	for _, a := range attrs {
		n += Align(HeaderLen + len(a.Data))
	}
	return n
}

// Encode serializes attrs in order.
func Encode(attrs []Attribute) ([]byte, error) {
	b := make([]byte, EncodedLen(attrs))
	off := 0
	for _, a := range attrs {
		l := HeaderLen + len(a.Data)
		if l > math.MaxUint16 {
			return nil, fmt.Errorf("type %d: %d bytes: %w", a.Type, l, ErrEncodingOverflow)
		}
		binary.LittleEndian.PutUint16(b[off:], uint16(l))
		binary.LittleEndian.PutUint16(b[off+2:], a.Type)
		copy(b[off+HeaderLen:], a.Data)
		// make() already zeroed the padding.
		off += Align(l)
	}
	return b, nil
}

// Decode parses b into an attribute sequence. Payloads are copied, so the
// result does not alias b.
func Decode(b []byte) ([]Attribute, error) {
	var attrs []Attribute
	off := 0
	for off < len(b) {
		if len(b)-off < HeaderLen {
			return nil, fmt.Errorf("%d trailing bytes at offset %d: %w", len(b)-off, off, ErrCorruptAttribute)
		}
		l := int(binary.LittleEndian.Uint16(b[off:]))
		typ := binary.LittleEndian.Uint16(b[off+2:])
		if l < HeaderLen {
			return nil, fmt.Errorf("type %d at offset %d: length %d: %w", typ, off, l, ErrCorruptAttribute)
		}
		if off+l > len(b) {
			return nil, fmt.Errorf("type %d at offset %d: length %d exceeds %d remaining bytes: %w",
				typ, off, l, len(b)-off, ErrCorruptAttribute)
		}

		data := make([]byte, l-HeaderLen)
		copy(data, b[off+HeaderLen:off+l])
		attrs = append(attrs, Attribute{Type: typ, Data: data})

		// The final record may legitimately omit its padding.
		off += Align(l)
	}
	return attrs, nil
}

// Nest builds a container attribute whose payload is the encoding of children.
// The NLA_F_NESTED bit is not set; callers that need it can OR it into typ.
func Nest(typ uint16, children []Attribute) (Attribute, error) {
	data, err := Encode(children)
	if err != nil {
		return Attribute{}, fmt.Errorf("nested type %d: %w", typ, err)
	}
	return Attribute{Type: typ, Data: data}, nil
}

// Unnest decodes the payload of a container attribute.
func Unnest(a Attribute) ([]Attribute, error) {
	children, err := Decode(a.Data)
	if err != nil {
		return nil, fmt.Errorf("nested type %d: %w", a.Type&TypeMask, err)
	}
	return children, nil
}
