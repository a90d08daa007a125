// Package ifinfo encodes and decodes link messages: the fixed struct
// ifinfomsg header followed by an rtattr sequence.
//
// The header layout is part of the kernel ABI. Reordering fields or changing
// their widths breaks interoperability with every kernel, so treat any edit to
// Encode or Decode as a protocol change.
package ifinfo

import (
	"encoding/binary"
	"errors"
	"fmt"

	"grimm.is/rtlink/internal/rtattr"
)

// HeaderLen is the size of struct ifinfomsg on the wire.
//
//	offset 0  family  u8
//	offset 1  (pad)   u8
//	offset 2  type    u16
//	offset 4  index   s32
//	offset 8  flags   u32
//	offset 12 change  u32
const HeaderLen = 16

// ErrShortHeader is returned when a message body is too short for the header.
var ErrShortHeader = errors.New("short ifinfomsg header")

// Header is struct ifinfomsg.
type Header struct {
	Family     uint8
	DeviceType uint16
	Index      int32
	Flags      uint32
	Change     uint32
}

// Encode packs h and appends the encoded attribute sequence.
func Encode(h Header, attrs []rtattr.Attribute) ([]byte, error) {
	body, err := rtattr.Encode(attrs)
	if err != nil {
		return nil, err
	}

	hlen := rtattr.Align(HeaderLen)
	b := make([]byte, hlen+len(body))
	b[0] = h.Family
	binary.LittleEndian.PutUint16(b[2:], h.DeviceType)
	binary.LittleEndian.PutUint32(b[4:], uint32(h.Index))
	binary.LittleEndian.PutUint32(b[8:], h.Flags)
	binary.LittleEndian.PutUint32(b[12:], h.Change)
	copy(b[hlen:], body)
	return b, nil
}

// Decode parses a message body into its header and attributes.
func Decode(b []byte) (Header, []rtattr.Attribute, error) {
	if len(b) < HeaderLen {
		return Header{}, nil, fmt.Errorf("%d bytes: %w", len(b), ErrShortHeader)
	}

	h := Header{
		Family:     b[0],
		DeviceType: binary.LittleEndian.Uint16(b[2:]),
		Index:      int32(binary.LittleEndian.Uint32(b[4:])),
		Flags:      binary.LittleEndian.Uint32(b[8:]),
		Change:     binary.LittleEndian.Uint32(b[12:]),
	}

	attrs, err := rtattr.Decode(b[rtattr.Align(HeaderLen):])
	if err != nil {
		return Header{}, nil, err
	}
	return h, attrs, nil
}
