package ifinfo

import (
	"fmt"

	"grimm.is/rtlink/internal/rtattr"
)

// Link message types (RTM_*).
const (
	TypeNewLink uint16 = 16
	TypeDelLink uint16 = 17
	TypeGetLink uint16 = 18
)

// Netlink header flags (NLM_F_*).
const (
	FlagRequest uint16 = 0x1
	FlagMulti   uint16 = 0x2
	FlagAck     uint16 = 0x4
	FlagEcho    uint16 = 0x8

	FlagRoot    uint16 = 0x100
	FlagMatch   uint16 = 0x200
	FlagDump           = FlagRoot | FlagMatch
	FlagReplace uint16 = 0x100
	FlagExcl    uint16 = 0x200
	FlagCreate  uint16 = 0x400
)

// Address families used in link requests.
const (
	FamilyUnspec uint8 = 0  // AF_UNSPEC
	FamilyPacket uint8 = 17 // AF_PACKET
)

// NetlinkHeader carries the parts of struct nlmsghdr a caller controls.
// Length, sequence and port id belong to the transport.
type NetlinkHeader struct {
	Type  uint16
	Flags uint16
}

// Message is a link request or response envelope.
type Message struct {
	Header     NetlinkHeader
	Info       Header
	Attributes []rtattr.Attribute
}

// MarshalBinary encodes the message body (everything after nlmsghdr).
func (m Message) MarshalBinary() ([]byte, error) {
	return Encode(m.Info, m.Attributes)
}

// UnmarshalMessage decodes a message body received with the given header.
func UnmarshalMessage(h NetlinkHeader, body []byte) (Message, error) {
	info, attrs, err := Decode(body)
	if err != nil {
		return Message{}, fmt.Errorf("message type %d: %w", h.Type, err)
	}
	return Message{Header: h, Info: info, Attributes: attrs}, nil
}

// IsLinkType reports whether t is one of the link message types this package
// knows how to decode.
func IsLinkType(t uint16) bool {
	switch t {
	case TypeNewLink, TypeDelLink, TypeGetLink:
		return true
	}
	return false
}

// Reply is the outcome of a request whose kernel error code is returned to
// the caller rather than raised. ErrorCode is a positive errno, or 0.
type Reply struct {
	ErrorCode int
	Packets   []Message
}
