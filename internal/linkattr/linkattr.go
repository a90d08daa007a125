// Package linkattr maps link fields to and from IFLA_* route attributes.
package linkattr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"

	"grimm.is/rtlink/internal/rtattr"
)

// Link attribute types (IFLA_*).
const (
	TypeAddress   uint16 = 1
	TypeBroadcast uint16 = 2
	TypeIfname    uint16 = 3
	TypeMTU       uint16 = 4
	TypeLink      uint16 = 5
	TypeMaster    uint16 = 10
	TypeTxQLen    uint16 = 13
	TypeOperState uint16 = 16
	TypeLinkInfo  uint16 = 18
	TypeAlias     uint16 = 20
	TypeNetNSFd   uint16 = 28
)

// Nested IFLA_LINKINFO attribute types (IFLA_INFO_*).
const (
	InfoKind      uint16 = 1
	InfoData      uint16 = 2
	InfoSlaveKind uint16 = 4
)

// Fields is a set of IFLA_* type codes.
type Fields uint64

// FieldsOf returns the set holding types.
func FieldsOf(types ...uint16) Fields {
	var f Fields
	return f.With(types...)
}

// With returns f plus types. Codes of 64 and above cannot be represented
// and are ignored.
func (f Fields) With(types ...uint16) Fields {
	for _, t := range types {
		if t < 64 {
			f |= 1 << t
		}
	}
	return f
}

// Has reports whether typ is in f.
func (f Fields) Has(typ uint16) bool {
	return typ < 64 && f&(1<<typ) != 0
}

// Attrs holds the attribute-backed fields of a link. A field is supplied
// when it is non-zero or its type code is in Present; unsupplied fields are
// omitted from the encoding.
type Attrs struct {
	Name         string
	MTU          uint32
	HardwareAddr net.HardwareAddr
	Broadcast    net.HardwareAddr
	// Link is the peer link index (IFLA_LINK), e.g. the parent of a VLAN.
	Link      uint32
	Master    uint32
	TxQLen    uint32
	OperState OperState
	Alias     string
	// NetNSFd moves the link into the namespace behind the descriptor. The
	// kernel accepts it in requests but never reports it.
	NetNSFd  uint32
	LinkInfo *LinkInfo

	// Present marks fields carried even when zero, such as txqlen 0 or
	// IF_OPER_UNKNOWN. Unmarshal sets it for every field it decodes.
	Present Fields
}

// Supplied reports whether the field behind typ will be encoded.
func (a Attrs) Supplied(typ uint16) bool {
	if a.Present.Has(typ) {
		return true
	}
	switch typ {
	case TypeAddress:
		return len(a.HardwareAddr) > 0
	case TypeBroadcast:
		return len(a.Broadcast) > 0
	case TypeIfname:
		return a.Name != ""
	case TypeMTU:
		return a.MTU != 0
	case TypeLink:
		return a.Link != 0
	case TypeMaster:
		return a.Master != 0
	case TypeTxQLen:
		return a.TxQLen != 0
	case TypeOperState:
		return a.OperState != 0
	case TypeLinkInfo:
		return a.LinkInfo != nil
	case TypeAlias:
		return a.Alias != ""
	case TypeNetNSFd:
		return a.NetNSFd != 0
	}
	return false
}

// LinkInfo is the IFLA_LINKINFO container.
type LinkInfo struct {
	Kind      string
	SlaveKind string
	// Data is the opaque kind-specific IFLA_INFO_DATA payload.
	Data []byte
	// Unknown holds every other sub-attribute payload, keyed by type code,
	// in wire order.
	Unknown map[uint16][][]byte
}

// DataAttributes decodes Data as a nested attribute sequence, which is what
// most link kinds put there.
func (li *LinkInfo) DataAttributes() ([]rtattr.Attribute, error) {
	return rtattr.Decode(li.Data)
}

// Marshal encodes the supplied fields in ascending type-code order.
func Marshal(a Attrs) ([]rtattr.Attribute, error) {
	var out []rtattr.Attribute
	if a.Supplied(TypeAddress) {
		out = append(out, rtattr.Attribute{Type: TypeAddress, Data: cloneAddr(a.HardwareAddr)})
	}
	if a.Supplied(TypeBroadcast) {
		out = append(out, rtattr.Attribute{Type: TypeBroadcast, Data: cloneAddr(a.Broadcast)})
	}
	if a.Supplied(TypeIfname) {
		out = append(out, stringAttr(TypeIfname, a.Name))
	}
	if a.Supplied(TypeMTU) {
		out = append(out, uint32Attr(TypeMTU, a.MTU))
	}
	if a.Supplied(TypeLink) {
		out = append(out, uint32Attr(TypeLink, a.Link))
	}
	if a.Supplied(TypeMaster) {
		out = append(out, uint32Attr(TypeMaster, a.Master))
	}
	if a.Supplied(TypeTxQLen) {
		out = append(out, uint32Attr(TypeTxQLen, a.TxQLen))
	}
	if a.Supplied(TypeOperState) {
		out = append(out, rtattr.Attribute{Type: TypeOperState, Data: []byte{byte(a.OperState)}})
	}
	if a.LinkInfo != nil {
		li, err := marshalLinkInfo(a.LinkInfo)
		if err != nil {
			return nil, err
		}
		out = append(out, li)
	}
	if a.Supplied(TypeAlias) {
		out = append(out, stringAttr(TypeAlias, a.Alias))
	}
	if a.Supplied(TypeNetNSFd) {
		out = append(out, uint32Attr(TypeNetNSFd, a.NetNSFd))
	}
	return out, nil
}

func marshalLinkInfo(li *LinkInfo) (rtattr.Attribute, error) {
	var children []rtattr.Attribute
	if li.Kind != "" {
		children = append(children, stringAttr(InfoKind, li.Kind))
	}
	if li.Data != nil {
		children = append(children, rtattr.Attribute{Type: InfoData, Data: cloneBytes(li.Data)})
	}
	if li.SlaveKind != "" {
		children = append(children, stringAttr(InfoSlaveKind, li.SlaveKind))
	}
	return rtattr.Nest(TypeLinkInfo, children)
}

// Unmarshal decodes attrs into known fields and marks each in Present.
// Attributes of any other type are returned keyed by their raw type code,
// every occurrence kept in wire order.
func Unmarshal(attrs []rtattr.Attribute) (Attrs, map[uint16][][]byte, error) {
	var a Attrs
	unknown := make(map[uint16][][]byte)

	for _, attr := range attrs {
		var err error
		typ := attr.Type & rtattr.TypeMask
		switch typ {
		case TypeAddress:
			a.HardwareAddr = net.HardwareAddr(cloneBytes(attr.Data))
		case TypeBroadcast:
			a.Broadcast = net.HardwareAddr(cloneBytes(attr.Data))
		case TypeIfname:
			a.Name, err = parseString(attr)
		case TypeMTU:
			a.MTU, err = parseUint32(attr)
		case TypeLink:
			a.Link, err = parseUint32(attr)
		case TypeMaster:
			a.Master, err = parseUint32(attr)
		case TypeTxQLen:
			a.TxQLen, err = parseUint32(attr)
		case TypeOperState:
			if len(attr.Data) != 1 {
				err = fmt.Errorf("type %d: want 1 byte, got %d: %w", attr.Type, len(attr.Data), rtattr.ErrCorruptAttribute)
				break
			}
			a.OperState = OperState(attr.Data[0])
		case TypeAlias:
			a.Alias, err = parseString(attr)
		case TypeNetNSFd:
			a.NetNSFd, err = parseUint32(attr)
		case TypeLinkInfo:
			a.LinkInfo, err = unmarshalLinkInfo(attr)
		default:
			unknown[attr.Type] = append(unknown[attr.Type], cloneBytes(attr.Data))
			continue
		}
		if err != nil {
			return Attrs{}, nil, err
		}
		a.Present = a.Present.With(typ)
	}
	return a, unknown, nil
}

func unmarshalLinkInfo(attr rtattr.Attribute) (*LinkInfo, error) {
	children, err := rtattr.Unnest(attr)
	if err != nil {
		return nil, err
	}

	li := &LinkInfo{}
	for _, c := range children {
		switch c.Type & rtattr.TypeMask {
		case InfoKind:
			if li.Kind, err = parseString(c); err != nil {
				return nil, fmt.Errorf("linkinfo: %w", err)
			}
		case InfoSlaveKind:
			if li.SlaveKind, err = parseString(c); err != nil {
				return nil, fmt.Errorf("linkinfo: %w", err)
			}
		case InfoData:
			li.Data = cloneBytes(c.Data)
		default:
			if li.Unknown == nil {
				li.Unknown = make(map[uint16][][]byte)
			}
			li.Unknown[c.Type] = append(li.Unknown[c.Type], cloneBytes(c.Data))
		}
	}
	return li, nil
}

func stringAttr(typ uint16, s string) rtattr.Attribute {
	data := make([]byte, len(s)+1)
	copy(data, s)
	return rtattr.Attribute{Type: typ, Data: data}
}

func uint32Attr(typ uint16, v uint32) rtattr.Attribute {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return rtattr.Attribute{Type: typ, Data: data}
}

func parseString(attr rtattr.Attribute) (string, error) {
	n := len(attr.Data)
	if n == 0 || attr.Data[n-1] != 0 {
		return "", fmt.Errorf("type %d: string not NUL-terminated: %w", attr.Type, rtattr.ErrCorruptAttribute)
	}
	// Anything after an embedded NUL is padding some kernels leave behind.
	if i := bytes.IndexByte(attr.Data, 0); i < n-1 {
		n = i + 1
	}
	return string(attr.Data[:n-1]), nil
}

func parseUint32(attr rtattr.Attribute) (uint32, error) {
	if len(attr.Data) != 4 {
		return 0, fmt.Errorf("type %d: want 4 bytes, got %d: %w", attr.Type, len(attr.Data), rtattr.ErrCorruptAttribute)
	}
	return binary.LittleEndian.Uint32(attr.Data), nil
}

// cloneAddr keeps a present but empty address as an empty payload.
func cloneAddr(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return cloneBytes(b)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
