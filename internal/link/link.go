package link

import (
	"context"
	"fmt"

	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
)

// Transport carries link messages to and from the kernel. Implementations own
// sequence numbers, multi-part reassembly and ACK decoding.
type Transport interface {
	// Talk sends req and returns every response packet. Any non-zero kernel
	// error code is returned as an error.
	Talk(ctx context.Context, req ifinfo.Message) ([]ifinfo.Message, error)

	// TryTalk sends req and reports the kernel error code in the reply
	// instead of failing. Only transport-level problems produce an error.
	TryTalk(ctx context.Context, req ifinfo.Message) (ifinfo.Reply, error)
}

// Link is a decoded view of one interface. Every read returns a new value.
type Link struct {
	Index      int32
	Family     uint8
	DeviceType uint16
	linkattr.Attrs
	Flags linkflags.Set
	// Unknown holds attributes this package does not map, keyed by type code.
	// Repeated codes keep every payload in wire order.
	Unknown map[uint16][][]byte
}

// Kind returns the IFLA_INFO_KIND of the link, or "" for plain devices.
func (l *Link) Kind() string {
	if l.LinkInfo == nil {
		return ""
	}
	return l.LinkInfo.Kind
}

// IsUp reports whether IFF_UP is set.
func (l *Link) IsUp() bool {
	return l.Flags.Has(linkflags.Up)
}

func linkFromMessage(m ifinfo.Message) (*Link, error) {
	attrs, unknown, err := linkattr.Unmarshal(m.Attributes)
	if err != nil {
		return nil, fmt.Errorf("link %d: %w", m.Info.Index, err)
	}
	return &Link{
		Index:      m.Info.Index,
		Family:     m.Info.Family,
		DeviceType: m.Info.DeviceType,
		Attrs:      attrs,
		Flags:      linkflags.Unmask(m.Info.Flags),
		Unknown:    unknown,
	}, nil
}

// Filter selects links. Only supplied attributes constrain the result: a
// zero field constrains only when its type is in Attrs.Present.
type Filter struct {
	// Family goes into the request header only; replies carry AF_UNSPEC.
	Family     uint8
	DeviceType uint16
	// Flags lists flags whose value must match, true or false.
	Flags linkflags.Set
	linkattr.Attrs
}

// request builds the GETLINK query for f. A name is resolved by the kernel
// with a single lookup; anything else is a dump, narrowed by the master and
// kind filters the kernel understands. The kernel rejects other header
// fields and attributes on strict sockets, so those are matched locally.
func (f Filter) request() (ifinfo.Message, error) {
	var (
		sel   linkattr.Attrs
		flags = ifinfo.FlagRequest | ifinfo.FlagAck
	)
	if f.Name != "" {
		sel.Name = f.Name
	} else {
		flags |= ifinfo.FlagDump
		sel.Master = f.Master
		if f.LinkInfo != nil && f.LinkInfo.Kind != "" {
			sel.LinkInfo = &linkattr.LinkInfo{Kind: f.LinkInfo.Kind}
		}
	}

	attrs, err := linkattr.Marshal(sel)
	if err != nil {
		return ifinfo.Message{}, err
	}
	return ifinfo.Message{
		Header:     ifinfo.NetlinkHeader{Type: ifinfo.TypeGetLink, Flags: flags},
		Info:       ifinfo.Header{Family: f.Family},
		Attributes: attrs,
	}, nil
}

func (f Filter) validate() error {
	_, err := linkflags.ChangeMask(f.Flags)
	return err
}

func (f Filter) matches(l *Link) bool {
	if f.DeviceType != 0 && l.DeviceType != f.DeviceType {
		return false
	}
	for name, want := range f.Flags {
		if l.Flags[name] != want {
			return false
		}
	}

	a := f.Attrs
	switch {
	case a.Supplied(linkattr.TypeIfname) && l.Name != a.Name,
		a.Supplied(linkattr.TypeMTU) && l.MTU != a.MTU,
		a.Supplied(linkattr.TypeAddress) && l.HardwareAddr.String() != a.HardwareAddr.String(),
		a.Supplied(linkattr.TypeBroadcast) && l.Broadcast.String() != a.Broadcast.String(),
		a.Supplied(linkattr.TypeLink) && l.Link != a.Link,
		a.Supplied(linkattr.TypeMaster) && l.Master != a.Master,
		a.Supplied(linkattr.TypeTxQLen) && l.TxQLen != a.TxQLen,
		a.Supplied(linkattr.TypeOperState) && l.OperState != a.OperState,
		a.Supplied(linkattr.TypeAlias) && l.Alias != a.Alias:
		return false
	}
	if a.LinkInfo != nil {
		if a.LinkInfo.Kind != "" && l.Kind() != a.LinkInfo.Kind {
			return false
		}
		if a.LinkInfo.SlaveKind != "" && (l.LinkInfo == nil || l.LinkInfo.SlaveKind != a.LinkInfo.SlaveKind) {
			return false
		}
	}
	return true
}

// CreateRequest describes a link to create.
type CreateRequest struct {
	// Family defaults to AF_UNSPEC.
	Family uint8
	Flags  linkflags.Set
	linkattr.Attrs
}
