package cmd

import (
	"context"
	"flag"
	"fmt"
	"net"

	"grimm.is/rtlink/internal/i18n"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
	"grimm.is/rtlink/internal/validation"
)

type createOptions struct {
	name    string
	kind    string
	mtu     uint
	address string
	master  uint
	parent  uint
	txqlen  uint
	alias   string
	up      bool
}

// RunCreate creates a software link.
func RunCreate(args []string) error {
	var g globalFlags
	var opts createOptions

	fs := flag.NewFlagSet("create", flag.ExitOnError)
	g.register(fs)
	fs.StringVar(&opts.name, "name", "", "Link name (kernel picks one if empty)")
	fs.StringVar(&opts.kind, "kind", "", "Link kind, e.g. dummy, bridge, veth")
	fs.UintVar(&opts.mtu, "mtu", 0, "MTU")
	fs.StringVar(&opts.address, "address", "", "Hardware address")
	fs.UintVar(&opts.master, "master", 0, "Enslave to this link index")
	fs.UintVar(&opts.parent, "link", 0, "Parent link index (vlan, macvlan)")
	fs.UintVar(&opts.txqlen, "txqlen", 0, "Transmit queue length")
	fs.StringVar(&opts.alias, "alias", "", "Interface alias")
	fs.BoolVar(&opts.up, "up", false, "Bring the link up")
	fs.Parse(args)

	req, err := opts.request()
	if err != nil {
		return err
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return a.create(ctx, req)
}

func (o createOptions) request() (link.CreateRequest, error) {
	if o.kind == "" {
		return link.CreateRequest{}, fmt.Errorf("--kind is required")
	}
	if err := validation.ValidateKind(o.kind); err != nil {
		return link.CreateRequest{}, fmt.Errorf("--kind: %w", err)
	}
	if o.name != "" {
		if err := validation.ValidateInterfaceName(o.name); err != nil {
			return link.CreateRequest{}, fmt.Errorf("--name: %w", err)
		}
	}
	if err := validation.ValidateAlias(o.alias); err != nil {
		return link.CreateRequest{}, fmt.Errorf("--alias: %w", err)
	}
	req := link.CreateRequest{
		Attrs: linkattr.Attrs{
			Name:     o.name,
			MTU:      uint32(o.mtu),
			Master:   uint32(o.master),
			Link:     uint32(o.parent),
			TxQLen:   uint32(o.txqlen),
			Alias:    o.alias,
			LinkInfo: &linkattr.LinkInfo{Kind: o.kind},
		},
	}
	if o.address != "" {
		mac, err := net.ParseMAC(o.address)
		if err != nil {
			return link.CreateRequest{}, fmt.Errorf("--address: %w", err)
		}
		req.HardwareAddr = mac
	}
	if o.up {
		req.Flags = linkflags.Set{linkflags.Up.String(): true}
	}
	return req, nil
}

func (a *app) create(ctx context.Context, req link.CreateRequest) error {
	l, err := a.registry.CreateLink(ctx, req)
	if err != nil {
		return err
	}
	Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgCreated, l.Name, l.Index))
	return nil
}
