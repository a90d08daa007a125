package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"

	"grimm.is/rtlink/internal/i18n"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
	"grimm.is/rtlink/internal/tui"
	"grimm.is/rtlink/internal/validation"
)

type setOptions struct {
	name    string
	mtu     uint
	address string
	master  uint
	txqlen  uint
	// txqlenSet distinguishes --txqlen 0 from an absent flag.
	txqlenSet bool
	alias     string
	up        bool
	down      bool
	promisc   string
	netns     string
}

// RunSet changes link settings and prints what changed.
func RunSet(args []string) error {
	var g globalFlags
	var opts setOptions
	target, rest := splitTarget(args)

	fs := flag.NewFlagSet("set", flag.ExitOnError)
	g.register(fs)
	fs.StringVar(&opts.name, "name", "", "Rename the link")
	fs.UintVar(&opts.mtu, "mtu", 0, "MTU")
	fs.StringVar(&opts.address, "address", "", "Hardware address")
	fs.UintVar(&opts.master, "master", 0, "Enslave to this link index")
	fs.UintVar(&opts.txqlen, "txqlen", 0, "Transmit queue length")
	fs.StringVar(&opts.alias, "alias", "", "Interface alias")
	fs.BoolVar(&opts.up, "up", false, "Bring the link up")
	fs.BoolVar(&opts.down, "down", false, "Bring the link down")
	fs.StringVar(&opts.promisc, "promisc", "", "Promiscuous mode: on or off")
	fs.StringVar(&opts.netns, "netns", "", "Move the link into this named network namespace")
	fs.Parse(rest)
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "txqlen" {
			opts.txqlenSet = true
		}
	})
	if target == "" {
		target = fs.Arg(0)
	}

	flags, attrs, err := opts.changes()
	if err != nil {
		return err
	}

	if opts.netns != "" {
		fd, closeNS, err := openNamedNetNS(opts.netns)
		if err != nil {
			return err
		}
		defer closeNS()
		attrs.NetNSFd = fd
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return a.set(ctx, target, flags, attrs)
}

// changes translates options into a flag set and attributes.
func (o setOptions) changes() (linkflags.Set, linkattr.Attrs, error) {
	flags := linkflags.Set{}
	attrs := linkattr.Attrs{
		Name:   o.name,
		MTU:    uint32(o.mtu),
		Master: uint32(o.master),
		TxQLen: uint32(o.txqlen),
		Alias:  o.alias,
	}
	if o.txqlenSet {
		attrs.Present = linkattr.FieldsOf(linkattr.TypeTxQLen)
	}

	if o.name != "" {
		if err := validation.ValidateInterfaceName(o.name); err != nil {
			return nil, attrs, fmt.Errorf("--name: %w", err)
		}
	}
	if err := validation.ValidateAlias(o.alias); err != nil {
		return nil, attrs, fmt.Errorf("--alias: %w", err)
	}

	if o.up && o.down {
		return nil, attrs, errors.New("--up and --down are mutually exclusive")
	}
	if o.up {
		flags[linkflags.Up.String()] = true
	}
	if o.down {
		flags[linkflags.Up.String()] = false
	}

	switch o.promisc {
	case "":
	case "on":
		flags[linkflags.Promisc.String()] = true
	case "off":
		flags[linkflags.Promisc.String()] = false
	default:
		return nil, attrs, fmt.Errorf("--promisc: want on or off, got %q", o.promisc)
	}

	if o.address != "" {
		mac, err := net.ParseMAC(o.address)
		if err != nil {
			return nil, attrs, fmt.Errorf("--address: %w", err)
		}
		attrs.HardwareAddr = mac
	}
	return flags, attrs, nil
}

func (a *app) set(ctx context.Context, target string, flags linkflags.Set, attrs linkattr.Attrs) error {
	before, err := a.resolve(ctx, target)
	if err != nil {
		return err
	}

	h := a.registry.FromIndex(before.Index)
	if err := h.Modify(ctx, flags, attrs); err != nil {
		return err
	}

	if attrs.NetNSFd != 0 {
		// The link left this namespace; there is nothing to read back.
		a.logger.WithLink(before.Index, before.Name).Info("moved link to another namespace")
		Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgModified, before.Name, before.Index))
		return nil
	}

	after, err := h.Fetch(ctx)
	if err != nil {
		return err
	}

	diff := diffViews(viewOf(before), viewOf(after))
	if diff == "" {
		Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgNoChanges))
		return nil
	}
	Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgModified, after.Name, after.Index))
	fmt.Fprint(a.out, tui.Diff(diff))
	return nil
}
