package cmd

import (
	"context"
	"flag"
	"fmt"
	"sort"

	"grimm.is/rtlink/internal/i18n"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
)

type listOptions struct {
	format string
	kind   string
	master uint
	up     bool
}

// RunList prints the links matching the given filters.
func RunList(args []string) error {
	var g globalFlags
	var opts listOptions

	fs := flag.NewFlagSet("list", flag.ExitOnError)
	g.register(fs)
	fs.StringVar(&opts.format, "o", formatTable, "Output format: table, json, yaml")
	fs.StringVar(&opts.kind, "kind", "", "Only links of this kind (e.g. veth, bridge)")
	fs.UintVar(&opts.master, "master", 0, "Only links enslaved to this index")
	fs.BoolVar(&opts.up, "up", false, "Only links that are administratively up")
	fs.Parse(args)

	if err := checkFormat(opts.format, formatTable, formatJSON, formatYAML); err != nil {
		return err
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return a.list(ctx, opts)
}

func (a *app) list(ctx context.Context, opts listOptions) error {
	f := link.Filter{Attrs: linkattr.Attrs{Master: uint32(opts.master)}}
	if opts.kind != "" {
		f.LinkInfo = &linkattr.LinkInfo{Kind: opts.kind}
	}
	if opts.up {
		f.Flags = linkflags.Set{linkflags.Up.String(): true}
	}

	links, err := a.registry.FindAllBy(ctx, f)
	if err != nil {
		return err
	}
	sort.Slice(links, func(i, j int) bool { return links[i].Index < links[j].Index })

	views := make([]linkView, len(links))
	for i, l := range links {
		views[i] = viewOf(l)
	}

	if opts.format != formatTable {
		return encode(a.out, opts.format, views)
	}
	if len(views) == 0 {
		Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgNoLinks))
		return nil
	}
	fmt.Fprintln(a.out, renderTable(views))
	Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgLinkCount, len(views)))
	return nil
}
