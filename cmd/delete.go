package cmd

import (
	"context"
	"flag"

	"grimm.is/rtlink/internal/i18n"
)

// RunDelete removes a link.
func RunDelete(args []string) error {
	var g globalFlags
	target, rest := splitTarget(args)

	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	g.register(fs)
	fs.Parse(rest)
	if target == "" {
		target = fs.Arg(0)
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()
	return a.delete(ctx, target)
}

func (a *app) delete(ctx context.Context, target string) error {
	l, err := a.resolve(ctx, target)
	if err != nil {
		return err
	}
	if err := a.registry.FromIndex(l.Index).Delete(ctx); err != nil {
		return err
	}
	Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgDeleted, l.Index))
	return nil
}
