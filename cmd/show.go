package cmd

import (
	"context"
	"flag"
	"fmt"

	"grimm.is/rtlink/internal/hwinfo"
)

// RunShow prints one link in detail, including driver details when
// ethtool can provide them.
func RunShow(args []string) error {
	var g globalFlags
	target, rest := splitTarget(args)

	fs := flag.NewFlagSet("show", flag.ExitOnError)
	g.register(fs)
	format := fs.String("o", formatText, "Output format: text, json, yaml")
	noHW := fs.Bool("no-hw", false, "Skip ethtool driver and speed lookup")
	fs.Parse(rest)
	if target == "" {
		target = fs.Arg(0)
	}

	if err := checkFormat(*format, formatText, formatJSON, formatYAML); err != nil {
		return err
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	var hw hardwareReader
	if !*noHW {
		r, err := hwinfo.NewReader()
		if err != nil {
			a.logger.Debug("hardware details unavailable", "error", err)
		} else {
			defer r.Close()
			hw = r
		}
	}

	ctx, cancel := signalContext()
	defer cancel()
	return a.show(ctx, target, *format, hw)
}

// hardwareReader is satisfied by *hwinfo.Reader.
type hardwareReader interface {
	Read(iface string) (*hwinfo.Info, error)
}

func (a *app) show(ctx context.Context, target, format string, hw hardwareReader) error {
	l, err := a.resolve(ctx, target)
	if err != nil {
		return err
	}

	v := viewOf(l)
	if hw != nil && l.Name != "" {
		info, err := hw.Read(l.Name)
		if err != nil {
			a.logger.Debug("hardware lookup failed", "link", l.Name, "error", err)
		} else {
			v.Hardware = info
		}
	}

	if format != formatText {
		return encode(a.out, format, v)
	}
	fmt.Fprint(a.out, describe(v))
	return nil
}
