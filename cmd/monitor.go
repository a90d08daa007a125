package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grimm.is/rtlink/internal/events"
	"grimm.is/rtlink/internal/health"
	"grimm.is/rtlink/internal/i18n"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/metrics"
)

// RunMonitor prints link notifications as they arrive, optionally only for
// one link.
func RunMonitor(args []string) error {
	var g globalFlags
	target, rest := splitTarget(args)

	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	g.register(fs)
	listen := fs.String("metrics", "", "Serve Prometheus metrics on this address (overrides config)")
	format := fs.String("o", formatText, "Output format: text, json")
	fs.Parse(rest)
	if target == "" {
		target = fs.Arg(0)
	}

	if err := checkFormat(*format, formatText, formatJSON); err != nil {
		return err
	}

	a, err := openApp(g)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Metrics.Listen
	if *listen != "" {
		addr = *listen
	}

	ctx, cancel := signalContext()
	defer cancel()

	var index int32
	if target != "" {
		l, err := a.resolve(ctx, target)
		if err != nil {
			return err
		}
		index = l.Index
	}

	hub := events.NewHub()
	if addr != "" {
		go a.serveMetrics(ctx, addr, hub)
	}
	return a.monitor(ctx, hub, a.conn, index, *format)
}

// monitor prints events for index, or for every link when index is zero.
func (a *app) monitor(ctx context.Context, hub *events.Hub, n link.Notifier, index int32, format string) error {
	sub := hub.SubscribeLink(events.DefaultBuffer, index)
	defer hub.Unsubscribe(sub)

	w := link.NewWatcher(hub, a.logger.WithComponent("watch"), a.metrics)
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, n) }()

	Printer.Fprintln(a.out, Printer.Sprintf(i18n.MsgWatching))
	for {
		select {
		case e := <-sub:
			if err := a.printEvent(e, format); err != nil {
				return err
			}
		case err := <-done:
			// Publish is synchronous, so anything the watcher saw is queued.
			for drained := false; !drained; {
				select {
				case e := <-sub:
					if perr := a.printEvent(e, format); perr != nil {
						return perr
					}
				default:
					drained = true
				}
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (a *app) printEvent(e events.Event, format string) error {
	if format == formatJSON {
		return encode(a.out, formatJSON, e)
	}
	d, ok := e.Data.(events.LinkData)
	if !ok {
		return nil
	}
	verb := "changed"
	if e.Type == events.EventLinkDel {
		verb = "deleted"
	}
	fmt.Fprintf(a.out, "%s %-7s %3d %-16s kind=%s state=%s flags=%s\n",
		e.Timestamp.Format("15:04:05.000"), verb, d.Index, d.Name,
		orDash(d.Kind), d.OperState, strings.Join(d.Flags, ","))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// serveMetrics exposes /metrics and /healthz and keeps the link inventory
// gauge fresh.
func (a *app) serveMetrics(ctx context.Context, addr string, hub *events.Hub) {
	collector := metrics.NewCollector(a.metrics, a.inventory, a.logger.WithComponent("metrics"), 30*time.Second)
	go collector.Run(ctx)

	srv := &http.Server{Addr: addr, Handler: a.httpHandler(hub), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	a.logger.Info(Printer.Sprintf(i18n.MsgMetricsURL, addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.logger.Error("metrics server failed", "error", err)
	}
}

func (a *app) httpHandler(hub *events.Hub) http.Handler {
	checker := health.NewChecker(nil, 5*time.Second)
	checker.Register("netlink", health.NetlinkCheck(a.registry))
	checker.Register("loopback", health.LoopbackCheck(a.registry))
	checker.Register("events", health.EventsCheck(hub))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.Handler())
	return mux
}

// inventory counts links by kind and operational state.
func (a *app) inventory(ctx context.Context) ([]metrics.LinkCount, error) {
	links, err := a.registry.FindAllBy(ctx, link.Filter{})
	if err != nil {
		return nil, err
	}

	type key struct{ kind, state string }
	counts := make(map[key]int)
	for _, l := range links {
		kind := l.Kind()
		if kind == "" {
			kind = "device"
		}
		counts[key{kind, l.OperState.String()}]++
	}

	out := make([]metrics.LinkCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, metrics.LinkCount{Kind: k.kind, OperState: k.state, Count: n})
	}
	return out, nil
}
