package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"grimm.is/rtlink/internal/brand"
	"grimm.is/rtlink/internal/config"
	"grimm.is/rtlink/internal/i18n"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/metrics"
	"grimm.is/rtlink/internal/rtnl"
)

// Printer is the localized printer for user-facing output.
var Printer = i18n.NewCLIPrinter()

// globalFlags are accepted by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	def := brand.DefaultConfigPath()
	fs.StringVar(&g.configPath, "config", def, "Configuration file")
	fs.StringVar(&g.configPath, "c", def, "Configuration file (short)")
	fs.BoolVar(&g.debug, "debug", false, "Enable debug logging")
}

// app holds what a subcommand needs to talk to the kernel.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *link.Registry
	metrics  *metrics.Registry
	conn     *rtnl.Conn
	out      io.Writer
}

// openApp loads configuration and dials the kernel.
func openApp(g globalFlags) (*app, error) {
	// The default path is optional; an explicit one must exist.
	required := g.configPath != brand.DefaultConfigPath()
	cfg, err := config.LoadFile(g.configPath, required)
	if err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	if g.debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: level, JSON: cfg.Log.JSON})
	logging.SetDefault(logger)

	conn, err := rtnl.Dial(rtnl.Config{
		Strict:        cfg.StrictNetlink(),
		ReceiveBuffer: cfg.Netlink.ReceiveBuffer,
	}, logger.WithComponent("rtnl"))
	if err != nil {
		return nil, err
	}

	a := newApp(cfg, conn, logger, metrics.Get())
	a.conn = conn
	return a, nil
}

// newApp wires a registry over t.
func newApp(cfg *config.Config, t link.Transport, logger *logging.Logger, m *metrics.Registry) *app {
	reg := link.NewRegistry(t,
		link.WithCreateAttempts(cfg.CreateAttempts()),
		link.WithRetryDelay(cfg.RetryDelay()),
		link.WithLogger(logger.WithComponent("registry")),
		link.WithMetrics(m),
	)
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  m,
		out:      os.Stdout,
	}
}

func (a *app) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// resolve finds a link by index or name.
func (a *app) resolve(ctx context.Context, target string) (*link.Link, error) {
	if target == "" {
		return nil, fmt.Errorf("no link given")
	}
	if idx, err := strconv.ParseInt(target, 10, 32); err == nil {
		return a.registry.FromIndex(int32(idx)).Fetch(ctx)
	}
	l, err := a.registry.FindOneBy(ctx, link.Filter{Attrs: linkattr.Attrs{Name: target}})
	if err != nil {
		return nil, fmt.Errorf("link %q: %w", target, err)
	}
	return l, nil
}

// splitTarget separates a leading positional argument from flags, so both
// "set eth0 --mtu 9000" and "set --mtu 9000 eth0" work.
func splitTarget(args []string) (string, []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return "", args
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
