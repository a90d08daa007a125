package link

import (
	"context"

	"grimm.is/rtlink/internal/events"
	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/metrics"
)

// Notifier is the unsolicited side of a transport.
type Notifier interface {
	// Notifications streams multicast link messages until ctx is done.
	Notifications(ctx context.Context) (<-chan ifinfo.Message, error)
}

// Watcher republishes link notifications on an event hub.
type Watcher struct {
	hub     *events.Hub
	logger  *logging.Logger
	metrics *metrics.Registry
}

// NewWatcher creates a Watcher. m may be nil.
func NewWatcher(hub *events.Hub, logger *logging.Logger, m *metrics.Registry) *Watcher {
	if logger == nil {
		logger = logging.WithComponent("watch")
	}
	return &Watcher{hub: hub, logger: logger, metrics: m}
}

// Watch subscribes to n and runs until ctx is done or the stream ends.
func (w *Watcher) Watch(ctx context.Context, n Notifier) error {
	msgs, err := n.Notifications(ctx)
	if err != nil {
		return err
	}
	return w.Run(ctx, msgs)
}

// Run consumes msgs until ctx is done or msgs is closed.
func (w *Watcher) Run(ctx context.Context, msgs <-chan ifinfo.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(m)
		}
	}
}

func (w *Watcher) handle(m ifinfo.Message) {
	var typ events.EventType
	switch m.Header.Type {
	case ifinfo.TypeNewLink:
		typ = events.EventLinkNew
		w.metrics.RecordNotification("newlink")
	case ifinfo.TypeDelLink:
		typ = events.EventLinkDel
		w.metrics.RecordNotification("dellink")
	default:
		w.metrics.RecordNotification("other")
		w.logger.Debug("ignoring notification", "type", m.Header.Type)
		return
	}

	l, err := linkFromMessage(m)
	if err != nil {
		w.logger.Warn("dropping undecodable notification", "type", m.Header.Type, "error", err)
		return
	}

	w.hub.EmitLink(typ, events.LinkData{
		Index:     l.Index,
		Name:      l.Name,
		Kind:      l.Kind(),
		OperState: l.OperState.String(),
		Flags:     l.Flags.Active(),
	})
}
