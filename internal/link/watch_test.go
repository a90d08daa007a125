package link

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rtlink/internal/events"
	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/metrics"
	"grimm.is/rtlink/internal/rtattr"
)

type chanNotifier struct {
	ch  chan ifinfo.Message
	err error
}

func (n *chanNotifier) Notifications(ctx context.Context) (<-chan ifinfo.Message, error) {
	if n.err != nil {
		return nil, n.err
	}
	return n.ch, nil
}

func TestWatcher_PublishesLinkEvents(t *testing.T) {
	hub := events.NewHub()
	sub := hub.Subscribe(10)
	m := metrics.New(prometheus.NewRegistry())
	w := NewWatcher(hub, logging.Discard(), m)

	up := linkMsg(t, 4, "eth1", 1)
	gone := linkMsg(t, 4, "eth1", 0)
	gone.Header.Type = ifinfo.TypeDelLink
	corrupt := ifinfo.Message{
		Header:     ifinfo.NetlinkHeader{Type: ifinfo.TypeNewLink},
		Attributes: []rtattr.Attribute{{Type: 3, Data: []byte("no-nul")}},
	}
	other := ifinfo.Message{Header: ifinfo.NetlinkHeader{Type: ifinfo.TypeGetLink}}

	ch := make(chan ifinfo.Message, 4)
	ch <- up
	ch <- other
	ch <- corrupt
	ch <- gone
	close(ch)

	require.NoError(t, w.Watch(context.Background(), &chanNotifier{ch: ch}))

	require.Len(t, sub, 2)
	e := <-sub
	assert.Equal(t, events.EventLinkNew, e.Type)
	data := e.Data.(events.LinkData)
	assert.Equal(t, int32(4), data.Index)
	assert.Equal(t, "eth1", data.Name)
	assert.Equal(t, []string{"IFF_UP"}, data.Flags)

	e = <-sub
	assert.Equal(t, events.EventLinkDel, e.Type)
	assert.Empty(t, e.Data.(events.LinkData).Flags)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Notifications.WithLabelValues("newlink")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("dellink")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Notifications.WithLabelValues("other")))
}

func TestWatcher_StopsOnCancel(t *testing.T) {
	w := NewWatcher(events.NewHub(), logging.Discard(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := w.Run(ctx, make(chan ifinfo.Message))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWatcher_SubscribeFailure(t *testing.T) {
	boom := errors.New("bind failed")
	w := NewWatcher(events.NewHub(), logging.Discard(), nil)
	assert.ErrorIs(t, w.Watch(context.Background(), &chanNotifier{err: boom}), boom)
}
