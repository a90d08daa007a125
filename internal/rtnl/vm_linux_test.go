//go:build linux

package rtnl

import (
	"context"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"

	"grimm.is/rtlink/internal/events"
	"grimm.is/rtlink/internal/link"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/testutil"
)

// isolatedNS creates a fresh network namespace and returns a Conn and a
// vishvananda handle inside it. The calling goroutine is returned to its
// original namespace on cleanup.
func isolatedNS(t *testing.T) (*Conn, *netlink.Handle) {
	t.Helper()
	testutil.RequireVM(t)

	runtime.LockOSThread()
	orig, err := netns.Get()
	require.NoError(t, err)

	ns, err := netns.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		ns.Close()
		netns.Set(orig)
		orig.Close()
		runtime.UnlockOSThread()
	})

	conn, err := Dial(Config{Strict: true, NetNS: int(ns)}, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	h, err := netlink.NewHandleAt(ns)
	require.NoError(t, err)
	t.Cleanup(h.Close)

	return conn, h
}

func TestVM_LoopbackFetch(t *testing.T) {
	conn, h := isolatedNS(t)
	reg := link.NewRegistry(conn, link.WithLogger(logging.Discard()))
	ctx := context.Background()

	lo, err := reg.FindOneBy(ctx, link.Filter{Attrs: linkattr.Attrs{Name: "lo"}})
	require.NoError(t, err)

	want, err := h.LinkByName("lo")
	require.NoError(t, err)
	assert.Equal(t, int32(want.Attrs().Index), lo.Index)
	assert.Equal(t, uint32(want.Attrs().MTU), lo.MTU)
	assert.True(t, lo.Flags["IFF_LOOPBACK"])

	byIndex, err := reg.Fetch(ctx, lo.Index)
	require.NoError(t, err)
	assert.Equal(t, "lo", byIndex.Name)
}

func TestVM_CreateModifyDelete(t *testing.T) {
	conn, h := isolatedNS(t)
	reg := link.NewRegistry(conn, link.WithLogger(logging.Discard()), link.WithCreateAttempts(3))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	created, err := reg.CreateLink(ctx, link.CreateRequest{
		Attrs: linkattr.Attrs{
			Name:     "rtl-dummy0",
			MTU:      1400,
			LinkInfo: &linkattr.LinkInfo{Kind: "dummy"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "rtl-dummy0", created.Name)
	assert.Equal(t, "dummy", created.Kind())

	nl, err := h.LinkByName("rtl-dummy0")
	require.NoError(t, err)
	assert.Equal(t, int32(nl.Attrs().Index), created.Index)
	assert.Equal(t, 1400, nl.Attrs().MTU)
	assert.Equal(t, "dummy", nl.Type())

	err = reg.FromIndex(created.Index).Modify(ctx,
		linkflags.Set{"IFF_UP": true},
		linkattr.Attrs{MTU: 9000, Alias: "test"},
	)
	require.NoError(t, err)

	nl, err = h.LinkByIndex(int(created.Index))
	require.NoError(t, err)
	assert.Equal(t, 9000, nl.Attrs().MTU)
	assert.Equal(t, "test", nl.Attrs().Alias)
	assert.NotZero(t, nl.Attrs().Flags&1, "IFF_UP")

	dummies, err := reg.FindAllBy(ctx, link.Filter{Attrs: linkattr.Attrs{LinkInfo: &linkattr.LinkInfo{Kind: "dummy"}}})
	require.NoError(t, err)
	require.Len(t, dummies, 1)

	require.NoError(t, reg.DeleteLink(ctx, created.Index))
	_, err = h.LinkByName("rtl-dummy0")
	assert.Error(t, err)

	_, err = reg.Fetch(ctx, created.Index)
	assert.ErrorIs(t, err, syscall.ENODEV)

	missing, err := reg.FindAllBy(ctx, link.Filter{Attrs: linkattr.Attrs{Name: "rtl-dummy0"}})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestVM_CreateDuplicateName(t *testing.T) {
	conn, _ := isolatedNS(t)
	reg := link.NewRegistry(conn, link.WithLogger(logging.Discard()))
	ctx := context.Background()

	req := link.CreateRequest{Attrs: linkattr.Attrs{Name: "rtl-dup0", LinkInfo: &linkattr.LinkInfo{Kind: "dummy"}}}
	_, err := reg.CreateLink(ctx, req)
	require.NoError(t, err)

	// A taken name and a free index: the kernel answers EEXIST for the
	// name, which the predictor cannot distinguish from a lost race.
	_, err = reg.CreateLink(ctx, req)
	assert.ErrorIs(t, err, link.ErrIndexAllocationFailed)
}

func TestVM_Notifications(t *testing.T) {
	conn, h := isolatedNS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub := events.NewHub()
	sub := hub.Subscribe(16, events.EventLinkNew)
	w := link.NewWatcher(hub, logging.Discard(), nil)
	go w.Watch(ctx, conn)

	// Give the subscription socket time to join the group.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, h.LinkAdd(&netlink.Dummy{LinkAttrs: netlink.LinkAttrs{Name: "rtl-watch0"}}))

	for {
		select {
		case e := <-sub:
			if e.Data.(events.LinkData).Name == "rtl-watch0" {
				return
			}
		case <-ctx.Done():
			t.Fatal("no notification for rtl-watch0")
		}
	}
}
