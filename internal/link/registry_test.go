package link

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"grimm.is/rtlink/internal/clock"
	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/linkattr"
	"grimm.is/rtlink/internal/linkflags"
	"grimm.is/rtlink/internal/logging"
	"grimm.is/rtlink/internal/metrics"
	"grimm.is/rtlink/internal/rtattr"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	getFlags  = ifinfo.FlagRequest | ifinfo.FlagAck
	dumpFlags = ifinfo.FlagRequest | ifinfo.FlagDump | ifinfo.FlagAck
)

func linkMsg(t *testing.T, index int32, name string, flags uint32) ifinfo.Message {
	t.Helper()
	attrs, err := linkattr.Marshal(linkattr.Attrs{Name: name, MTU: 1500})
	require.NoError(t, err)
	return ifinfo.Message{
		Header:     ifinfo.NetlinkHeader{Type: ifinfo.TypeNewLink, Flags: ifinfo.FlagMulti},
		Info:       ifinfo.Header{Index: index, DeviceType: 1, Flags: flags},
		Attributes: attrs,
	}
}

func dumpOf(t *testing.T, indices ...int32) []ifinfo.Message {
	t.Helper()
	var msgs []ifinfo.Message
	for _, i := range indices {
		msgs = append(msgs, linkMsg(t, i, "", 0))
	}
	return msgs
}

func newTestRegistry(tr Transport, opts ...Option) *Registry {
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return NewRegistry(tr, opts...)
}

func TestFetch(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr)

	want := mock.MatchedBy(func(req ifinfo.Message) bool {
		return req.Header.Type == ifinfo.TypeGetLink &&
			req.Header.Flags == getFlags &&
			req.Info.Family == ifinfo.FamilyPacket &&
			req.Info.Index == 3 &&
			len(req.Attributes) == 0
	})
	tr.On("Talk", mock.Anything, want).
		Return([]ifinfo.Message{linkMsg(t, 3, "eth0", 1<<0|1<<6)}, nil).Once()

	l, err := r.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), l.Index)
	assert.Equal(t, "eth0", l.Name)
	assert.Equal(t, uint32(1500), l.MTU)
	assert.True(t, l.IsUp())
	assert.True(t, l.Flags["IFF_RUNNING"])
	assert.Len(t, l.Flags, 19)
	assert.Empty(t, l.Unknown)
	tr.AssertExpectations(t)
}

func TestFetch_PreservesUnknownAttributes(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr)

	msg := linkMsg(t, 4, "wg0", 0)
	msg.Attributes = append(msg.Attributes,
		rtattr.Attribute{Type: 0x2a, Data: []byte{1, 0, 0, 0}},
		rtattr.Attribute{Type: 0x2a, Data: []byte{2, 0, 0, 0}},
	)
	tr.On("Talk", mock.Anything, mock.Anything).Return([]ifinfo.Message{msg}, nil).Once()

	l, err := r.Fetch(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, map[uint16][][]byte{0x2a: {{1, 0, 0, 0}, {2, 0, 0, 0}}}, l.Unknown)
	assert.True(t, l.Present.Has(linkattr.TypeMTU))
}

func TestFetch_ResultCount(t *testing.T) {
	tests := []struct {
		name  string
		reply []ifinfo.Message
		want  error
	}{
		{"none", nil, ErrNotFound},
		{"two", []ifinfo.Message{linkMsg(t, 5, "a", 0), linkMsg(t, 5, "b", 0)}, ErrMultipleResults},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := new(MockTransport)
			tr.On("Talk", mock.Anything, mock.Anything).Return(tt.reply, nil).Once()

			_, err := newTestRegistry(tr).Fetch(context.Background(), 5)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFetch_TransportError(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Talk", mock.Anything, mock.Anything).Return(nil, syscall.ENODEV).Once()

	_, err := newTestRegistry(tr).Fetch(context.Background(), 99)
	assert.ErrorIs(t, err, syscall.ENODEV)
	assert.Contains(t, err.Error(), "fetch link 99")
}

func TestFindAllBy_NoSuchDeviceIsEmpty(t *testing.T) {
	tr := new(MockTransport)
	tr.On("TryTalk", mock.Anything, IsRequest(ifinfo.TypeGetLink, getFlags)).
		Return(ifinfo.Reply{ErrorCode: codeNoDevice}, nil).Once()

	links, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{Attrs: linkattr.Attrs{Name: "nope0"}})
	require.NoError(t, err)
	assert.Empty(t, links)
	tr.AssertExpectations(t)
}

func TestFindAllBy_OtherCodeIsTransportError(t *testing.T) {
	tr := new(MockTransport)
	tr.On("TryTalk", mock.Anything, mock.Anything).
		Return(ifinfo.Reply{ErrorCode: int(syscall.EPERM)}, nil).Once()

	_, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{})

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, int(syscall.EPERM), te.Code)
	assert.ErrorIs(t, err, syscall.EPERM)
}

func TestFindAllBy_TransportFailure(t *testing.T) {
	tr := new(MockTransport)
	boom := errors.New("socket closed")
	tr.On("TryTalk", mock.Anything, mock.Anything).Return(ifinfo.Reply{}, boom).Once()

	_, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{})
	assert.ErrorIs(t, err, boom)
}

func TestFindAllBy_NameLookupRequest(t *testing.T) {
	tr := new(MockTransport)
	want := mock.MatchedBy(func(req ifinfo.Message) bool {
		if req.Header.Flags != getFlags || len(req.Attributes) != 1 {
			return false
		}
		a := req.Attributes[0]
		return a.Type == linkattr.TypeIfname && string(a.Data) == "br0\x00" &&
			req.Info.Flags == 0 && req.Info.Change == 0
	})
	tr.On("TryTalk", mock.Anything, want).
		Return(ifinfo.Reply{Packets: []ifinfo.Message{linkMsg(t, 8, "br0", 1)}}, nil).Once()

	links, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{
		Flags: linkflags.Set{"IFF_UP": true},
		Attrs: linkattr.Attrs{Name: "br0"},
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int32(8), links[0].Index)
	tr.AssertExpectations(t)
}

func TestFindAllBy_DumpFiltersByKindAndFlags(t *testing.T) {
	tr := new(MockTransport)

	veth := func(index int32, up bool) ifinfo.Message {
		var flags uint32
		if up {
			flags = 1
		}
		attrs, err := linkattr.Marshal(linkattr.Attrs{
			Name:     "veth",
			LinkInfo: &linkattr.LinkInfo{Kind: "veth"},
		})
		require.NoError(t, err)
		return ifinfo.Message{
			Header:     ifinfo.NetlinkHeader{Type: ifinfo.TypeNewLink},
			Info:       ifinfo.Header{Index: index, Flags: flags},
			Attributes: attrs,
		}
	}

	want := mock.MatchedBy(func(req ifinfo.Message) bool {
		if req.Header.Flags != dumpFlags || len(req.Attributes) != 1 {
			return false
		}
		li, _, err := linkattr.Unmarshal(req.Attributes)
		return err == nil && li.LinkInfo != nil && li.LinkInfo.Kind == "veth"
	})
	tr.On("TryTalk", mock.Anything, want).Return(ifinfo.Reply{Packets: []ifinfo.Message{
		veth(10, true),
		veth(11, false),
		linkMsg(t, 1, "lo", 1), // kernels without dump filtering return everything
	}}, nil).Once()

	links, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{
		Flags: linkflags.Set{"IFF_UP": true},
		Attrs: linkattr.Attrs{LinkInfo: &linkattr.LinkInfo{Kind: "veth"}},
	})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, int32(10), links[0].Index)
	tr.AssertExpectations(t)
}

func TestFindAllBy_UnknownFlag(t *testing.T) {
	tr := new(MockTransport)
	_, err := newTestRegistry(tr).FindAllBy(context.Background(), Filter{Flags: linkflags.Set{"IFF_FAST": true}})
	assert.ErrorIs(t, err, linkflags.ErrUnknownFlag)
	tr.AssertNotCalled(t, "TryTalk", mock.Anything, mock.Anything)
}

func TestFindOneBy(t *testing.T) {
	ctx := context.Background()

	tr := new(MockTransport)
	tr.On("TryTalk", mock.Anything, mock.Anything).
		Return(ifinfo.Reply{Packets: []ifinfo.Message{linkMsg(t, 2, "eth0", 0), linkMsg(t, 3, "eth1", 0)}}, nil)
	r := newTestRegistry(tr)

	_, err := r.FindOneBy(ctx, Filter{})
	assert.ErrorIs(t, err, ErrMultipleResults)

	l, err := r.TryFindOneBy(ctx, Filter{})
	assert.NoError(t, err)
	assert.Nil(t, l)

	l, err = r.FindOneBy(ctx, Filter{Attrs: linkattr.Attrs{Name: "eth1"}})
	require.NoError(t, err)
	assert.Equal(t, int32(3), l.Index)

	_, err = r.FindOneBy(ctx, Filter{Attrs: linkattr.Attrs{MTU: 9000}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModify(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr)

	var sent ifinfo.Message
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeNewLink, getFlags)).
		Run(func(args mock.Arguments) { sent = args.Get(1).(ifinfo.Message) }).
		Return(nil, nil).Once()

	err := r.FromIndex(7).Modify(context.Background(),
		linkflags.Set{"IFF_UP": false, "IFF_PROMISC": true},
		linkattr.Attrs{MTU: 9000},
	)
	require.NoError(t, err)

	assert.Equal(t, int32(7), sent.Info.Index)
	assert.Equal(t, ifinfo.FamilyPacket, sent.Info.Family)
	assert.Equal(t, uint32(1<<8), sent.Info.Flags)
	assert.Equal(t, uint32(1<<0|1<<8), sent.Info.Change)
	require.Len(t, sent.Attributes, 1)
	assert.Equal(t, linkattr.TypeMTU, sent.Attributes[0].Type)
}

func TestModify_SendsExplicitZero(t *testing.T) {
	tr := new(MockTransport)

	var sent ifinfo.Message
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeNewLink, getFlags)).
		Run(func(args mock.Arguments) { sent = args.Get(1).(ifinfo.Message) }).
		Return(nil, nil).Once()

	err := newTestRegistry(tr).Modify(context.Background(), 7, nil, linkattr.Attrs{
		TxQLen:  0,
		Present: linkattr.FieldsOf(linkattr.TypeTxQLen),
	})
	require.NoError(t, err)

	require.Len(t, sent.Attributes, 1)
	assert.Equal(t, linkattr.TypeTxQLen, sent.Attributes[0].Type)
	assert.Equal(t, []byte{0, 0, 0, 0}, sent.Attributes[0].Data)
}

func TestFindAllBy_ExplicitZeroConstrains(t *testing.T) {
	tr := new(MockTransport)

	enslaved := linkMsg(t, 5, "veth0", 0)
	master, err := linkattr.Marshal(linkattr.Attrs{Master: 3})
	require.NoError(t, err)
	enslaved.Attributes = append(enslaved.Attributes, master...)

	tr.On("TryTalk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).
		Return(ifinfo.Reply{Packets: []ifinfo.Message{linkMsg(t, 2, "eth0", 0), enslaved}}, nil)
	r := newTestRegistry(tr)

	all, err := r.FindAllBy(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	standalone, err := r.FindAllBy(context.Background(), Filter{
		Attrs: linkattr.Attrs{Present: linkattr.FieldsOf(linkattr.TypeMaster)},
	})
	require.NoError(t, err)
	require.Len(t, standalone, 1)
	assert.Equal(t, int32(2), standalone[0].Index)
}

func TestModify_UnknownFlag(t *testing.T) {
	tr := new(MockTransport)
	err := newTestRegistry(tr).Modify(context.Background(), 7, linkflags.Set{"UP": true}, linkattr.Attrs{})
	assert.ErrorIs(t, err, linkflags.ErrUnknownFlag)
	tr.AssertNotCalled(t, "Talk", mock.Anything, mock.Anything)
}

func TestDeleteLink(t *testing.T) {
	tr := new(MockTransport)
	want := mock.MatchedBy(func(req ifinfo.Message) bool {
		return req.Header.Type == ifinfo.TypeDelLink &&
			req.Header.Flags == getFlags &&
			req.Info.Family == ifinfo.FamilyUnspec &&
			req.Info.Index == 12
	})
	tr.On("Talk", mock.Anything, want).Return(nil, nil).Once()

	require.NoError(t, newTestRegistry(tr).FromIndex(12).Delete(context.Background()))
	tr.AssertExpectations(t)

	tr = new(MockTransport)
	tr.On("Talk", mock.Anything, mock.Anything).Return(nil, syscall.EOPNOTSUPP).Once()
	err := newTestRegistry(tr).DeleteLink(context.Background(), 1)
	assert.ErrorIs(t, err, syscall.EOPNOTSUPP)
}

func TestNextUnusedIndex(t *testing.T) {
	tr := new(MockTransport)
	msgs := dumpOf(t, 1, 2, 5)
	// Only NEWLINK packets count toward the highest index.
	msgs = append(msgs, ifinfo.Message{
		Header: ifinfo.NetlinkHeader{Type: ifinfo.TypeDelLink},
		Info:   ifinfo.Header{Index: 40},
	})
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(msgs, nil).Once()

	idx, err := newTestRegistry(tr).NextUnusedIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(6), idx)

	tr = new(MockTransport)
	tr.On("Talk", mock.Anything, mock.Anything).Return(nil, nil).Once()
	idx, err = newTestRegistry(tr).NextUnusedIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), idx)
}

func TestCreateLink_FirstAttempt(t *testing.T) {
	tr := new(MockTransport)
	m := metrics.New(prometheus.NewRegistry())
	r := newTestRegistry(tr, WithMetrics(m))

	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1, 2, 5), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(6)).Return(ifinfo.Reply{}, nil).Once()
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, getFlags)).
		Return([]ifinfo.Message{linkMsg(t, 6, "dummy0", 0)}, nil).Once()

	l, err := r.CreateLink(context.Background(), CreateRequest{
		Attrs: linkattr.Attrs{Name: "dummy0", LinkInfo: &linkattr.LinkInfo{Kind: "dummy"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(6), l.Index)
	assert.Equal(t, "dummy0", l.Name)

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "TryTalk", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CreateAttempts))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.IndexRaces))
}

func TestCreateLink_RequestShape(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr)

	var sent ifinfo.Message
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(2)).
		Run(func(args mock.Arguments) { sent = args.Get(1).(ifinfo.Message) }).
		Return(ifinfo.Reply{}, nil).Once()
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, getFlags)).
		Return([]ifinfo.Message{linkMsg(t, 2, "br0", 1)}, nil).Once()

	_, err := r.CreateLink(context.Background(), CreateRequest{
		Flags: linkflags.Set{"IFF_UP": true},
		Attrs: linkattr.Attrs{Name: "br0", LinkInfo: &linkattr.LinkInfo{Kind: "bridge"}},
	})
	require.NoError(t, err)

	assert.Equal(t, ifinfo.FamilyUnspec, sent.Info.Family)
	assert.Equal(t, uint32(1), sent.Info.Flags)
	assert.Equal(t, uint32(1), sent.Info.Change)
	got, _, err := linkattr.Unmarshal(sent.Attributes)
	require.NoError(t, err)
	assert.Equal(t, "br0", got.Name)
	assert.Equal(t, "bridge", got.LinkInfo.Kind)
}

func TestCreateLink_DefaultBudgetFailsOnRace(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr)

	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1, 2, 5), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(6)).Return(ifinfo.Reply{ErrorCode: codeExist}, nil).Once()

	_, err := r.CreateLink(context.Background(), CreateRequest{Attrs: linkattr.Attrs{Name: "dummy0"}})
	assert.ErrorIs(t, err, ErrIndexAllocationFailed)

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "Talk", 1)
	tr.AssertNumberOfCalls(t, "TryTalk", 1)
}

func TestCreateLink_RetriesAfterRace(t *testing.T) {
	tr := new(MockTransport)
	mc := clock.NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	m := metrics.New(prometheus.NewRegistry())
	r := newTestRegistry(tr,
		WithCreateAttempts(3),
		WithRetryDelay(25*time.Millisecond),
		WithClock(mc),
		WithMetrics(m),
	)

	// Round 1: predicts 6, loses the race.
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1, 2, 5), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(6)).Return(ifinfo.Reply{ErrorCode: codeExist}, nil).Once()
	// Round 2: rescan sees 6, predicts 7.
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1, 2, 5, 6), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(7)).Return(ifinfo.Reply{}, nil).Once()
	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, getFlags)).
		Return([]ifinfo.Message{linkMsg(t, 7, "dummy0", 0)}, nil).Once()

	l, err := r.CreateLink(context.Background(), CreateRequest{Attrs: linkattr.Attrs{Name: "dummy0"}})
	require.NoError(t, err)
	assert.Equal(t, int32(7), l.Index)

	tr.AssertExpectations(t)
	tr.AssertNumberOfCalls(t, "TryTalk", 2)
	assert.Equal(t, []time.Duration{25 * time.Millisecond}, mc.Waits())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CreateAttempts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IndexRaces))
}

func TestCreateLink_ExhaustsBudget(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr, WithCreateAttempts(3))

	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1), nil).Times(3)
	tr.On("TryTalk", mock.Anything, IsCreateAt(2)).Return(ifinfo.Reply{ErrorCode: codeExist}, nil).Times(3)

	_, err := r.CreateLink(context.Background(), CreateRequest{})
	assert.ErrorIs(t, err, ErrIndexAllocationFailed)
	tr.AssertNumberOfCalls(t, "TryTalk", 3)
}

func TestCreateLink_OtherErrorAbortsImmediately(t *testing.T) {
	tr := new(MockTransport)
	r := newTestRegistry(tr, WithCreateAttempts(5))

	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1, 2), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(3)).
		Return(ifinfo.Reply{ErrorCode: int(syscall.EOPNOTSUPP)}, nil).Once()

	_, err := r.CreateLink(context.Background(), CreateRequest{
		Attrs: linkattr.Attrs{LinkInfo: &linkattr.LinkInfo{Kind: "nosuchkind"}},
	})

	var ce *CreateError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, int32(3), ce.Index)
	assert.Equal(t, int(syscall.EOPNOTSUPP), ce.Code)
	assert.ErrorIs(t, err, syscall.EOPNOTSUPP)
	assert.NotErrorIs(t, err, ErrIndexAllocationFailed)
	tr.AssertNumberOfCalls(t, "TryTalk", 1)
}

func TestCreateLink_ScanFailure(t *testing.T) {
	tr := new(MockTransport)
	tr.On("Talk", mock.Anything, mock.Anything).Return(nil, syscall.ENOBUFS).Once()

	_, err := newTestRegistry(tr).CreateLink(context.Background(), CreateRequest{})
	assert.ErrorIs(t, err, syscall.ENOBUFS)
	tr.AssertNotCalled(t, "TryTalk", mock.Anything, mock.Anything)
}

func TestCreateLink_UnknownFlagBeforeAnyRequest(t *testing.T) {
	tr := new(MockTransport)
	_, err := newTestRegistry(tr).CreateLink(context.Background(), CreateRequest{Flags: linkflags.Set{"IFF_TURBO": true}})
	assert.ErrorIs(t, err, linkflags.ErrUnknownFlag)
	tr.AssertNotCalled(t, "Talk", mock.Anything, mock.Anything)
}

func TestCreateLink_CancelledBetweenRounds(t *testing.T) {
	tr := new(MockTransport)
	ctx, cancel := context.WithCancel(context.Background())
	r := newTestRegistry(tr, WithCreateAttempts(3))

	tr.On("Talk", mock.Anything, IsRequest(ifinfo.TypeGetLink, dumpFlags)).Return(dumpOf(t, 1), nil).Once()
	tr.On("TryTalk", mock.Anything, IsCreateAt(2)).
		Run(func(mock.Arguments) { cancel() }).
		Return(ifinfo.Reply{ErrorCode: codeExist}, nil).Once()

	_, err := r.CreateLink(ctx, CreateRequest{})
	assert.ErrorIs(t, err, context.Canceled)
	tr.AssertNumberOfCalls(t, "TryTalk", 1)
}

func TestWithCreateAttempts_Floor(t *testing.T) {
	r := NewRegistry(nil, WithCreateAttempts(0))
	assert.Equal(t, 1, r.createAttempts)
}
