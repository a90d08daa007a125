package link

import (
	"context"

	"github.com/stretchr/testify/mock"

	"grimm.is/rtlink/internal/ifinfo"
)

// MockTransport is a mock implementation of the Transport interface.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Talk(ctx context.Context, req ifinfo.Message) ([]ifinfo.Message, error) {
	args := m.Called(ctx, req)
	msgs, _ := args.Get(0).([]ifinfo.Message)
	return msgs, args.Error(1)
}

func (m *MockTransport) TryTalk(ctx context.Context, req ifinfo.Message) (ifinfo.Reply, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ifinfo.Reply), args.Error(1)
}

// IsRequest matches a request by message type and header flags.
func IsRequest(typ, flags uint16) any {
	return mock.MatchedBy(func(req ifinfo.Message) bool {
		return req.Header.Type == typ && req.Header.Flags == flags
	})
}

// IsCreateAt matches a create-if-absent request for the given index.
func IsCreateAt(index int32) any {
	const createFlags = ifinfo.FlagRequest | ifinfo.FlagCreate | ifinfo.FlagExcl | ifinfo.FlagAck
	return mock.MatchedBy(func(req ifinfo.Message) bool {
		return req.Header.Type == ifinfo.TypeNewLink &&
			req.Header.Flags == createFlags &&
			req.Info.Index == index
	})
}
