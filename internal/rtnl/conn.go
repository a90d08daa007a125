// Package rtnl carries link messages over a NETLINK_ROUTE socket.
//
// A Conn implements the request/response side used by link.Registry and the
// multicast side used by link.Watcher. Requests are serialized: one message
// is in flight at a time and replies are matched by sequence number.
package rtnl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	"github.com/mdlayher/netlink"

	"grimm.is/rtlink/internal/ifinfo"
	"grimm.is/rtlink/internal/logging"
)

// ErrClosed is returned for requests on a closed Conn.
var ErrClosed = errors.New("rtnl: connection closed")

// Config holds socket options.
type Config struct {
	// Strict enables NETLINK_GET_STRICT_CHK so the kernel rejects GET
	// requests carrying fields it would otherwise ignore.
	Strict bool

	// ReceiveBuffer sets SO_RCVBUF in bytes when non-zero. Large dumps and
	// busy notification streams overrun the default.
	ReceiveBuffer int

	// NetNS is a network namespace file descriptor to operate in. Zero uses
	// the namespace of the calling thread.
	NetNS int
}

// socket is the subset of *netlink.Conn used here.
type socket interface {
	Send(m netlink.Message) (netlink.Message, error)
	Receive() ([]netlink.Message, error)
	SetDeadline(t time.Time) error
	Close() error
}

// Conn is a route netlink connection.
type Conn struct {
	mu     sync.Mutex
	sock   socket
	closed bool
	// broken is set when the request socket could not be reopened.
	broken error

	// dial opens additional sockets: multicast subscribers and request
	// socket replacements.
	dial   func(groups uint32) (socket, error)
	logger *logging.Logger
}

func newConn(sock socket, dial func(uint32) (socket, error), logger *logging.Logger) *Conn {
	if logger == nil {
		logger = logging.WithComponent("rtnl")
	}
	return &Conn{sock: sock, dial: dial, logger: logger}
}

// Close releases the socket. Notification streams have their own sockets
// and end with their contexts.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.broken != nil {
		return nil
	}
	return c.sock.Close()
}

// Talk sends req and collects the reply packets. A non-zero kernel error
// code is returned as an error wrapping the errno.
func (c *Conn) Talk(ctx context.Context, req ifinfo.Message) ([]ifinfo.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.broken != nil {
		return nil, fmt.Errorf("rtnl: request socket unavailable: %w", c.broken)
	}
	return c.exchange(ctx, req)
}

// TryTalk is Talk with the kernel error code moved into the reply.
func (c *Conn) TryTalk(ctx context.Context, req ifinfo.Message) (ifinfo.Reply, error) {
	msgs, err := c.Talk(ctx, req)
	if err != nil {
		if code, ok := KernelCode(err); ok {
			return ifinfo.Reply{ErrorCode: code}, nil
		}
		return ifinfo.Reply{}, err
	}
	return ifinfo.Reply{Packets: msgs}, nil
}

func (c *Conn) exchange(ctx context.Context, req ifinfo.Message) (out []ifinfo.Message, err error) {
	nm, err := toNetlink(req)
	if err != nil {
		return nil, err
	}

	sock := c.sock
	deadline, _ := ctx.Deadline()
	if err := sock.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}
	stop := context.AfterFunc(ctx, func() {
		// Unblocks a pending Receive.
		_ = sock.SetDeadline(time.Unix(0, 1))
	})
	defer stop()

	sent, err := sock.Send(nm)
	if err != nil {
		return nil, ctxErr(ctx, err)
	}

	// Receive raises an error message before its sequence can be checked,
	// so answers left over from an abandoned request would surface as the
	// next request's result. Only a kernel answer ends the exchange cleanly.
	defer func() {
		if _, ok := KernelCode(err); err != nil && !ok {
			c.reopen(sock)
		}
	}()
	c.logger.Debug("sent request",
		"type", req.Header.Type,
		"flags", fmt.Sprintf("%#x", req.Header.Flags),
		"seq", sent.Header.Sequence,
		"ifindex", req.Info.Index)

	dump := nm.Header.Flags&netlink.Dump == netlink.Dump

	for {
		msgs, err := sock.Receive()
		if err != nil {
			return nil, ctxErr(ctx, err)
		}

		matched := len(msgs) == 0
		for _, m := range msgs {
			if m.Header.Sequence != sent.Header.Sequence {
				c.logger.Debug("discarding stale reply", "seq", m.Header.Sequence, "want", sent.Header.Sequence)
				continue
			}
			matched = true

			switch m.Header.Type {
			case netlink.Error, netlink.Done:
				// Non-zero codes were already raised by Receive.
				return out, nil
			}
			im, err := fromNetlink(m)
			if err != nil {
				return nil, err
			}
			out = append(out, im)
		}

		// Receive reassembles a whole multi-part dump and strips its
		// terminator.
		if dump && matched {
			return out, nil
		}
	}
}

// reopen replaces the request socket. Callers hold c.mu.
func (c *Conn) reopen(old socket) {
	_ = old.Close()
	sock, err := c.dial(0)
	if err != nil {
		c.logger.Error("reopening request socket failed", "error", err)
		c.broken = err
		return
	}
	c.logger.Debug("request socket reopened after abandoned exchange")
	c.sock = sock
}

// Notifications opens a socket joined to RTMGRP_LINK and streams link
// messages until ctx is done. The channel is closed when the stream ends.
func (c *Conn) Notifications(ctx context.Context) (<-chan ifinfo.Message, error) {
	sock, err := c.dial(groupLink)
	if err != nil {
		return nil, fmt.Errorf("subscribe to link notifications: %w", err)
	}

	out := make(chan ifinfo.Message, 64)
	go c.notify(ctx, sock, out)
	return out, nil
}

func (c *Conn) notify(ctx context.Context, sock socket, out chan<- ifinfo.Message) {
	defer close(out)
	defer sock.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = sock.SetDeadline(time.Unix(0, 1))
	})
	defer stop()

	for {
		msgs, err := sock.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, syscall.ENOBUFS) {
				c.logger.Warn("notification socket overrun, events were lost")
				continue
			}
			c.logger.Error("notification receive failed", "error", err)
			return
		}

		for _, m := range msgs {
			if !ifinfo.IsLinkType(uint16(m.Header.Type)) {
				continue
			}
			im, err := fromNetlink(m)
			if err != nil {
				c.logger.Warn("dropping malformed notification", "type", m.Header.Type, "error", err)
				continue
			}
			select {
			case out <- im:
			case <-ctx.Done():
				return
			}
		}
	}
}

// KernelCode extracts the errno the kernel answered a request with. It
// reports false for errors that did not come from a kernel reply.
//
// netlink carries an error message's code as a bare errno, while failed
// system calls on the socket (recvmsg ENOBUFS) arrive wrapped in an
// *os.SyscallError and are not answers.
func KernelCode(err error) (int, bool) {
	var oe *netlink.OpError
	if !errors.As(err, &oe) || oe.Op != "receive" {
		return 0, false
	}
	errno, ok := oe.Err.(syscall.Errno)
	if !ok || errno == 0 {
		return 0, false
	}
	return int(errno), true
}

func ctxErr(ctx context.Context, err error) error {
	if cerr := ctx.Err(); cerr != nil {
		return fmt.Errorf("%w: %v", cerr, err)
	}
	return err
}

func toNetlink(m ifinfo.Message) (netlink.Message, error) {
	body, err := m.MarshalBinary()
	if err != nil {
		return netlink.Message{}, fmt.Errorf("encode request: %w", err)
	}
	return netlink.Message{
		Header: netlink.Header{
			Type:  netlink.HeaderType(m.Header.Type),
			Flags: netlink.HeaderFlags(m.Header.Flags),
		},
		Data: body,
	}, nil
}

func fromNetlink(m netlink.Message) (ifinfo.Message, error) {
	return ifinfo.UnmarshalMessage(ifinfo.NetlinkHeader{
		Type:  uint16(m.Header.Type),
		Flags: uint16(m.Header.Flags),
	}, m.Data)
}
