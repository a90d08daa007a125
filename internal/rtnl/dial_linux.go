//go:build linux

package rtnl

import (
	"fmt"

	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"grimm.is/rtlink/internal/logging"
)

const groupLink = unix.RTMGRP_LINK

// Dial opens a NETLINK_ROUTE socket.
func Dial(cfg Config, logger *logging.Logger) (*Conn, error) {
	if logger == nil {
		logger = logging.WithComponent("rtnl")
	}
	sock, err := dialSocket(cfg, 0, logger)
	if err != nil {
		return nil, err
	}
	dial := func(groups uint32) (socket, error) {
		return dialSocket(cfg, groups, logger)
	}
	return newConn(sock, dial, logger), nil
}

func dialSocket(cfg Config, groups uint32, logger *logging.Logger) (*netlink.Conn, error) {
	conn, err := netlink.Dial(unix.NETLINK_ROUTE, &netlink.Config{
		Groups: groups,
		NetNS:  cfg.NetNS,
	})
	if err != nil {
		return nil, fmt.Errorf("dialing netlink socket: %w", err)
	}

	// Error messages carry the offending attribute offset when available.
	if err := conn.SetOption(netlink.ExtendedAcknowledge, true); err != nil {
		logger.Debug("extended acknowledgements unavailable", "error", err)
	}
	if cfg.Strict {
		if err := conn.SetOption(netlink.GetStrictCheck, true); err != nil {
			conn.Close()
			return nil, fmt.Errorf("enable strict checking: %w", err)
		}
	}
	if cfg.ReceiveBuffer > 0 {
		if err := conn.SetReadBuffer(cfg.ReceiveBuffer); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set receive buffer: %w", err)
		}
	}
	return conn, nil
}
