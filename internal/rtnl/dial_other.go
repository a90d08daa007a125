//go:build !linux

package rtnl

import (
	"errors"

	"grimm.is/rtlink/internal/logging"
)

// groupLink mirrors RTMGRP_LINK.
const groupLink = 0x1

// ErrUnsupported is returned by Dial on platforms without route netlink.
var ErrUnsupported = errors.New("rtnl: route netlink requires linux")

// Dial is not supported on this platform.
func Dial(cfg Config, logger *logging.Logger) (*Conn, error) {
	return nil, ErrUnsupported
}
