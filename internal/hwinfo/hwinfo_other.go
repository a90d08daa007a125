//go:build !linux

package hwinfo

import "errors"

// ErrUnsupported is returned on platforms without ethtool.
var ErrUnsupported = errors.New("hwinfo: ethtool requires linux")

// Reader is unavailable on this platform.
type Reader struct{}

// NewReader always fails on this platform.
func NewReader() (*Reader, error) {
	return nil, ErrUnsupported
}

// Close does nothing.
func (r *Reader) Close() {}

// Read always fails on this platform.
func (r *Reader) Read(iface string) (*Info, error) {
	return nil, ErrUnsupported
}
