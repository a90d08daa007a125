//go:build !linux

package cmd

import "errors"

func openNamedNetNS(name string) (uint32, func(), error) {
	return 0, nil, errors.New("network namespaces require linux")
}
