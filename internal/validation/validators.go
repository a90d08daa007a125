// Package validation checks user-supplied link attributes before they are
// sent to the kernel, so bad input fails with a readable message instead of
// an EINVAL.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// MaxInterfaceNameLen is IFNAMSIZ minus the terminating NUL.
	MaxInterfaceNameLen = 15
	// MaxAliasLen is IFALIASZ minus the terminating NUL.
	MaxAliasLen = 255
)

// ValidateInterfaceName applies the kernel's dev_valid_name rules.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}
	if len(name) > MaxInterfaceNameLen {
		return fmt.Errorf("interface name too long (max %d bytes): %s", MaxInterfaceNameLen, name)
	}
	if name == "." || name == ".." {
		return fmt.Errorf("invalid interface name: %s", name)
	}
	for _, r := range name {
		if r == '/' || r == ':' || unicode.IsSpace(r) {
			return fmt.Errorf("interface name contains invalid character %q: %s", r, name)
		}
	}
	return nil
}

// ValidateAlias checks an IFLA_IFALIAS value. Empty is allowed.
func ValidateAlias(alias string) error {
	if len(alias) > MaxAliasLen {
		return fmt.Errorf("alias too long (max %d bytes)", MaxAliasLen)
	}
	if strings.ContainsRune(alias, 0) {
		return fmt.Errorf("alias contains NUL byte")
	}
	return nil
}

// ValidateKind checks a link kind such as "dummy" or "vlan".
func ValidateKind(kind string) error {
	if kind == "" {
		return fmt.Errorf("link kind cannot be empty")
	}
	for _, r := range kind {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' || r == '-') {
			return fmt.Errorf("invalid link kind: %s", kind)
		}
	}
	return nil
}
