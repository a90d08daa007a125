// Package linkflags converts between named interface flags (IFF_*) and the
// packed 32-bit masks carried in ifinfomsg.
package linkflags

import (
	"errors"
	"fmt"
	"sort"
)

// Flag is a bit position in the interface flag word.
type Flag uint8

// The 19 flags defined by <linux/if.h>, in bit order.
const (
	Up Flag = iota
	Broadcast
	Debug
	Loopback
	PointToPoint
	NoTrailers
	Running
	NoARP
	Promisc
	AllMulti
	Master
	Slave
	Multicast
	PortSel
	AutoMedia
	Dynamic
	LowerUp
	Dormant
	Echo

	numFlags = iota
)

// DefinedBits has every defined flag bit set.
const DefinedBits uint32 = 1<<numFlags - 1

var names = [numFlags]string{
	"IFF_UP",
	"IFF_BROADCAST",
	"IFF_DEBUG",
	"IFF_LOOPBACK",
	"IFF_POINTOPOINT",
	"IFF_NOTRAILERS",
	"IFF_RUNNING",
	"IFF_NOARP",
	"IFF_PROMISC",
	"IFF_ALLMULTI",
	"IFF_MASTER",
	"IFF_SLAVE",
	"IFF_MULTICAST",
	"IFF_PORTSEL",
	"IFF_AUTOMEDIA",
	"IFF_DYNAMIC",
	"IFF_LOWER_UP",
	"IFF_DORMANT",
	"IFF_ECHO",
}

// ErrUnknownFlag is returned for a name outside the fixed enumeration.
var ErrUnknownFlag = errors.New("unknown flag")

// Set maps flag names to values. A name that is present, true or false, is
// one the caller wants to control; absent names are left alone.
type Set map[string]bool

// String returns the kernel name of f.
func (f Flag) String() string {
	if int(f) < len(names) {
		return names[f]
	}
	return fmt.Sprintf("Flag(%d)", uint8(f))
}

// Bit returns the mask bit for f.
func (f Flag) Bit() uint32 {
	return 1 << f
}

// All returns every defined flag in bit order.
func All() []Flag {
	flags := make([]Flag, numFlags)
	for i := range flags {
		flags[i] = Flag(i)
	}
	return flags
}

// Lookup resolves a kernel flag name such as "IFF_UP".
func Lookup(name string) (Flag, error) {
	for i, n := range names {
		if n == name {
			return Flag(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownFlag)
}

// Mask ORs together the bits of every flag in s that is true.
func Mask(s Set) (uint32, error) {
	var m uint32
	for name, on := range s {
		f, err := Lookup(name)
		if err != nil {
			return 0, err
		}
		if on {
			m |= f.Bit()
		}
	}
	return m, nil
}

// ChangeMask ORs together the bits of every flag present in s, regardless of
// its value. The kernel only touches bits set in the change mask.
func ChangeMask(s Set) (uint32, error) {
	var m uint32
	for name := range s {
		f, err := Lookup(name)
		if err != nil {
			return 0, err
		}
		m |= f.Bit()
	}
	return m, nil
}

// Unmask expands m into a Set holding all 19 flags. Undefined bits are
// dropped.
func Unmask(m uint32) Set {
	s := make(Set, numFlags)
	for i, name := range names {
		s[name] = m&Flag(i).Bit() != 0
	}
	return s
}

// Active returns the names of the true flags in s, sorted by bit position.
func (s Set) Active() []string {
	var out []string
	for name, on := range s {
		if on {
			out = append(out, name)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		fi, _ := Lookup(out[i])
		fj, _ := Lookup(out[j])
		if fi == fj {
			return out[i] < out[j]
		}
		return fi < fj
	})
	return out
}

// Has reports whether f is present and true in s.
func (s Set) Has(f Flag) bool {
	return s[f.String()]
}
