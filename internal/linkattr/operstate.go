package linkattr

// OperState is the RFC 2863 operational state reported in IFLA_OPERSTATE.
type OperState uint8

// Operational states (IF_OPER_*). Unknown is zero, so sending it needs
// TypeOperState in Attrs.Present.
const (
	OperUnknown OperState = iota
	OperNotPresent
	OperDown
	OperLowerLayerDown
	OperTesting
	OperDormant
	OperUp
)

func (s OperState) String() string {
	switch s {
	case OperNotPresent:
		return "notpresent"
	case OperDown:
		return "down"
	case OperLowerLayerDown:
		return "lowerlayerdown"
	case OperTesting:
		return "testing"
	case OperDormant:
		return "dormant"
	case OperUp:
		return "up"
	}
	return "unknown"
}
