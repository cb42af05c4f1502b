// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ordering

import "fmt"

// Role is one of the three cooperating roles of a litmus engine.
// No other value is meaningful.
type Role uint8

const (
	// Role0 is writer 0 (store buffering) or the incrementer (propagation).
	Role0 Role = iota
	// Role1 is writer 1 (store buffering) or the snapshotter (propagation).
	Role1
	// Role2 is the watcher (store buffering) or the consumer (propagation).
	// It is the only role that judges.
	Role2
)

// NumRoles is the number of core identities an apparatus owns.
const NumRoles = 3

// RoleOf maps a core identity to its role. Identities outside 0..2 are
// not owned by the apparatus.
func RoleOf(cpu uint) (Role, bool) {
	switch cpu {
	case 0:
		return Role0, true
	case 1:
		return Role1, true
	case 2:
		return Role2, true
	default:
		return 0, false
	}
}

func (r Role) String() string {
	return fmt.Sprintf("role%d", uint8(r))
}

// EngineKind selects the litmus engine.
type EngineKind uint8

const (
	// StoreBuffering is the SB detector: two writers and a watcher.
	StoreBuffering EngineKind = iota
	// Propagation is the write-propagation detector: incrementer,
	// snapshotter, consumer.
	Propagation
)

var roleNames = [...][NumRoles]string{
	StoreBuffering: {"writer-x", "writer-y", "watcher"},
	Propagation:    {"incrementer", "snapshotter", "consumer"},
}

// RoleName returns what role r does in engine k.
func (k EngineKind) RoleName(r Role) string {
	if int(k) >= len(roleNames) || r > Role2 {
		return "unknown"
	}
	return roleNames[k][r]
}

func (k EngineKind) String() string {
	switch k {
	case StoreBuffering:
		return "sb"
	case Propagation:
		return "rmo"
	default:
		return "unknown"
	}
}

// ParseEngineKind maps "sb" and "rmo" to their EngineKind.
func ParseEngineKind(s string) (EngineKind, bool) {
	switch s {
	case "sb":
		return StoreBuffering, true
	case "rmo":
		return Propagation, true
	default:
		return 0, false
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EngineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
