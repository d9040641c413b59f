package config

import (
	"strconv"
	"strings"

	"github.com/tolelom/dsimnet/simerr"
)

// HashPowerChangeSpec is one parsed entry of the node.hashPowerChanges
// grammar (§6): `{nodeID:power:time, ...}`.
type HashPowerChangeSpec struct {
	NodeID    int64
	NewPower  float64
	Time      float64
}

// ParseHashPowerChanges parses the node.hashPowerChanges grammar:
//
//	'{' entry (',' entry)* '}'
//	entry = integer ':' float ':' integer
//
// Whitespace is permitted around every token. Empty braces ("{}") parse
// to an empty schedule and a nil error. Every rejection names the
// offending field per §7's ConfigError contract (tested by scenario S8).
func ParseHashPowerChanges(raw string) ([]HashPowerChangeSpec, error) {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, simerr.NewConfigError("node.hashPowerChanges", raw, "must be wrapped in '{' and '}'")
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}

	var specs []HashPowerChangeSpec
	for _, entry := range strings.Split(body, ",") {
		entry = strings.TrimSpace(entry)
		fields := strings.Split(entry, ":")
		if len(fields) != 3 {
			return nil, simerr.NewConfigError("node.hashPowerChanges", entry, "each entry must have exactly 3 fields (nodeID:power:time)")
		}

		nodeIDStr := strings.TrimSpace(fields[0])
		powerStr := strings.TrimSpace(fields[1])
		timeStr := strings.TrimSpace(fields[2])

		nodeID, err := strconv.ParseInt(nodeIDStr, 10, 64)
		if err != nil {
			return nil, simerr.NewConfigError("node.hashPowerChanges", nodeIDStr, "nodeID must be an integer")
		}
		power, err := strconv.ParseFloat(powerStr, 64)
		if err != nil {
			return nil, simerr.NewConfigError("node.hashPowerChanges", powerStr, "power must be a number")
		}
		if power < 0 {
			return nil, simerr.NewConfigError("node.hashPowerChanges", powerStr, "power cannot be negative")
		}
		t, err := strconv.ParseInt(timeStr, 10, 64)
		if err != nil {
			return nil, simerr.NewConfigError("node.hashPowerChanges", timeStr, "time must be an integer")
		}
		if t < 0 {
			return nil, simerr.NewConfigError("node.hashPowerChanges", timeStr, "time cannot be negative")
		}

		specs = append(specs, HashPowerChangeSpec{NodeID: nodeID, NewPower: power, Time: float64(t)})
	}
	return specs, nil
}
