package cachesize

// Reason explains why a query produced no value. CacheSize and friends
// collapse every Reason other than OK into a plain false.
type Reason uint8

const (
	// OK means the query produced a value.
	OK Reason = iota
	// NoFacility means the host cannot answer: no CPUID, no vendor string,
	// or no leaf the selected strategy reads.
	NoFacility
	// NoMatch means the CPU reports no cache at the requested level and type.
	NoMatch
	// NoFixedField means the fixed AMD leaves have no field for the
	// requested level and type.
	NoFixedField
	// Unrepresentable means the value does not fit in an int.
	Unrepresentable
)

func (r Reason) String() string {
	switch r {
	case OK:
		return "ok"
	case NoFacility:
		return "cache information unavailable"
	case NoMatch:
		return "no such cache"
	case NoFixedField:
		return "not reported by fixed AMD cache fields"
	case Unrepresentable:
		return "value out of range"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Reason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}
