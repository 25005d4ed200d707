package trip

// Memo caches Positions for the most recently seen trip. A trip is
// considered the same when it shares the backing array and length, which
// holds because trips are never mutated after load.
type Memo struct {
	trip      Trip
	positions []Position
	computed  bool
}

// Positions returns the filtered positions for t, recomputing only when t is
// a different trip than the last call.
func (m *Memo) Positions(t Trip) []Position {
	if m.computed && sameTrip(m.trip, t) {
		return m.positions
	}
	m.trip = t
	m.positions = Positions(t)
	m.computed = true
	return m.positions
}

func sameTrip(a, b Trip) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}
