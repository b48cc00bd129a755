package entity

// BusID is a stable index of a bus in the catalogue's bus storage.
type BusID int

// NoBus marks the absence of a bus reference.
const NoBus BusID = -1

// Bus is a named route over catalogue stops.
type Bus struct {
	ID          BusID    // Stable catalogue index
	Name        string   // Unique bus name
	Stops       []StopID // Route order as given at ingestion
	IsRoundtrip bool     // Roundtrip routes are traversed forward only
}

// Traversal returns the sequence of stops the bus actually visits.
// A roundtrip bus visits its stops as given; any other bus runs to the last
// stop and back, so [A B C] becomes [A B C B A].
func (b *Bus) Traversal() []StopID {
	if b.IsRoundtrip || len(b.Stops) < 2 {
		return append([]StopID(nil), b.Stops...)
	}

	traversal := make([]StopID, 0, len(b.Stops)*2-1)
	traversal = append(traversal, b.Stops...)
	for i := len(b.Stops) - 2; i >= 0; i-- {
		traversal = append(traversal, b.Stops[i])
	}

	return traversal
}

// Reversed returns the stops in reverse route order.
func (b *Bus) Reversed() []StopID {
	reversed := make([]StopID, len(b.Stops))
	for i, stop := range b.Stops {
		reversed[len(b.Stops)-1-i] = stop
	}

	return reversed
}
