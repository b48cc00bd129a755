package routing

import "transit/internal/domain/entity"

// RideWeight is the cost of riding one bus from a boarding stop for a number
// of spans without changing buses. Combined weights describe whole paths and
// carry no boarding stop or bus.
type RideWeight struct {
	SpansTime    float64       // Riding minutes
	WaitTime     int           // Waiting minutes before boarding
	SpanCount    int           // Stops passed
	BoardingStop entity.StopID // Stop the ride starts at
	Bus          entity.BusID  // Bus ridden
}

// Total returns riding plus waiting minutes
func (w RideWeight) Total() float64 {
	return w.SpansTime + float64(w.WaitTime)
}

// Less orders weights by total minutes
func (w RideWeight) Less(other RideWeight) bool {
	return w.Total() < other.Total()
}

// Add combines two weights into the weight of a path
func (w RideWeight) Add(other RideWeight) RideWeight {
	return RideWeight{
		SpansTime:    w.SpansTime + other.SpansTime,
		WaitTime:     w.WaitTime + other.WaitTime,
		SpanCount:    w.SpanCount + other.SpanCount,
		BoardingStop: entity.NoStop,
		Bus:          entity.NoBus,
	}
}
