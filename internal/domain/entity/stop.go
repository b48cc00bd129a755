// Package entity contains the core transit objects of the project.
package entity

import "transit/internal/geo"

// StopID is a stable index of a stop in the catalogue's stop storage.
type StopID int

// NoStop marks the absence of a stop reference.
const NoStop StopID = -1

// Stop is a named location passengers board and leave buses at.
type Stop struct {
	ID          StopID          // Stable catalogue index
	Name        string          // Unique stop name
	Coordinates geo.Coordinates // Defaults to (0,0) until the stop is defined
}
