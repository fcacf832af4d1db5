// README: Common identifier and geographic value objects used across modules.
package types

// ID is an opaque entity identifier. Owner and renter IDs arrive already
// verified from the auth layer and are never interpreted here.
type ID string

type Point struct {
	Lat float64
	Lng float64
}
