package booking

import "github.com/google/uuid"

// Table is read-only input to availability checks; it never changes during a
// scheduling operation.
type Table struct {
	ID           uuid.UUID
	RestaurantID uuid.UUID
	Capacity     int
	Number       string
}

func (t Table) Fits(partySize int) bool {
	return t.Capacity >= partySize
}
