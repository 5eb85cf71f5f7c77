package booking

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// Occupying reports whether a booking in this status holds its table.
// Cancelled bookings release the slot; completed ones keep their historical
// window and are still excluded from double-booking for the date they cover.
func (s Status) Occupying() bool {
	return s != StatusCancelled
}

// Reschedulable reports whether the orchestrator may move a booking in this
// status to another slot.
func (s Status) Reschedulable() bool {
	return s == StatusPending || s == StatusConfirmed
}
