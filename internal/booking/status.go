package booking

import "roombooking/internal/fault"

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusCancelled  Status = "CANCELLED"
	StatusCompleted  Status = "COMPLETED"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected, StatusCancelled, StatusCompleted:
		return Status(s), nil
	default:
		return "", fault.New(fault.InvalidInput, "unknown booking status: "+s)
	}
}

// Active reports whether the booking still reserves room-time. Only
// active bookings participate in conflict detection.
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved:
		return true
	default:
		return false
	}
}

// Priority is the list ordering attached to the status enum: items
// needing attention sort first, history last.
func (s Status) Priority() int {
	switch s {
	case StatusPending:
		return 1
	case StatusProcessing:
		return 2
	case StatusApproved:
		return 3
	case StatusRejected:
		return 4
	case StatusCancelled:
		return 5
	case StatusCompleted:
		return 6
	default:
		return 7
	}
}

// allowedTransitions is the full lifecycle:
// PENDING -> PROCESSING -> APPROVED -> COMPLETED, with REJECTED
// reachable from PENDING or PROCESSING and CANCELLED as the other
// terminal exit. Cancellation of PROCESSING/APPROVED is an admin
// override; who may walk each edge is enforced by Admission.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:    {StatusProcessing: true, StatusRejected: true, StatusCancelled: true},
	StatusProcessing: {StatusApproved: true, StatusRejected: true, StatusCancelled: true},
	StatusApproved:   {StatusCompleted: true, StatusCancelled: true},
}

func CanTransition(from, to Status) bool {
	m, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}
