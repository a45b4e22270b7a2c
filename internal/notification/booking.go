package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BookingNotifier writes a notification when an admin decides a
// booking.
type BookingNotifier struct {
	Notifications *Repository
}

func (n BookingNotifier) BookingDecided(ctx context.Context, userID, roomName string, start time.Time, approved bool, adminNote string) error {
	when := start.Format("Mon, 2 Jan 2006 15:04")

	msg := &Notification{
		ID:     uuid.NewString(),
		UserID: userID,
	}
	if approved {
		msg.Title = "Booking approved"
		msg.Message = fmt.Sprintf("Your booking of %s on %s has been approved.", roomName, when)
		msg.Type = TypeBookingApproved
	} else {
		msg.Title = "Booking rejected"
		msg.Message = fmt.Sprintf("Your booking of %s on %s has been rejected.", roomName, when)
		if adminNote != "" {
			msg.Message += " Reason: " + adminNote
		}
		msg.Type = TypeBookingRejected
	}
	return n.Notifications.Insert(ctx, msg)
}
