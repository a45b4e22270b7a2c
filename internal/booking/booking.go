package booking

import (
	"fmt"
	"time"
)

type Booking struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"userId"`
	RoomID               string    `json:"roomId"`
	StartTime            time.Time `json:"startTime"`
	EndTime              time.Time `json:"endTime"`
	Purpose              string    `json:"purpose"`
	Attendees            int       `json:"attendees"`
	DocumentURL          string    `json:"documentUrl,omitempty"`
	DocumentName         string    `json:"documentName,omitempty"`
	ApprovedDocumentURL  string    `json:"approvedDocumentUrl,omitempty"`
	ApprovedDocumentName string    `json:"approvedDocumentName,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	AdminNote            string    `json:"adminNote,omitempty"`
	Status               Status    `json:"status"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	// Display fields joined from users/rooms.
	UserName string `json:"userName,omitempty"`
	RoomName string `json:"roomName,omitempty"`
}

// RoomInfo is the slice of a room the admission service needs.
type RoomInfo struct {
	ID       string
	Name     string
	Capacity int
}

// Conflict describes the active booking that blocks a requested window.
type Conflict struct {
	BookingID    string
	OccupantName string
	StartTime    time.Time
	EndTime      time.Time
}

// Window renders the occupied time range for user display, e.g.
// "Fri, 10 Jan 2025 08:00–10:00".
func (c *Conflict) Window() string {
	const day = "Mon, 2 Jan 2006"
	const clock = "15:04"

	s, e := c.StartTime, c.EndTime
	if s.Year() == e.Year() && s.YearDay() == e.YearDay() {
		return fmt.Sprintf("%s %s–%s", s.Format(day), s.Format(clock), e.Format(clock))
	}
	return fmt.Sprintf("%s %s – %s %s", s.Format(day), s.Format(clock), e.Format(day), e.Format(clock))
}
