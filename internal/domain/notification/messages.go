package notification

import (
	"fmt"

	"github.com/parkspot/parkspot-api/internal/pkg/events"
)

// Template is the driver-facing text for an event type.
type Template struct {
	Title string
	Body  string
}

// driverTemplates lists the events that reach the driver's device.
var driverTemplates = map[events.Type]Template{
	events.BookingConfirmed: {Title: "Booking confirmed", Body: "Your slot at %s is reserved."},
	events.BookingDeleted:   {Title: "Booking removed", Body: "The owner of %s removed your booking."},
	events.SessionStarted:   {Title: "Parking started", Body: "You have checked in at %s."},
	events.SessionEnded:     {Title: "Parking ended", Body: "You have checked out of %s. Thanks for parking!"},
}

// Render fills the template for e. ok is false for events drivers are not told about.
func Render(e events.Event) (title, body string, ok bool) {
	t, ok := driverTemplates[e.Type]
	if !ok {
		return "", "", false
	}
	name := e.SpotName
	if name == "" {
		name = "your parking spot"
	}
	return t.Title, fmt.Sprintf(t.Body, name), true
}
