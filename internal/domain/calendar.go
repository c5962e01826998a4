package domain

import "time"

// CalendarEvent es la proyeccion de un VEVENT devuelta por /calendar-ics.
type CalendarEvent struct {
	UID         string    `json:"uid"`
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}
