// Package calendar convierte documentos iCalendar en eventos planos.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/sosodev/duration"

	"chronobus-api/internal/domain"
)

var (
	// ErrNoStart indica un VEVENT sin DTSTART interpretable.
	ErrNoStart = errors.New("event without start")
	// ErrUnterminatedEvent indica un VEVENT abierto sin END:VEVENT.
	ErrUnterminatedEvent = errors.New("event not terminated")
	ErrBadDuration       = errors.New("invalid event duration")
)

// Parse lee un calendario ICS y devuelve sus VEVENT en orden de aparicion.
func Parse(r io.Reader) ([]domain.CalendarEvent, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	vevents := cal.Events()
	events := make([]domain.CalendarEvent, 0, len(vevents))
	for i, ev := range vevents {
		if ev == nil {
			return nil, fmt.Errorf("event %d: %w", i, ErrUnterminatedEvent)
		}
		out, err := convert(ev)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, out)
	}
	return events, nil
}

func convert(ev *ics.VEvent) (domain.CalendarEvent, error) {
	start, err := ev.GetStartAt()
	if err != nil {
		return domain.CalendarEvent{}, fmt.Errorf("%w: %v", ErrNoStart, err)
	}
	end, err := endOf(ev, start)
	if err != nil {
		return domain.CalendarEvent{}, err
	}
	return domain.CalendarEvent{
		UID:         ev.Id(),
		Title:       propValue(ev, ics.ComponentPropertySummary),
		Start:       start.UTC(),
		End:         end.UTC(),
		Location:    propValue(ev, ics.ComponentPropertyLocation),
		Description: propValue(ev, ics.ComponentPropertyDescription),
	}, nil
}

func propValue(ev *ics.VEvent, prop ics.ComponentProperty) string {
	p := ev.GetProperty(prop)
	if p == nil {
		return ""
	}
	return p.Value
}

// endOf resuelve el fin del evento: DTEND, luego DTSTART+DURATION, luego un
// dia completo para eventos VALUE=DATE y, sin nada de eso, el propio inicio.
func endOf(ev *ics.VEvent, start time.Time) (time.Time, error) {
	if end, err := ev.GetEndAt(); err == nil {
		return end, nil
	}
	if raw := propValue(ev, ics.ComponentProperty(ics.PropertyDuration)); raw != "" {
		d, err := duration.Parse(strings.TrimSpace(raw))
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadDuration, err)
		}
		return addDuration(start, d), nil
	}
	if isAllDay(ev.GetProperty(ics.ComponentPropertyDtStart)) {
		return start.AddDate(0, 0, 1), nil
	}
	return start, nil
}

// Semanas y dias son nominales (respetan cambios de horario); el resto es exacto.
func addDuration(start time.Time, d *duration.Duration) time.Time {
	days := int(d.Weeks*7 + d.Days)
	exact := (&duration.Duration{Hours: d.Hours, Minutes: d.Minutes, Seconds: d.Seconds}).ToTimeDuration()
	if d.Negative {
		days, exact = -days, -exact
	}
	return start.AddDate(0, 0, days).Add(exact)
}

func isAllDay(p *ics.IANAProperty) bool {
	if p == nil {
		return false
	}
	for _, v := range p.ICalParameters["VALUE"] {
		if strings.EqualFold(v, "DATE") {
			return true
		}
	}
	return len(strings.TrimSpace(p.Value)) == len("20060102")
}
