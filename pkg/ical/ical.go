package ical

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// ContentType is the MIME type of an encoded calendar.
const ContentType = "text/calendar; charset=utf-8"

// DefaultProductID identifies the generator in PRODID.
const DefaultProductID = "-//UltraLight//Calendar//EN"

// Calendar is a named collection of events.
type Calendar struct {
	Stamp     time.Time
	Name      string
	ProductID string
	Events    []Event
}

// Event is a VEVENT. AllDay events use Start and End as dates; End is
// exclusive and defaults to the day after Start.
type Event struct {
	Start       time.Time
	End         time.Time
	Created     time.Time
	Modified    time.Time
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Organizer   string
	Attendees   []string
	AllDay      bool
}

// New creates an empty calendar.
func New(name string) *Calendar {
	return &Calendar{Name: name, ProductID: DefaultProductID}
}

// Add appends events.
func (c *Calendar) Add(events ...Event) *Calendar {
	c.Events = append(c.Events, events...)
	return c
}

// Encode validates the calendar and writes it in iCalendar format.
func (c *Calendar) Encode(w io.Writer) error {
	cal, err := c.build()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}

// String returns the encoded calendar, or an empty string if it is invalid.
func (c *Calendar) String() string {
	var sb strings.Builder
	if err := c.Encode(&sb); err != nil {
		return ""
	}
	return sb.String()
}

func (c *Calendar) build() (*ics.Calendar, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	prodID := c.ProductID
	if prodID == "" {
		prodID = DefaultProductID
	}
	cal.SetProductId(prodID)
	if c.Name != "" {
		cal.SetXWRCalName(c.Name)
	}

	stamp := c.Stamp
	if stamp.IsZero() {
		stamp = time.Now()
	}

	var errs []error
	for i, ev := range c.Events {
		if err := ev.validate(); err != nil {
			errs = append(errs, fmt.Errorf("event %d: %w", i, err))
			continue
		}
		ev.apply(cal.AddEvent(ev.uid()), stamp.UTC())
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cal, nil
}

func (e Event) validate() error {
	switch {
	case e.Start.IsZero():
		return ErrNoStart
	case strings.TrimSpace(e.Summary) == "":
		return ErrNoSummary
	case !e.End.IsZero() && e.End.Before(e.Start):
		return ErrInvalidRange
	}
	return nil
}

// uid returns the event UID, deriving a stable one from the URL, summary
// and start when none is set.
func (e Event) uid() string {
	if e.UID != "" {
		return e.UID
	}
	name := e.URL + "|" + e.Summary + "|" + e.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

func (e Event) apply(ev *ics.VEvent, stamp time.Time) {
	ev.SetDtStampTime(stamp)
	ev.SetSummary(e.Summary)

	if e.AllDay {
		end := e.End
		if end.IsZero() || !end.After(e.Start) {
			end = e.Start.AddDate(0, 0, 1)
		}
		ev.SetAllDayStartAt(e.Start)
		ev.SetAllDayEndAt(end)
	} else {
		ev.SetStartAt(e.Start)
		if !e.End.IsZero() {
			ev.SetEndAt(e.End)
		}
	}

	if !e.Created.IsZero() {
		ev.SetCreatedTime(e.Created)
	}
	if !e.Modified.IsZero() {
		ev.SetModifiedAt(e.Modified)
	}
	if e.Description != "" {
		ev.SetDescription(e.Description)
	}
	if e.Location != "" {
		ev.SetLocation(e.Location)
	}
	if e.URL != "" {
		ev.SetURL(e.URL)
	}
	if e.Organizer != "" {
		ev.SetOrganizer(mailto(e.Organizer))
	}
	for _, a := range e.Attendees {
		ev.AddAttendee(mailto(a))
	}
}

func mailto(addr string) string {
	if strings.HasPrefix(strings.ToLower(addr), "mailto:") {
		return addr
	}
	return "mailto:" + addr
}

// Decode parses an iCalendar stream. Properties without a matching Event
// field are ignored.
func Decode(r io.Reader) (*Calendar, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	c := &Calendar{}
	for _, p := range cal.CalendarProperties {
		switch ics.Property(p.IANAToken) {
		case ics.PropertyXWRCalName:
			c.Name = p.Value
		case ics.PropertyProductId:
			c.ProductID = p.Value
		}
	}

	for _, ev := range cal.Events() {
		e, err := decodeEvent(ev)
		if err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		c.Events = append(c.Events, e)
	}
	return c, nil
}

func decodeEvent(ev *ics.VEvent) (Event, error) {
	e := Event{
		UID:         ev.Id(),
		Summary:     value(ev, ics.ComponentPropertySummary),
		Description: value(ev, ics.ComponentPropertyDescription),
		Location:    value(ev, ics.ComponentPropertyLocation),
		URL:         value(ev, ics.ComponentPropertyUrl),
		Organizer:   strings.TrimPrefix(value(ev, ics.ComponentPropertyOrganizer), "mailto:"),
	}
	for _, a := range ev.Attendees() {
		e.Attendees = append(e.Attendees, strings.TrimPrefix(a.Value, "mailto:"))
	}

	var err error
	if start := ev.GetProperty(ics.ComponentPropertyDtStart); start != nil && slices.Contains(start.ICalParameters["VALUE"], "DATE") {
		e.AllDay = true
		if e.Start, err = ev.GetAllDayStartAt(); err != nil {
			return e, err
		}
		if ev.GetProperty(ics.ComponentPropertyDtEnd) != nil {
			if e.End, err = ev.GetAllDayEndAt(); err != nil {
				return e, err
			}
		}
		return e, nil
	}

	if e.Start, err = ev.GetStartAt(); err != nil {
		return e, err
	}
	if ev.GetProperty(ics.ComponentPropertyDtEnd) != nil {
		if e.End, err = ev.GetEndAt(); err != nil {
			return e, err
		}
	}
	return e, nil
}

func value(ev *ics.VEvent, p ics.ComponentProperty) string {
	if prop := ev.GetProperty(p); prop != nil {
		return prop.Value
	}
	return ""
}
