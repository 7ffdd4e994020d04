// Package ical writes and reads iCalendar (RFC 5545) files.
//
//	cal := ical.New("Meetups")
//	cal.Add(ical.Event{
//	    Summary:  "Go meetup",
//	    Start:    time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC),
//	    End:      time.Date(2024, 5, 2, 20, 0, 0, 0, time.UTC),
//	    Location: "Room 4",
//	})
//	cal.Add(ical.Event{Summary: "Holiday", Start: day, AllDay: true})
//
//	var buf bytes.Buffer
//	if err := cal.Encode(&buf); err != nil {
//	    return err
//	}
//	return c.Blob(http.StatusOK, ical.ContentType, buf.Bytes())
//
// Events without a UID get a name-based UUID built from their URL, or from
// summary and start, so subscribers keep matching them between downloads.
package ical
