package resultparser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cdellis/barscan"
)

// CalendarResult is a parsed iCalendar VEVENT.
type CalendarResult struct {
	Summary     string
	Start       time.Time
	StartAllDay bool
	End         time.Time
	HasEnd      bool
	EndAllDay   bool
	Location    string
	Organizer   string
	Attendees   []string
	Description string
}

var rfc2445Duration = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

type calendarParser struct{}

// Parse recognizes a bare VEVENT block, as produced by QR/Data Matrix
// calendar-event barcodes: BEGIN:VEVENT, one SUMMARY/DTSTART/DTEND or
// DURATION/LOCATION/ORGANIZER/ATTENDEE/DESCRIPTION line per field, END:VEVENT.
// Per the date contract: an 8-digit date is UTC midnight, a trailing Z means
// UTC, and a bare local timestamp is left as a local time (callers apply
// their own zone).
func (calendarParser) Parse(result *barscan.Result) (*ParsedResult, bool) {
	text := result.Text
	if !strings.Contains(text, "BEGIN:VEVENT") {
		return nil, false
	}
	lines := splitICalLines(text)

	var summary, dtstart, dtend, duration, location, organizer, description string
	var attendees []string
	inEvent := false
	for _, line := range lines {
		switch {
		case line == "BEGIN:VEVENT":
			inEvent = true
		case line == "END:VEVENT":
			inEvent = false
		case !inEvent:
			continue
		case strings.HasPrefix(line, "SUMMARY:"):
			summary = strings.TrimPrefix(line, "SUMMARY:")
		case strings.HasPrefix(line, "DTSTART:"):
			dtstart = strings.TrimPrefix(line, "DTSTART:")
		case strings.HasPrefix(line, "DTEND:"):
			dtend = strings.TrimPrefix(line, "DTEND:")
		case strings.HasPrefix(line, "DURATION:"):
			duration = strings.TrimPrefix(line, "DURATION:")
		case strings.HasPrefix(line, "LOCATION:"):
			location = strings.TrimPrefix(line, "LOCATION:")
		case strings.HasPrefix(line, "ORGANIZER:"):
			organizer = strings.TrimPrefix(line, "ORGANIZER:")
		case strings.HasPrefix(line, "ATTENDEE:"):
			attendees = append(attendees, strings.TrimPrefix(line, "ATTENDEE:"))
		case strings.HasPrefix(line, "DESCRIPTION:"):
			description = strings.TrimPrefix(line, "DESCRIPTION:")
		}
	}
	if dtstart == "" {
		return nil, false
	}

	start, startAllDay, ok := parseICalDate(dtstart)
	if !ok {
		return nil, false
	}

	cr := &CalendarResult{
		Summary:     summary,
		Start:       start,
		StartAllDay: startAllDay,
		Location:    location,
		Organizer:   organizer,
		Attendees:   attendees,
		Description: description,
	}

	switch {
	case dtend != "":
		end, endAllDay, ok := parseICalDate(dtend)
		if !ok {
			return nil, false
		}
		cr.End = end
		cr.EndAllDay = endAllDay
		cr.HasEnd = true
	case duration != "":
		d, ok := parseRFC2445Duration(duration)
		if !ok {
			return nil, false
		}
		cr.End = start.Add(d)
		cr.HasEnd = true
	}

	return &ParsedResult{Kind: TypeCalendar, DisplayResult: summary, Calendar: cr}, true
}

// splitICalLines accepts CRLF, LF, or a single logical line separated by
// literal "\r\n" (as barcode payloads commonly carry it pre-escaped).
func splitICalLines(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	var out []string
	for _, l := range strings.Split(normalized, "\n") {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// parseICalDate implements the three DTSTART/DTEND shapes named in the date
// handling contract: YYYYMMDD (UTC midnight, all-day), YYYYMMDDTHHMMSSZ
// (UTC), and YYYYMMDDTHHMMSS (parsed as UTC; callers that need the user's
// local zone must re-anchor this return value themselves).
func parseICalDate(s string) (time.Time, bool, bool) {
	switch len(s) {
	case 8:
		t, err := time.ParseInLocation("20060102", s, time.UTC)
		return t, true, err == nil
	case 16:
		if s[8] != 'T' || s[15] != 'Z' {
			return time.Time{}, false, false
		}
		t, err := time.ParseInLocation("20060102T150405Z", s, time.UTC)
		return t, false, err == nil
	case 15:
		if s[8] != 'T' {
			return time.Time{}, false, false
		}
		t, err := time.ParseInLocation("20060102T150405", s, time.UTC)
		return t, false, err == nil
	default:
		return time.Time{}, false, false
	}
}

// parseRFC2445Duration parses a "P1DT2H3M4S"-style ISO-8601/RFC2445
// duration into a time.Duration.
func parseRFC2445Duration(s string) (time.Duration, bool) {
	m := rfc2445Duration.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	weeks := parseDurationField(m[1])
	days := parseDurationField(m[2])
	hours := parseDurationField(m[3])
	minutes := parseDurationField(m[4])
	seconds := parseDurationField(m[5])

	total := time.Duration(weeks)*7*24*time.Hour +
		time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
	return total, true
}

func parseDurationField(s string) int64 {
	if s == "" {
		return 0
	}
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
