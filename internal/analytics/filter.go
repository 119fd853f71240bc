package analytics

import (
	"fmt"
	"strings"
	"time"

	"valkiria-backend-go/internal/models"
)

const dayLayout = "2006-01-02"

// Filter selects attendance logs. Empty fields do not constrain. Date matches
// one calendar day; DateFrom and DateTo are inclusive whole days.
type Filter struct {
	Date         string `json:"date,omitempty"`
	DateFrom     string `json:"dateFrom,omitempty"`
	DateTo       string `json:"dateTo,omitempty"`
	SedeID       string `json:"sedeId,omitempty"`
	ModeloID     string `json:"modeloId,omitempty"`
	PlataformaID string `json:"plataformaId,omitempty"`
}

// LastDays returns a filter covering the `days` calendar days up to now.
func LastDays(now time.Time, days int) Filter {
	return Filter{
		DateFrom: now.AddDate(0, 0, -days).Format(dayLayout),
		DateTo:   now.Format(dayLayout),
	}
}

type window struct {
	day, from, to          time.Time
	hasDay, hasFrom, hasTo bool
}

func (f Filter) window() (window, error) {
	var w window
	if strings.TrimSpace(f.Date) != "" {
		t, err := ParseDate(f.Date)
		if err != nil {
			return w, fmt.Errorf("date: %w", err)
		}
		w.day, w.hasDay = startOfDay(t), true
	}
	if strings.TrimSpace(f.DateFrom) != "" {
		t, err := ParseDate(f.DateFrom)
		if err != nil {
			return w, fmt.Errorf("dateFrom: %w", err)
		}
		w.from, w.hasFrom = startOfDay(t), true
	}
	if strings.TrimSpace(f.DateTo) != "" {
		t, err := ParseDate(f.DateTo)
		if err != nil {
			return w, fmt.Errorf("dateTo: %w", err)
		}
		w.to, w.hasTo = endOfDay(t), true
	}
	return w, nil
}

// Validate reports whether every date in the filter parses.
func (f Filter) Validate() error {
	_, err := f.window()
	return err
}

// Apply returns the logs matching f, in their original order.
func Apply(logs []models.AttendanceLog, f Filter) ([]models.AttendanceLog, error) {
	w, err := f.window()
	if err != nil {
		return nil, err
	}
	matched := make([]models.AttendanceLog, 0, len(logs))
	for _, item := range logs {
		if f.matches(item, w) {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (f Filter) matches(item models.AttendanceLog, w window) bool {
	if f.SedeID != "" && item.SedeID != f.SedeID {
		return false
	}
	if f.ModeloID != "" && item.ModeloID != f.ModeloID {
		return false
	}
	if f.PlataformaID != "" && item.PlataformaID != f.PlataformaID {
		return false
	}
	if !w.hasDay && !w.hasFrom && !w.hasTo {
		return true
	}
	at, err := ParseDate(item.Date)
	if err != nil {
		return false
	}
	if w.hasDay && !startOfDay(at).Equal(w.day) {
		return false
	}
	if w.hasFrom && at.Before(w.from) {
		return false
	}
	if w.hasTo && at.After(w.to) {
		return false
	}
	return true
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate reads a calendar date or a timestamp in local time. Timestamps
// that carry a zone are converted to local time first.
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if t, err := time.ParseInLocation(dayLayout, value, time.Local); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t.In(time.Local), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
