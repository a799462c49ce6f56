// Package validation checks booking drafts against the facility's
// acceptance rules. Validation is pure: the current instant is passed
// in by the caller, nothing here touches the network, the database or
// the wall clock, and a given (draft, now) pair always produces the
// same result. Errors are collected exhaustively so a caller sees
// every failing field in one response rather than only the first.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/childcare-booking/internal/model"
)

// Booking acceptance rules. Window bounds are inclusive on both ends;
// the age upper bound is exclusive (a child turning thirteen on the
// validation day is no longer eligible) while the lower bound is
// inclusive (a child exactly one month old is eligible).
const (
	MinLeadTime  = 6 * time.Hour // start_at must be at least this far ahead
	MaxLeadDays  = 60            // and no more than this many days ahead
	MinChildren  = 1
	MaxChildren  = 4
	MinAgeMonths = 1
	MaxAgeYears  = 13
)

// dateLayout is the calendar-date format for children's dates of birth.
const dateLayout = "2006-01-02"

// ChildDraft is one unvalidated roster entry as submitted by a caller.
type ChildDraft struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
}

// Draft is the unvalidated input to the booking pipeline. Timestamps
// arrive as strings and are only parsed during validation.
type Draft struct {
	CustomerName  string       `json:"customer_name"`
	CustomerPhone string       `json:"customer_phone"`
	Address       string       `json:"address"`
	StartAt       string       `json:"start_at"`
	EndAt         string       `json:"end_at,omitempty"`
	Children      []ChildDraft `json:"children"`
}

// Booking is an accepted, normalized draft ready for provisioning.
type Booking struct {
	CustomerName  string
	CustomerPhone string
	Address       string
	StartAt       time.Time
	EndAt         *time.Time
	Children      []model.Child
}

// Errors maps a field path (e.g. "children.1.date_of_birth") to one or
// more human-readable messages. An empty map means the draft was
// accepted.
type Errors map[string][]string

// Add appends a message to the given field path.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// ValidateDraft checks every rule against the draft and the supplied
// instant. On acceptance it returns the normalized booking and an
// empty error map; otherwise the booking is nil and the map holds an
// entry per failing field.
func ValidateDraft(d Draft, now time.Time) (*Booking, Errors) {
	errs := Errors{}

	if strings.TrimSpace(d.CustomerName) == "" {
		errs.Add("customer_name", "customer_name is required")
	}
	if strings.TrimSpace(d.CustomerPhone) == "" {
		errs.Add("customer_phone", "customer_phone is required")
	}
	if strings.TrimSpace(d.Address) == "" {
		errs.Add("address", "address is required")
	}

	startAt := validateStartAt(d.StartAt, now, errs)
	endAt := validateEndAt(d.EndAt, errs)
	children := validateChildren(d.Children, now, errs)

	if len(errs) > 0 {
		return nil, errs
	}
	return &Booking{
		CustomerName:  strings.TrimSpace(d.CustomerName),
		CustomerPhone: strings.TrimSpace(d.CustomerPhone),
		Address:       strings.TrimSpace(d.Address),
		StartAt:       startAt,
		EndAt:         endAt,
		Children:      children,
	}, errs
}

// validateStartAt parses the start timestamp and enforces the booking
// window: at least MinLeadTime after now and at most MaxLeadDays days
// after now, both boundaries inclusive.
func validateStartAt(raw string, now time.Time, errs Errors) time.Time {
	if strings.TrimSpace(raw) == "" {
		errs.Add("start_at", "start_at is required")
		return time.Time{}
	}
	t, err := parseTimestamp(raw)
	if err != nil {
		errs.Add("start_at", "start_at must be a valid timestamp")
		return time.Time{}
	}
	if t.Before(now.Add(MinLeadTime)) {
		errs.Add("start_at", fmt.Sprintf("start_at must be at least %d hours in the future", int(MinLeadTime.Hours())))
	}
	if t.After(now.AddDate(0, 0, MaxLeadDays)) {
		errs.Add("start_at", fmt.Sprintf("start_at must be no more than %d days in the future", MaxLeadDays))
	}
	return t
}

// validateEndAt parses the optional end timestamp. No window rule
// applies to it; it only has to be well formed when present.
func validateEndAt(raw string, errs Errors) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, err := parseTimestamp(raw)
	if err != nil {
		errs.Add("end_at", "end_at must be a valid timestamp")
		return nil
	}
	return &t
}

// validateChildren enforces the roster size and, per child, the name
// and date-of-birth rules. Per-child failures are reported under the
// indexed path, e.g. "children.2.name".
func validateChildren(children []ChildDraft, now time.Time, errs Errors) []model.Child {
	if len(children) < MinChildren || len(children) > MaxChildren {
		errs.Add("children", fmt.Sprintf("children must contain between %d and %d entries", MinChildren, MaxChildren))
		return nil
	}
	out := make([]model.Child, 0, len(children))
	for i, child := range children {
		if strings.TrimSpace(child.Name) == "" {
			errs.Add(fmt.Sprintf("children.%d.name", i), "name is required")
		}
		field := fmt.Sprintf("children.%d.date_of_birth", i)
		if strings.TrimSpace(child.DateOfBirth) == "" {
			errs.Add(field, "date_of_birth is required")
			continue
		}
		dob, err := time.ParseInLocation(dateLayout, strings.TrimSpace(child.DateOfBirth), time.UTC)
		if err != nil {
			errs.Add(field, "date_of_birth must be a valid date (YYYY-MM-DD)")
			continue
		}
		// Calendar arithmetic, not duration division: a child is one
		// month old exactly one calendar month after birth.
		if dob.AddDate(0, MinAgeMonths, 0).After(now) {
			errs.Add(field, fmt.Sprintf("child must be at least %d month old", MinAgeMonths))
		}
		if !dob.AddDate(MaxAgeYears, 0, 0).After(now) {
			errs.Add(field, fmt.Sprintf("child must be younger than %d years old", MaxAgeYears))
		}
		out = append(out, model.Child{
			Name:        strings.TrimSpace(child.Name),
			DateOfBirth: dob.Format(dateLayout),
		})
	}
	return out
}

// parseTimestamp accepts RFC3339 as the primary format and the legacy
// "YYYY-MM-DD HH:MM:SS" form (interpreted as UTC) that older clients
// still send.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
