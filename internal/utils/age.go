// Package utils holds small presentation helpers.
package utils

import (
	"fmt"
	"time"
)

// AgeInWords renders a child's age for display, e.g. "8 years old" or
// "5 months old". Children younger than a year are described in
// months. This is presentation only: the validation layer does its own
// calendar arithmetic and must never depend on this function, so that
// display rounding can never influence acceptance rules. A date that
// fails to parse renders as an empty string rather than erroring, as
// the value was validated on the way in.
func AgeInWords(dateOfBirth string, now time.Time) string {
	dob, err := time.ParseInLocation("2006-01-02", dateOfBirth, time.UTC)
	if err != nil {
		return ""
	}
	years := wholeYears(dob, now)
	if years >= 1 {
		return fmt.Sprintf("%d %s old", years, plural("year", years))
	}
	months := wholeMonths(dob, now)
	return fmt.Sprintf("%d %s old", months, plural("month", months))
}

// wholeYears counts completed years between dob and now.
func wholeYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

// wholeMonths counts completed calendar months between dob and now.
func wholeMonths(dob, now time.Time) int {
	months := (now.Year()-dob.Year())*12 + int(now.Month()) - int(dob.Month())
	if now.Day() < dob.Day() {
		months--
	}
	return months
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
