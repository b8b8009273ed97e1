// Package duration parses human-readable token lifetimes such as "1d 3h 25m".
//
// Components must appear in day, hour, minute order; each is optional but at
// least one must be non-zero. Days are capped at 730 so no token can outlive
// two years.
package duration

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Bounds for each component.
const (
	MaxDays    = 730
	MaxHours   = 23
	MaxMinutes = 59
)

// ErrInvalidDuration is matched by every *Error returned from Parse.
var ErrInvalidDuration = errors.New("invalid duration")

// Reason classifies a parse failure.
type Reason string

const (
	ReasonSyntax     Reason = "syntax"
	ReasonNoUnit     Reason = "no_unit"
	ReasonOutOfRange Reason = "out_of_range"
)

// Error describes why a duration string was rejected. Field is set for
// out-of-range failures.
type Error struct {
	Reason Reason
	Field  string
	Input  string
}

func (e *Error) Error() string {
	switch e.Reason {
	case ReasonNoUnit:
		return "invalid duration: at least one of days, hours or minutes must be given"
	case ReasonOutOfRange:
		switch e.Field {
		case "days":
			return fmt.Sprintf("invalid duration: days must be between 0 and %d", MaxDays)
		case "hours":
			return fmt.Sprintf("invalid duration: hours must be between 0 and %d", MaxHours)
		default:
			return fmt.Sprintf("invalid duration: minutes must be between 0 and %d", MaxMinutes)
		}
	default:
		return fmt.Sprintf("invalid duration %q: use combinations like \"1d\", \"3h\", \"25m\" or \"1d 3h 25m\"", e.Input)
	}
}

// Is lets errors.Is(err, ErrInvalidDuration) match.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidDuration
}

// Spec is a normalized day/hour/minute triple.
type Spec struct {
	Days    int
	Hours   int
	Minutes int
}

// Duration converts the spec to a time.Duration.
func (s Spec) Duration() time.Duration {
	return time.Duration(s.Days)*24*time.Hour +
		time.Duration(s.Hours)*time.Hour +
		time.Duration(s.Minutes)*time.Minute
}

// String renders the spec in the same compact form Parse accepts.
func (s Spec) String() string {
	out := ""
	if s.Days > 0 {
		out += strconv.Itoa(s.Days) + "d"
	}
	if s.Hours > 0 {
		if out != "" {
			out += " "
		}
		out += strconv.Itoa(s.Hours) + "h"
	}
	if s.Minutes > 0 {
		if out != "" {
			out += " "
		}
		out += strconv.Itoa(s.Minutes) + "m"
	}
	return out
}

// Three digits are allowed for days so the MaxDays bound, not the grammar,
// decides the ceiling.
var pattern = regexp.MustCompile(`^(?:(\d{1,3})d\s*)?(?:(\d{1,2})h\s*)?(?:(\d{1,2})m\s*)?$`)

// Parse validates text and returns its normalized components.
func Parse(text string) (Spec, error) {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return Spec{}, &Error{Reason: ReasonSyntax, Input: text}
	}

	spec := Spec{
		Days:    atoi(m[1]),
		Hours:   atoi(m[2]),
		Minutes: atoi(m[3]),
	}

	if spec.Days == 0 && spec.Hours == 0 && spec.Minutes == 0 {
		return Spec{}, &Error{Reason: ReasonNoUnit, Input: text}
	}
	if spec.Days > MaxDays {
		return Spec{}, &Error{Reason: ReasonOutOfRange, Field: "days", Input: text}
	}
	if spec.Hours > MaxHours {
		return Spec{}, &Error{Reason: ReasonOutOfRange, Field: "hours", Input: text}
	}
	if spec.Minutes > MaxMinutes {
		return Spec{}, &Error{Reason: ReasonOutOfRange, Field: "minutes", Input: text}
	}
	return spec, nil
}

// atoi is only fed regexp-validated digit groups.
func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
