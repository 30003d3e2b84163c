// ABOUTME: Stateless intent classification for bot messages via ordered pattern rules
// ABOUTME: First matching rule wins; unmatched text is CategoryNone, never an error

package intent

import "regexp"

// Category is the semantic intent of a bot message. It drives rendering
// decisions (confirmation badges) and the outcome recorded for a closed
// conversation; it never mutates session state.
type Category int

const (
	CategoryNone Category = iota
	CategoryReservationCreated
	CategoryReservationChanged
	CategoryReservationCancelled
	CategoryOfficeHourPending
	CategoryOfficeHourConfirmed
)

// String returns the category name for logging.
func (c Category) String() string {
	switch c {
	case CategoryReservationCreated:
		return "reservation_created"
	case CategoryReservationChanged:
		return "reservation_changed"
	case CategoryReservationCancelled:
		return "reservation_cancelled"
	case CategoryOfficeHourPending:
		return "office_hour_pending"
	case CategoryOfficeHourConfirmed:
		return "office_hour_confirmed"
	default:
		return "none"
	}
}

// Outcome maps a terminal category to the conversation outcome value the
// backend stores. Non-terminal categories return false.
func (c Category) Outcome() (string, bool) {
	switch c {
	case CategoryReservationCreated, CategoryReservationChanged:
		return "Reserved Room", true
	case CategoryReservationCancelled:
		return "Cancelled Request", true
	case CategoryOfficeHourConfirmed:
		return "Submitted OH Ticket", true
	default:
		return "", false
	}
}

// rule pairs a predicate with the category it tags.
type rule struct {
	pattern  *regexp.Regexp
	category Category
}

// Rules are evaluated in order; the first match wins, so the more specific
// patterns (updated/cancelled reservations) come before the generic reserved
// confirmation.
var rules = []rule{
	{regexp.MustCompile(`(?i)updated\s+(your\s+)?reservation`), CategoryReservationChanged},
	{regexp.MustCompile(`(?i)reservation\s+(has\s+been\s+)?cancelled`), CategoryReservationCancelled},
	{regexp.MustCompile(`(?i)cancelled\s+(your\s+)?reservation`), CategoryReservationCancelled},
	{regexp.MustCompile(`(?i)\breserved\b`), CategoryReservationCreated},
	{regexp.MustCompile(`(?i)office\s+hours?\s+ticket\s+(has\s+been\s+)?submitted`), CategoryOfficeHourConfirmed},
	{regexp.MustCompile(`(?i)submitted\s+(your\s+)?(oh|office\s+hours?)\s+ticket`), CategoryOfficeHourConfirmed},
	{regexp.MustCompile(`(?i)(oh|office\s+hours?)\s+ticket\s+is\s+pending`), CategoryOfficeHourPending},
	{regexp.MustCompile(`(?i)waiting\s+for\s+a\s+ta\b`), CategoryOfficeHourPending},
}

// Classify tags text with its semantic category. The function is total:
// unmatched text yields CategoryNone.
func Classify(text string) Category {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.category
		}
	}
	return CategoryNone
}
