package model

import (
	"errors"
	"strings"
)

var (
	ErrNameRequired = errors.New("name cannot be empty")
	ErrInvalidDate  = errors.New("invalid date format, use YYYY-MM-DD")
	ErrDuplicate    = errors.New("a festival with this name and date already exists")
)

// Record is one saved festival. Field order matches the on-disk JSON layout:
// name, date, notes.
type Record struct {
	Name string `json:"name"`
	// Date is kept exactly as stored, in YYYY-MM-DD form. Files edited by hand
	// may carry unparsable values; those records are kept and surface at the
	// end of sorted listings.
	Date  string `json:"date"`
	Notes string `json:"notes"`
}

// SameEvent reports whether r and other describe the same festival: equal
// dates and names that match case-insensitively.
func (r Record) SameEvent(other Record) bool {
	return r.Date == other.Date && strings.EqualFold(r.Name, other.Name)
}

// ContainsEvent reports whether any record in records is the same festival
// as r.
func ContainsEvent(records []Record, r Record) bool {
	for _, existing := range records {
		if existing.SameEvent(r) {
			return true
		}
	}
	return false
}
