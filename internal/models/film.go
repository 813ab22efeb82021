package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Film represents a movie record in the catalogue.
type Film struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	ReleaseDate Date    `json:"releaseDate" db:"release_date"`
	Duration    int     `json:"duration" db:"duration"`
	Mpa         *Mpa    `json:"mpa,omitempty" db:"mpa_id"`
	Genres      []Genre `json:"genres" db:"-"`
	Likes       int     `json:"likes" db:"likes"`
}

// Mpa is a Motion Picture Association rating.
type Mpa struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Genre classifies a film.
type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name,omitempty" db:"name"`
}

// Date is a calendar date encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given calendar day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("date must match %s: %w", DateLayout, err)
	}
	d.Time = t
	return nil
}
