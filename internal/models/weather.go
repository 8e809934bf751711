package models

import (
	"fmt"
	"strings"
	"time"
)

// DayOffset is the number of days from today the user asked about.
type DayOffset int

const (
	Today DayOffset = iota
	Tomorrow
	DayAfterTomorrow
)

func (o DayOffset) Valid() bool {
	return o >= Today && o <= DayAfterTomorrow
}

func (o DayOffset) String() string {
	switch o {
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	case DayAfterTomorrow:
		return "day-after"
	default:
		return fmt.Sprintf("DayOffset(%d)", int(o))
	}
}

var dayOffsetWords = map[string]DayOffset{
	"сегодня":            Today,
	"today":              Today,
	"завтра":             Tomorrow,
	"tomorrow":           Tomorrow,
	"послезавтра":        DayAfterTomorrow,
	"day-after":          DayAfterTomorrow,
	"day after tomorrow": DayAfterTomorrow,
}

// ParseDayOffset recognises the date choices offered on the keyboard,
// case-insensitively.
func ParseDayOffset(text string) (DayOffset, bool) {
	offset, ok := dayOffsetWords[strings.ToLower(strings.TrimSpace(text))]
	return offset, ok
}

// Date is a calendar day without a time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// TargetDate returns the calendar day offset days after now, in now's location.
func TargetDate(now time.Time, offset DayOffset) Date {
	return DateOf(now.AddDate(0, 0, int(offset)))
}

// Format renders the date as dd.mm.yyyy.
func (d Date) Format() string {
	return fmt.Sprintf("%02d.%02d.%04d", d.Day, int(d.Month), d.Year)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ForecastEntry is one 3-hour forecast slot as returned by the provider.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Description string    `json:"description"`
	WindSpeed   float64   `json:"wind_speed"`
	Humidity    int       `json:"humidity"`
	Rain3h      *float64  `json:"rain_3h,omitempty"`
	Snow3h      *float64  `json:"snow_3h,omitempty"`
}

type WeatherSnapshot struct {
	Date        string  `json:"date"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feels_like"`
	Description string  `json:"description"`
	WindSpeed   float64 `json:"wind_speed"`
	Humidity    int     `json:"humidity"`
	Rain        bool    `json:"rain"`
	Snow        bool    `json:"snow"`
}

type Recommendation struct {
	City     string          `json:"city"`
	Offset   DayOffset       `json:"offset"`
	Snapshot WeatherSnapshot `json:"snapshot"`
	Advice   []string        `json:"advice"`
}
