package utils

import (
	"log"
	"strings"
	"time"

	"github.com/scmhub/calendar"
)

// suffixMICs maps Yahoo symbol suffixes to ISO 10383 market codes.
// Symbols without a known suffix trade on NYSE.
var suffixMICs = map[string]string{
	".L":  "xlon",
	".PA": "xpar",
	".DE": "xfra",
	".AS": "xams",
	".BR": "xbru",
	".MI": "xmil",
	".MC": "xmad",
	".ST": "xsto",
	".CO": "xcse",
	".HE": "xhel",
	".VI": "xwbo",
	".SW": "xswx",
	".TO": "xtse",
	".V":  "xtsx",
	".T":  "xtks",
	".HK": "xhkg",
	".AX": "xasx",
	".KS": "xkrx",
	".TW": "xtai",
	".SS": "xshg",
	".SZ": "xshe",
}

// -----------------------------------------------------------------------------

// TradingCalendar answers business-day questions using scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	MIC      string
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// MICForSymbol picks the exchange code from the symbol suffix.
func MICForSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if mic, ok := suffixMICs[strings.ToUpper(symbol[i:])]; ok {
			return mic
		}
	}
	return "xnys"
}

// -----------------------------------------------------------------------------

func GetCalendar(symbol string) *TradingCalendar {
	mic := MICForSymbol(symbol)

	cal := calendar.GetCalendar(mic)
	if cal == nil {
		mic = "xnys"
		cal = calendar.GetCalendar(mic)
	}

	if cal == nil {
		log.Printf("WARNING: Failed to load calendar for '%s'. Using Mon-Fri fallback.", symbol)
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC
		}
		return &TradingCalendar{MIC: mic, Fallback: true, Timezone: nyLoc}
	}

	return &TradingCalendar{Calendar: cal, MIC: mic, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay uses the exchange holidays inside the calendar's year range
// and plain Mon-Fri outside it.
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback || !tc.InRange(date) {
		return !calendar.IsWeekend(date)
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// InRange reports whether date falls in the years the calendar has holidays for.
func (tc *TradingCalendar) InRange(date time.Time) bool {
	if tc.Calendar == nil {
		return false
	}
	start, end := tc.Calendar.Years()
	return date.Year() >= start && date.Year() <= end
}

// -----------------------------------------------------------------------------

// TradingDaysBetween counts trading days in [start, end], by calendar date.
func (tc *TradingCalendar) TradingDaysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	loc := time.UTC
	if tc.Timezone != nil {
		loc = tc.Timezone
	}
	s := start.In(loc)
	e := end.In(loc)
	day := time.Date(s.Year(), s.Month(), s.Day(), 12, 0, 0, 0, loc)
	last := time.Date(e.Year(), e.Month(), e.Day(), 12, 0, 0, 0, loc)

	count := 0
	for !day.After(last) {
		if tc.IsTradingDay(day) {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}
