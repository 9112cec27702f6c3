package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultPaceMinPerKm is the running pace used when the caller gives none.
const DefaultPaceMinPerKm = 6.0

// EstimateDuration returns the running time for km at the given pace (minutes per km).
func EstimateDuration(km, paceMinPerKm float64) time.Duration {
	if paceMinPerKm <= 0 {
		paceMinPerKm = DefaultPaceMinPerKm
	}
	return time.Duration(km * paceMinPerKm * float64(time.Minute))
}

// FormatDuration renders d as "1h 5m" or "35 min".
func FormatDuration(d time.Duration) string {
	total := d.Minutes()
	h := int(math.Floor(total / 60))
	m := int(math.Round(math.Mod(total, 60)))
	if m == 60 {
		h++
		m = 0
	}
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%d min", m)
}

// FormatPace renders a pace in minutes per km as "5:30 min/km".
func FormatPace(paceMinPerKm float64) string {
	whole := int(math.Floor(paceMinPerKm))
	sec := int(math.Round((paceMinPerKm - float64(whole)) * 60))
	if sec == 60 {
		whole++
		sec = 0
	}
	return fmt.Sprintf("%d:%02d min/km", whole, sec)
}
