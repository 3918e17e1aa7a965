package service

import (
	"time"

	"innbook/pkg/model"
)

// nightsBetween counts billable nights for an inclusive date range. A
// same-day stay bills exactly one night.
func nightsBetween(start, end time.Time) int64 {
	nights := int64(model.DateOnly(end).Sub(model.DateOnly(start)) / (24 * time.Hour))
	if nights <= 0 {
		nights = 1
	}
	return nights
}

// computeAmount prices a stay at a flat nightly rate.
func computeAmount(nightlyRate float64, start, end time.Time) float64 {
	return nightlyRate * float64(nightsBetween(start, end))
}
