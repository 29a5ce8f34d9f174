package server

import (
	"time"
)

var snapTimes = []time.Duration{
	time.Duration(1) * time.Second,
	time.Duration(5) * time.Second,
	time.Duration(10) * time.Second,
	time.Duration(30) * time.Second,
	time.Duration(1) * time.Minute,
	time.Duration(5) * time.Minute,
	time.Duration(10) * time.Minute,
	time.Duration(30) * time.Minute,
	time.Duration(1) * time.Hour,
	time.Duration(2) * time.Hour,
	time.Duration(6) * time.Hour,
	time.Duration(12) * time.Hour,
	time.Duration(1) * time.Hour * 24,
}

// snapDownDuration returns the closest snap time that is less than the given duration.
func snapDownDuration(d time.Duration) time.Duration {
	for i, snap := range snapTimes {
		if snap < d {
			continue
		}

		if i == 0 {
			return snap
		}

		return snapTimes[i-1]
	}
	return snapTimes[len(snapTimes)-1]
}

// rangeResolution is the number of steps to take across a level range.
const rangeResolution = 250

// maxRange bounds how much history a single levels request may cover.
const maxRange = 31 * 24 * time.Hour

// rangeStep returns the sampling step for a range.
func rangeStep(start, end time.Time) time.Duration {
	return snapDownDuration(end.Sub(start) / rangeResolution)
}

// rangeStart aligns start down onto the step grid.
func rangeStart(start time.Time, step time.Duration) time.Time {
	return start.Truncate(step)
}
