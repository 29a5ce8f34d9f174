package caffeine

import "time"

// SamplesPerDay is the number of hourly points in a day chart, 00:00 to 24:00
const SamplesPerDay = 25

// LabelFormat is the time-of-day layout used for sample labels
const LabelFormat = "15:04"

// Sample is the caffeine level at one instant
type Sample struct {
	Time  time.Time `json:"time"`
	Label string    `json:"label"`
	Level float64   `json:"level"`
}

// DayChart is an hourly series over the calendar day of a reference time
type DayChart struct {
	Samples []Sample `json:"samples"`

	// CurrentIndex positions the reference time on the hourly axis. It is
	// fractional and not snapped to a sample.
	CurrentIndex float64 `json:"current_index"`
	CurrentLevel float64 `json:"current_level"`
}

// Labels returns the sample labels in order
func (c DayChart) Labels() []string {
	labels := make([]string, len(c.Samples))
	for i, s := range c.Samples {
		labels[i] = s.Label
	}
	return labels
}

// Levels returns the sample levels in order
func (c DayChart) Levels() []float64 {
	levels := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		levels[i] = s.Level
	}
	return levels
}

// StartOfDay returns midnight of t's calendar date in t's location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SampleDay samples the level every hour across reference's calendar day,
// in reference's location
func (m Model) SampleDay(events []DoseEvent, reference time.Time) DayChart {
	start := StartOfDay(reference)

	samples := make([]Sample, 0, SamplesPerDay)
	for i := 0; i < SamplesPerDay; i++ {
		t := start.Add(time.Duration(i) * time.Hour)
		samples = append(samples, Sample{
			Time:  t,
			Label: t.Format(LabelFormat),
			Level: m.TotalLevel(events, t),
		})
	}

	return DayChart{
		Samples:      samples,
		CurrentIndex: reference.Sub(start).Hours(),
		CurrentLevel: m.TotalLevel(events, reference),
	}
}

// SampleDay samples the day of reference using the default half-life
func SampleDay(events []DoseEvent, reference time.Time) DayChart {
	return Default.SampleDay(events, reference)
}

// Series samples the level from start to end every step. The end time is
// always included as the final sample.
func (m Model) Series(events []DoseEvent, start, end time.Time, step time.Duration) []Sample {
	if step <= 0 || end.Before(start) {
		return []Sample{}
	}

	samples := make([]Sample, 0, int(end.Sub(start)/step)+2)
	t := start
	for t.Before(end) {
		samples = append(samples, Sample{Time: t, Label: t.Format(LabelFormat), Level: m.TotalLevel(events, t)})
		t = t.Add(step)
	}
	samples = append(samples, Sample{Time: end, Label: end.Format(LabelFormat), Level: m.TotalLevel(events, end)})
	return samples
}
