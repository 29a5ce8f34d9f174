package models

import (
	"time"

	"github.com/baely/caffeine/internal/caffeine"
)

// Sources of a caffeine event
const (
	SourceManual     = "manual"
	SourceUp         = "up"
	SourcePredefined = "predefined"
)

type CaffeineEvent struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Cost        int       `json:"cost"`
	Source      string    `json:"source"`
}

type CaffeineRow struct {
	ID          string  `json:"id"`
	Timestamp   int64   `json:"timestamp"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Cost        int     `json:"cost"`
	Source      string  `json:"source"`
}

// Totals is the summed intake and spend over a period
type Totals struct {
	Intake float64 `json:"intake"`
	Cost   int     `json:"cost"`
}

func ToEvent(row CaffeineRow) CaffeineEvent {
	return CaffeineEvent{
		ID:          row.ID,
		Timestamp:   time.UnixMilli(row.Timestamp),
		Description: row.Description,
		Amount:      row.Amount,
		Cost:        row.Cost,
		Source:      row.Source,
	}
}

func ToRow(event CaffeineEvent) CaffeineRow {
	return CaffeineRow{
		ID:          event.ID,
		Timestamp:   event.Timestamp.UnixMilli(),
		Description: event.Description,
		Amount:      event.Amount,
		Cost:        event.Cost,
		Source:      event.Source,
	}
}

// Dose is the event as seen by the decay model
func (e CaffeineEvent) Dose() caffeine.DoseEvent {
	return caffeine.DoseEvent{
		ID:        e.ID,
		Name:      e.Description,
		AmountMg:  e.Amount,
		Timestamp: e.Timestamp,
	}
}

func Doses(events []CaffeineEvent) []caffeine.DoseEvent {
	doses := make([]caffeine.DoseEvent, len(events))
	for i, e := range events {
		doses[i] = e.Dose()
	}
	return doses
}
