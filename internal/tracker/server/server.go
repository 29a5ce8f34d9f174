package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baely/caffeine/internal/caffeine"
	"github.com/baely/caffeine/internal/common/errors"
	commonHttp "github.com/baely/caffeine/internal/common/http"
	"github.com/baely/caffeine/internal/tracker/database"
	"github.com/baely/caffeine/internal/tracker/models"
)

// lookback is how far before an instant a dose can still contribute
const lookback = time.Duration(caffeine.Cutoff * float64(time.Hour))

type TimeWrapper struct {
	time.Time
}

func (t TimeWrapper) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Unix())
}

// Config wires a Server to its collaborators
type Config struct {
	Store    database.Store
	Model    caffeine.Model
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

type Server struct {
	db     database.Store
	model  caffeine.Model
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger
}

func NewServer(cfg Config) chi.Router {
	s := &Server{
		db:     cfg.Store,
		model:  cfg.Model,
		loc:    cfg.Location,
		now:    cfg.Now,
		logger: cfg.Logger,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s.registerApiEndpoints()
}

func (s *Server) registerApiEndpoints() chi.Router {
	r := commonHttp.NewRouter()

	r.Get("/api/health", s.GetHealth)

	r.Get("/api/level", s.GetLevel)
	r.Get("/api/levels", s.GetLevels)
	r.Get("/api/chart", s.GetChart)

	r.Get("/api/events", s.GetEvents)
	r.Post("/api/events", s.PostEvent)
	r.Delete("/api/events/{id}", s.DeleteEvent)
	r.Get("/api/events/summary", s.GetEventsSummary)

	r.Get("/api/drinks", s.GetDrinks)
	r.Post("/api/drinks", s.PostDrink)
	r.Delete("/api/drinks/{name}", s.DeleteDrink)

	r.HandleFunc("/api/predefined-event", s.GetPredefinedEvent)

	return r
}

// parseTime reads an RFC3339 query parameter, falling back to def when absent
func parseTime(r *http.Request, key string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, errors.Invalid("invalid %s time", key)
	}
	return t, nil
}

// dosesAround loads every dose that can contribute to a level between start
// and end
func (s *Server) dosesAround(r *http.Request, start, end time.Time) ([]caffeine.DoseEvent, error) {
	events, err := s.db.GetEvents(r.Context(), start.Add(-lookback), end.Add(time.Millisecond))
	if err != nil {
		return nil, err
	}
	return models.Doses(events), nil
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := s.db.Ping(r.Context()) == nil
	commonHttp.Success(w, map[string]any{
		"status": "ok",
		"db":     dbOK,
	})
}

type levelResponse struct {
	At    time.Time `json:"at"`
	Level float64   `json:"level"`
}

func (s *Server) GetLevel(w http.ResponseWriter, r *http.Request) {
	at, err := parseTime(r, "at", s.now())
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}

	doses, err := s.dosesAround(r, at, at)
	if err != nil {
		s.logger.Error("Failed to load doses", "error", err)
		commonHttp.HandleError(w, err)
		return
	}

	commonHttp.Success(w, levelResponse{
		At:    at.In(s.loc),
		Level: s.model.TotalLevel(doses, at),
	})
}

type chartResponse struct {
	Date         string            `json:"date"`
	Labels       []string          `json:"labels"`
	Data         []float64         `json:"data"`
	Samples      []caffeine.Sample `json:"samples"`
	CurrentIndex float64           `json:"current_index"`
	CurrentLevel float64           `json:"current_level"`
}

// GetChart returns the hourly chart for the calendar day of ?at (default now)
// in the tracker's timezone
func (s *Server) GetChart(w http.ResponseWriter, r *http.Request) {
	at, err := parseTime(r, "at", s.now())
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	at = at.In(s.loc)

	start := caffeine.StartOfDay(at)
	doses, err := s.dosesAround(r, start, start.Add(24*time.Hour))
	if err != nil {
		s.logger.Error("Failed to load doses", "error", err)
		commonHttp.HandleError(w, err)
		return
	}

	chart := s.model.SampleDay(doses, at)
	commonHttp.Success(w, chartResponse{
		Date:         start.Format(time.DateOnly),
		Labels:       chart.Labels(),
		Data:         chart.Levels(),
		Samples:      chart.Samples,
		CurrentIndex: chart.CurrentIndex,
		CurrentLevel: chart.CurrentLevel,
	})
}

func (s *Server) GetLevels(w http.ResponseWriter, r *http.Request) {
	start, err := parseTime(r, "start", time.Time{})
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	end, err := parseTime(r, "end", time.Time{})
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	if start.IsZero() || end.IsZero() {
		commonHttp.HandleError(w, errors.Invalid("start and end are required"))
		return
	}
	if !start.Before(end) || end.Sub(start) > maxRange {
		commonHttp.HandleError(w, errors.Invalid("range must be positive and at most %v", maxRange))
		return
	}

	levels, err := s.calculateCaffeineLevels(r, start, end)
	if err != nil {
		s.logger.Error("Failed to calculate levels", "error", err)
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, levels)
}

type LevelEvent struct {
	Timestamp TimeWrapper `json:"timestamp"`
	Level     float64     `json:"level"`
}

// calculateCaffeineLevels samples the range on a snapped grid and adds a
// point at each dose and the minute before it, so steps in the level are
// drawn sharply.
func (s *Server) calculateCaffeineLevels(r *http.Request, start, end time.Time) ([]LevelEvent, error) {
	step := rangeStep(start, end)
	from := rangeStart(start, step)

	doses, err := s.dosesAround(r, from, end)
	if err != nil {
		return nil, err
	}

	caffeineLevels := make([]LevelEvent, 0)
	for _, sample := range s.model.Series(doses, from, end, step) {
		caffeineLevels = append(caffeineLevels, LevelEvent{
			Timestamp: TimeWrapper{sample.Time},
			Level:     sample.Level,
		})
	}

	for _, d := range doses {
		if d.Timestamp.Before(from) || d.Timestamp.After(end) {
			continue
		}
		for _, t := range []time.Time{d.Timestamp, d.Timestamp.Add(-1 * time.Minute)} {
			caffeineLevels = append(caffeineLevels, LevelEvent{
				Timestamp: TimeWrapper{t},
				Level:     s.model.TotalLevel(doses, t),
			})
		}
	}

	slices.SortStableFunc(caffeineLevels, func(a, b LevelEvent) int {
		return a.Timestamp.Time.Compare(b.Timestamp.Time)
	})
	return caffeineLevels, nil
}
