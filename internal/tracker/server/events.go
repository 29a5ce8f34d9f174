package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/baely/caffeine/internal/caffeine"
	"github.com/baely/caffeine/internal/catalog"
	"github.com/baely/caffeine/internal/common/errors"
	commonHttp "github.com/baely/caffeine/internal/common/http"
	"github.com/baely/caffeine/internal/tracker/models"
)

// GetEvents lists doses between ?start and ?end, defaulting to today
func (s *Server) GetEvents(w http.ResponseWriter, r *http.Request) {
	today := caffeine.StartOfDay(s.now().In(s.loc))

	start, err := parseTime(r, "start", today)
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	end, err := parseTime(r, "end", today.AddDate(0, 0, 1))
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}

	events, err := s.db.GetEvents(r.Context(), start, end)
	if err != nil {
		s.logger.Error("Failed to get events", "error", err)
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, events)
}

// EventRequest records a dose either as a raw amount or as a volume of a
// catalog drink. Time is RFC3339; Clock is HH:MM on today's date. Neither
// means now.
type EventRequest struct {
	Name     string   `json:"name"`
	AmountMg *float64 `json:"amount_mg"`
	Drink    string   `json:"drink"`
	VolumeMl float64  `json:"volume_ml"`
	Cost     int      `json:"cost"`
	Time     string   `json:"time"`
	Clock    string   `json:"clock"`
}

// ResolveEvent turns a request into an event using the drink catalog and
// the current time
func ResolveEvent(req EventRequest, drinks []catalog.Drink, now time.Time) (models.CaffeineEvent, error) {
	event := models.CaffeineEvent{
		Description: strings.TrimSpace(req.Name),
		Cost:        req.Cost,
		Source:      models.SourceManual,
	}

	switch {
	case req.AmountMg != nil:
		event.Amount = *req.AmountMg
	case req.Drink != "":
		drink, ok := catalog.Find(drinks, req.Drink)
		if !ok {
			return models.CaffeineEvent{}, errors.NotFound("drink %q", req.Drink)
		}
		volume := req.VolumeMl
		if volume == 0 {
			volume = catalog.DefaultVolumeMl
		}
		if volume < 0 {
			return models.CaffeineEvent{}, errors.Invalid("volume must be positive")
		}
		event.Amount = drink.Dose(volume)
		if event.Description == "" {
			event.Description = drink.Name
		}
	default:
		return models.CaffeineEvent{}, errors.Invalid("amount_mg or drink is required")
	}
	if event.Description == "" {
		event.Description = "Caffeine"
	}

	switch {
	case req.Time != "":
		t, err := time.Parse(time.RFC3339, req.Time)
		if err != nil {
			return models.CaffeineEvent{}, errors.Invalid("invalid time %q", req.Time)
		}
		event.Timestamp = t
	case req.Clock != "":
		t, err := catalog.TimeOfDay(now, req.Clock)
		if err != nil {
			return models.CaffeineEvent{}, err
		}
		event.Timestamp = t
	default:
		event.Timestamp = now
	}

	return event, nil
}

func (s *Server) drinks(ctx context.Context) ([]catalog.Drink, error) {
	custom, err := s.db.ListDrinks(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Merge(custom), nil
}

func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commonHttp.HandleError(w, errors.Invalid("invalid json"))
		return
	}

	drinks, err := s.drinks(r.Context())
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}

	event, err := ResolveEvent(req, drinks, s.now().In(s.loc))
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}

	event, err = s.db.AddEvent(r.Context(), event)
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}

	s.logger.Info("Recorded dose", "id", event.ID, "description", event.Description, "amount", event.Amount)
	commonHttp.Created(w, event)
}

func (s *Server) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.DeleteEvent(r.Context(), id); err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) GetEventsSummary(w http.ResponseWriter, r *http.Request) {
	start, err := parseTime(r, "start", time.Time{})
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	end, err := parseTime(r, "end", s.now().AddDate(0, 0, 1)) // just to be sure.
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	if start.Unix() < 0 {
		start = time.Unix(0, 0)
	}

	totals, err := s.db.GetTotals(r.Context(), start, end)
	if err != nil {
		s.logger.Error("Failed to get totals", "error", err)
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, totals)
}

func (s *Server) GetDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := s.drinks(r.Context())
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, drinks)
}

func (s *Server) PostDrink(w http.ResponseWriter, r *http.Request) {
	var drink catalog.Drink
	if err := json.NewDecoder(r.Body).Decode(&drink); err != nil {
		commonHttp.HandleError(w, errors.Invalid("invalid json"))
		return
	}
	drink.Name = strings.TrimSpace(drink.Name)
	drink.Custom = true

	if err := s.db.AddDrink(r.Context(), drink); err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Created(w, drink)
}

func (s *Server) DeleteDrink(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := s.db.DeleteDrink(r.Context(), name); err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Success(w, map[string]string{"status": "deleted", "name": name})
}

type predefinedEvent struct {
	Description string
	Amount      float64
	Cost        int
}

var predefinedEvents = map[int]predefinedEvent{
	1: {Description: "Homemade Double Oat Latte", Amount: 160, Cost: 250},
	2: {Description: "The Jolly Miller", Amount: 80, Cost: 600},
}

// GetPredefinedEvent records one of a fixed set of regular drinks at the
// current time
func (s *Server) GetPredefinedEvent(w http.ResponseWriter, r *http.Request) {
	typeString := r.URL.Query().Get("type")
	coffeeType, err := strconv.Atoi(typeString)
	if err != nil {
		commonHttp.HandleError(w, errors.Invalid("invalid type"))
		return
	}

	p, ok := predefinedEvents[coffeeType]
	if !ok {
		commonHttp.HandleError(w, errors.NotFound("predefined event %d", coffeeType))
		return
	}

	event, err := s.db.AddEvent(r.Context(), models.CaffeineEvent{
		Timestamp:   s.now(),
		Description: p.Description,
		Amount:      p.Amount,
		Cost:        p.Cost,
		Source:      models.SourcePredefined,
	})
	if err != nil {
		commonHttp.HandleError(w, err)
		return
	}
	commonHttp.Created(w, event)
}
