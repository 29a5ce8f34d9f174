package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/baely/caffeine/internal/balance"
	"github.com/baely/caffeine/internal/tracker/database"
	"github.com/baely/caffeine/internal/tracker/models"
)

// purchase is the part of a bank transaction the dose rules look at
type purchase struct {
	ID          string
	Category    string
	Description string
	RawText     string
	Cost        int // cents, positive
	CreatedAt   time.Time
}

func purchaseFromEvent(event balance.TransactionEvent) (purchase, bool) {
	category := event.Transaction.Relationships.Category.Data
	if category == nil {
		return purchase{}, false
	}

	attrs := event.Transaction.Attributes
	amt := attrs.Amount.ValueInBaseUnits
	if amt < 0 {
		amt = -amt
	}

	p := purchase{
		ID:          event.Transaction.Id,
		Category:    category.Id,
		Description: attrs.Description,
		Cost:        amt,
		CreatedAt:   attrs.CreatedAt,
	}
	if attrs.RawText != nil {
		p.RawText = *attrs.RawText
	}
	return p, true
}

// ProcessEvent records a dose for a transaction that matches a known drink
// purchase. Transactions that match nothing are ignored.
func ProcessEvent(ctx context.Context, db database.Store, event balance.TransactionEvent) error {
	p, ok := purchaseFromEvent(event)
	if !ok {
		return nil
	}

	caffeineEvent, ok := doseForPurchase(p)
	if !ok {
		return nil
	}

	_, err := db.AddEvent(ctx, caffeineEvent)
	return err
}

func doseForPurchase(p purchase) (models.CaffeineEvent, bool) {
	switch p.Category {
	case "restaurants-and-cafes":
		return transformRestaurantEvent(p)
	case "groceries":
		return transformGroceryEvent(p)
	}
	return models.CaffeineEvent{}, false
}

type lookupKey struct {
	Description string
	Cost        int
}

// cafeDoses maps a café and price to the caffeine in what was ordered
var cafeDoses = map[lookupKey]float64{
	{"Charlie Bit Me Cafe", 680}:  160,
	{"Charlie Bit Me Cafe", 700}:  160,
	{"Charlie Bit Me Cafe", 580}:  80,
	{"Georgie Boy Espresso", 550}: 160,
	{"Georgie Boy Espresso", 600}: 160,
	{"Chia Chia", 550}:            160,
	{"Chia Chia", 540}:            160,
	{"Chia Chia", 500}:            80,
	{"Chia Chia", 590}:            240,
	{"In a Rush", 560}:            160,
	{"Mr Summit", 550}:            160,
	{"The Other Brother", 600}:    160,
}

func transformRestaurantEvent(p purchase) (models.CaffeineEvent, bool) {
	amount, ok := cafeDoses[lookupKey{Description: p.Description, Cost: p.Cost}]
	if !ok {
		return models.CaffeineEvent{}, false
	}

	return models.CaffeineEvent{
		ID:          p.ID,
		Timestamp:   p.CreatedAt,
		Description: p.Description,
		Amount:      amount,
		Cost:        p.Cost,
		Source:      models.SourceUp,
	}, true
}

func transformGroceryEvent(p purchase) (models.CaffeineEvent, bool) {
	rawText := strings.ToUpper(p.RawText)

	if !strings.Contains(rawText, "WOOLWORTHS") || !strings.Contains(rawText, "DOCK") {
		slog.Debug("Grocery purchase is not Woolworths Dock", "raw_text", p.RawText)
		return models.CaffeineEvent{}, false
	}

	if p.Cost < 200 || p.Cost > 700 {
		slog.Debug("Grocery purchase outside espresso price range", "cost", p.Cost)
		return models.CaffeineEvent{}, false
	}

	return models.CaffeineEvent{
		ID:          p.ID,
		Timestamp:   p.CreatedAt,
		Description: "Dare NAS Intense Espresso",
		Amount:      260,
		Cost:        p.Cost,
		Source:      models.SourceUp,
	}, true
}
