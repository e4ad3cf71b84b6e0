// README: Financial ledger models: immutable fuel/expense rows and the derived
// per-trip summary.
package ledger

import (
	"time"

	"convoy/internal/types"
)

type FuelLog struct {
	ID                 int64
	VehicleID          types.ID
	TripID             *types.ID
	Liters             float64
	PricePerLiterCents int64
	TotalCost          types.Money
	OdometerKm         *float64
	FilledAt           time.Time
}

type Expense struct {
	ID          int64
	VehicleID   types.ID
	TripID      *types.ID
	Category    string
	Description string
	Amount      types.Money
	IncurredAt  time.Time
}

// Summary is the computed financial picture. ROI is nil when there are no
// costs to divide by; callers render that as "N/A".
type Summary struct {
	Revenue     types.Money
	FuelCost    types.Money
	ExpenseCost types.Money
	TotalCost   types.Money
	Profit      types.Money
	ROI         *float64
}

// Summarize folds revenue and costs into the derived figures.
func Summarize(revenue, fuelCost, expenseCost types.Money) Summary {
	total := fuelCost.Add(expenseCost)
	profit := revenue.Sub(total)
	sum := Summary{
		Revenue:     revenue,
		FuelCost:    fuelCost,
		ExpenseCost: expenseCost,
		TotalCost:   total,
		Profit:      profit,
	}
	if total.Amount != 0 {
		roi := float64(profit.Amount) / float64(total.Amount) * 100
		sum.ROI = &roi
	}
	return sum
}
