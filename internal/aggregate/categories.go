package aggregate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/models"
)

// CategorySlice is one wedge of the category distribution.
type CategorySlice struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
}

// Distribution is the category breakdown plus the sum of all slices.
type Distribution struct {
	Slices     []CategorySlice `json:"slices"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// CategoryDistribution sums the magnitude of every transaction per category,
// income and expense alike, so a category used for both kinds shows their
// combined volume rather than a net figure. Blank categories fall into
// OtherCategory. Slices are ordered by total descending, then by name.
func CategoryDistribution(txs []models.Transaction) Distribution {
	totals := make(map[string]decimal.Decimal)
	for i := range txs {
		name := strings.TrimSpace(txs[i].Category)
		if name == "" {
			name = OtherCategory
		}
		totals[name] = totals[name].Add(txs[i].Amount.Abs())
	}

	slices := make([]CategorySlice, 0, len(totals))
	grand := decimal.Zero
	for name, total := range totals {
		slices = append(slices, CategorySlice{Category: name, Total: total})
		grand = grand.Add(total)
	}
	sort.Slice(slices, func(i, j int) bool {
		if c := slices[i].Total.Cmp(slices[j].Total); c != 0 {
			return c > 0
		}
		return slices[i].Category < slices[j].Category
	})
	for i := range slices {
		slices[i].Percent = percentOf(slices[i].Total, grand)
	}

	return Distribution{Slices: slices, GrandTotal: grand}
}
