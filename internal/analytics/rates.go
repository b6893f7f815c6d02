package analytics

import (
	"sort"
	"time"

	"github.com/Dan9191/gold-savings/internal/models"
	"github.com/shopspring/decimal"
)

// rateBook answers "rate in effect at t" per karat over a sorted copy of
// the snapshots.
type rateBook map[models.Karat][]models.RateSnapshot

func newRateBook(snapshots []models.RateSnapshot) rateBook {
	book := rateBook{}
	for _, s := range snapshots {
		if !s.Karat.Valid() || !s.RatePerGram.IsPositive() {
			continue
		}
		book[s.Karat] = append(book[s.Karat], s)
	}
	for _, list := range book {
		sort.Slice(list, func(i, j int) bool {
			if list[i].EffectiveFrom.Equal(list[j].EffectiveFrom) {
				return list[i].ID.String() < list[j].ID.String()
			}
			return list[i].EffectiveFrom.Before(list[j].EffectiveFrom)
		})
	}
	return book
}

// at returns the latest rate with EffectiveFrom <= t
func (b rateBook) at(k models.Karat, t time.Time) (decimal.Decimal, bool) {
	list := b[k]
	i := sort.Search(len(list), func(i int) bool { return list[i].EffectiveFrom.After(t) })
	if i == 0 {
		return decimal.Zero, false
	}
	return list[i-1].RatePerGram, true
}

// value marks holdings to market at t. Karats holding grams without a rate
// are returned in missing and left out of the total.
func (b rateBook) value(holdings map[models.Karat]decimal.Decimal, t time.Time) (decimal.Decimal, []models.Karat) {
	total := decimal.Zero
	var missing []models.Karat
	for _, k := range sortedKarats(holdings) {
		grams := holdings[k]
		if grams.IsZero() {
			continue
		}
		rate, ok := b.at(k, t)
		if !ok {
			missing = append(missing, k)
			continue
		}
		total = total.Add(grams.Mul(rate))
	}
	return total, missing
}

func sortedKarats[V any](m map[models.Karat]V) []models.Karat {
	keys := make([]models.Karat, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
