package analyzer

import (
	"math"

	"TariffSentinel/internal/model"
)

// TotalPrice sums the public energy price components (base, fee, VAT) into
// the effective price per kWh, rounded to four decimals. All readings are
// EUR-denominated after normalization. Returns ok=false when none of the
// components is present.
func TotalPrice(readings map[model.SeriesKey]model.Reading) (float64, bool) {
	total := 0.0
	found := false
	for _, key := range model.ComponentKeys() {
		r, ok := readings[key]
		if !ok {
			continue
		}
		total += r.Value
		found = true
	}
	if !found {
		return 0, false
	}
	return math.Round(total*10000) / 10000, true
}
