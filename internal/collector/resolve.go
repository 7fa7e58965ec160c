package collector

import (
	"strings"

	"TariffSentinel/internal/model"
)

// Upstream series naming. Per-account series carry the metering point number
// (ZPN) as a suffix; the public energy tariff components are shared.
const (
	prefixSignal       = "tariff-signal"
	prefixGridPrice    = "innonet-tariff"
	prefixEnergyPublic = "public-energy-tariff"
	prefixValidated    = "validated-data"
)

// Classify maps discovered series onto logical keys by case-insensitive
// substring match. The first match per bucket wins. The public energy tariff
// splits into base, fee and VAT components; base is whatever matches the
// public prefix without being fee or VAT. Validated-data series are never
// classified.
func Classify(items []model.SeriesInfo) map[model.SeriesKey]string {
	resolved := make(map[model.SeriesKey]string)
	for _, item := range items {
		lower := strings.ToLower(item.Name)
		if strings.HasPrefix(lower, prefixValidated) {
			continue
		}
		if strings.Contains(lower, prefixSignal) {
			setIfAbsent(resolved, model.KeySignal, item.Name)
		}
		if strings.Contains(lower, prefixGridPrice) {
			setIfAbsent(resolved, model.KeyGridPrice, item.Name)
		}
		if strings.Contains(lower, prefixEnergyPublic) {
			switch {
			case strings.Contains(lower, "fee"):
				setIfAbsent(resolved, model.KeyEnergyFee, item.Name)
			case strings.Contains(lower, "vat"):
				setIfAbsent(resolved, model.KeyEnergyVat, item.Name)
			default:
				setIfAbsent(resolved, model.KeyEnergyBase, item.Name)
			}
		}
	}
	return resolved
}

func setIfAbsent(m map[model.SeriesKey]string, key model.SeriesKey, name string) {
	if _, ok := m[key]; !ok {
		m[key] = name
	}
}

// ExtractZPN pulls the metering point number out of the first discovered
// tariff-signal series, e.g. "tariff-signal-123456" yields "123456". Returns
// "" when no such series exists.
func ExtractZPN(items []model.SeriesInfo) string {
	for _, item := range items {
		lower := strings.ToLower(item.Name)
		if strings.HasPrefix(lower, prefixSignal+"-") {
			return item.Name[len(prefixSignal)+1:]
		}
	}
	return ""
}

// FallbackName returns the naive series-name guess for a key when discovery
// has not resolved it yet. Only the per-account series have a guess; the
// public components must come from discovery.
func FallbackName(key model.SeriesKey, accountID string) (string, bool) {
	if accountID == "" {
		return "", false
	}
	switch key {
	case model.KeySignal:
		return prefixSignal + "-" + accountID, true
	case model.KeyGridPrice:
		return prefixGridPrice + "-" + accountID, true
	default:
		return "", false
	}
}
