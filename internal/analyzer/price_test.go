package analyzer

import (
	"testing"

	"TariffSentinel/internal/model"
)

func TestTotalPrice_SumsComponents(t *testing.T) {
	readings := map[model.SeriesKey]model.Reading{
		model.KeyEnergyBase: {Key: model.KeyEnergyBase, Value: 0.0842},
		model.KeyEnergyFee:  {Key: model.KeyEnergyFee, Value: 0.0121},
		model.KeyEnergyVat:  {Key: model.KeyEnergyVat, Value: 0.0193},
		// Grid price never counts into the total
		model.KeyGridPrice: {Key: model.KeyGridPrice, Value: 0.1},
	}
	total, ok := TotalPrice(readings)
	if !ok {
		t.Fatal("expected a total")
	}
	if total != 0.1156 {
		t.Errorf("expected 0.1156, got %v", total)
	}
}

func TestTotalPrice_RoundsToFourDecimals(t *testing.T) {
	readings := map[model.SeriesKey]model.Reading{
		model.KeyEnergyBase: {Value: 0.084213},
		model.KeyEnergyFee:  {Value: 0.012121},
	}
	total, ok := TotalPrice(readings)
	if !ok {
		t.Fatal("expected a total")
	}
	if total != 0.0963 {
		t.Errorf("expected 0.0963, got %v", total)
	}
}

func TestTotalPrice_PartialComponents(t *testing.T) {
	readings := map[model.SeriesKey]model.Reading{
		model.KeyEnergyVat: {Value: 0.0193},
	}
	total, ok := TotalPrice(readings)
	if !ok {
		t.Fatal("a single component still yields a total")
	}
	if total != 0.0193 {
		t.Errorf("expected 0.0193, got %v", total)
	}
}

func TestTotalPrice_NoComponents(t *testing.T) {
	readings := map[model.SeriesKey]model.Reading{
		model.KeySignal:    {Value: 1},
		model.KeyGridPrice: {Value: 0.1},
	}
	if _, ok := TotalPrice(readings); ok {
		t.Error("expected no total without energy components")
	}
	if _, ok := TotalPrice(nil); ok {
		t.Error("expected no total for empty readings")
	}
}
