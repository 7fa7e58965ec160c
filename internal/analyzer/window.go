package analyzer

import (
	"TariffSentinel/internal/model"
)

// AnalyzeWindow scans an ordered signal forecast (index 0 = "now") for the
// low-tariff window. A point is inside the window exactly when its value
// equals lowCode; missing values never match. Transition boundaries belong to
// the new state: the first point whose value differs ends the window at that
// point's own timestamp.
func AnalyzeWindow(points []model.TimePoint, lowCode float64) model.ForecastWindow {
	var w model.ForecastWindow
	if len(points) == 0 {
		return w
	}

	current := points[0]
	w.Current = &current
	w.Active = isLow(current, lowCode)

	if w.Active {
		start := current.Time
		w.Start = &start
		for i := range points {
			if !isLow(points[i], lowCode) {
				end := points[i].Time
				w.End = &end
				break
			}
		}
		return w
	}

	for i := range points {
		if !isLow(points[i], lowCode) {
			continue
		}
		start := points[i].Time
		w.Start = &start
		for j := i; j < len(points); j++ {
			if !isLow(points[j], lowCode) {
				end := points[j].Time
				w.End = &end
				break
			}
		}
		break
	}
	return w
}

func isLow(p model.TimePoint, lowCode float64) bool {
	return p.Value != nil && *p.Value == lowCode
}
