package recommend

import "github.com/bobby-s-dev/wardrobe-bot/internal/models"

// BandFor returns the first band containing temp. Temperatures outside the
// table match nothing.
func (r Rules) BandFor(temp float64) (Band, bool) {
	for _, band := range r.Bands {
		if band.Contains(temp) {
			return band, true
		}
	}
	return Band{}, false
}

// Holds reports whether the condition applies to the snapshot.
func (c Condition) Holds(s models.WeatherSnapshot) bool {
	switch c.Kind {
	case WindAbove:
		return s.WindSpeed > c.Threshold
	case Rain:
		return s.Rain
	case Snow:
		return s.Snow
	default:
		return false
	}
}

// Recommend returns at most one band line followed by a line for every
// condition that holds, in table order.
func (r Rules) Recommend(s models.WeatherSnapshot) []string {
	lines := make([]string, 0, 1+len(r.Conditions))

	if band, ok := r.BandFor(s.Temperature); ok {
		lines = append(lines, band.Label+": "+band.Advice)
	}

	for _, cond := range r.Conditions {
		if cond.Holds(s) {
			lines = append(lines, cond.Label+": "+cond.Advice)
		}
	}

	return lines
}
