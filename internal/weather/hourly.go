package weather

import "time"

// hourlyHorizon is the number of hourly slots synthesized per call.
const hourlyHorizon = 24

// BuildHourlySeries merges the short-term and ultra-short-term grids into a
// chronological timeline covering the next 24 hours from now. The
// short-term grid seeds each slot; fields the ultra-short grid provides for
// the same (date, time) override it, except precipitation probability,
// which only the short-term feed carries. Slots for which no temperature
// was determined are dropped.
func BuildHourlySeries(now time.Time, short, ultra ForecastGrid) []HourlySlot {
	base := now.Truncate(time.Hour)

	slots := make([]HourlySlot, 0, hourlyHorizon)
	for i := 0; i < hourlyHorizon; i++ {
		t := base.Add(time.Duration(i) * time.Hour)
		date := t.Format(DateLayout)
		hhmm := t.Format("15") + "00"

		merged := Reading{}
		for label, value := range short.At(date, hhmm) {
			merged[label] = value
		}
		for label, value := range ultra.At(date, hhmm) {
			if label == LabelPop {
				continue
			}
			merged[label] = value
		}

		temp, ok := toFloat(merged[LabelTemp])
		if !ok {
			continue
		}

		slot := HourlySlot{
			Date:        date,
			Time:        hhmm,
			Temperature: temp,
			Sky:         toString(merged[LabelSky], LabelNoData),
			PrecipType:  toString(merged[LabelPrecipType], LabelNone),
			RainAmount:  merged[LabelRain1h],
		}
		if slot.RainAmount == nil {
			slot.RainAmount = LabelNoRain
		}
		if pop, ok := toFloat(merged[LabelPop]); ok {
			slot.PrecipProb = pop
		}
		slots = append(slots, slot)
	}
	return slots
}
