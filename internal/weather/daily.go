package weather

import "time"

// nearHorizonDays is how many days (today included) are aggregated from
// hourly slots; beyond that the mid-term forecast takes over up to
// midHorizonEnd days out.
const (
	nearHorizonDays = 3
	midHorizonStart = 3
	midHorizonEnd   = 7
)

// AggregateDaily folds hourly slots for today and the next two days into
// one DailySummary per date: min/max of the hourly temperatures, the most
// frequent sky state (first encountered wins a tie) for both halves of the
// day, and the maximum hourly precipitation probability. Dates with no
// contributing slots are omitted.
func AggregateDaily(now time.Time, slots []HourlySlot) []DailySummary {
	wanted := make(map[string]bool, nearHorizonDays)
	for i := 0; i < nearHorizonDays; i++ {
		wanted[now.AddDate(0, 0, i).Format(DateLayout)] = true
	}

	byDate := map[string][]HourlySlot{}
	for _, slot := range slots {
		if wanted[slot.Date] {
			byDate[slot.Date] = append(byDate[slot.Date], slot)
		}
	}

	summaries := make([]DailySummary, 0, len(byDate))
	for _, date := range sortedKeys(byDate) {
		daySlots := byDate[date]

		summary := DailySummary{
			Date:    date,
			MinTemp: daySlots[0].Temperature,
			MaxTemp: daySlots[0].Temperature,
		}
		counts := map[string]int{}
		var order []string
		for _, slot := range daySlots {
			if slot.Temperature < summary.MinTemp {
				summary.MinTemp = slot.Temperature
			}
			if slot.Temperature > summary.MaxTemp {
				summary.MaxTemp = slot.Temperature
			}
			if slot.PrecipProb > summary.PrecipProb {
				summary.PrecipProb = slot.PrecipProb
			}
			if _, seen := counts[slot.Sky]; !seen {
				order = append(order, slot.Sky)
			}
			counts[slot.Sky]++
		}

		sky := modalSky(counts, order)
		summary.SkyAM = sky
		summary.SkyPM = sky
		summaries = append(summaries, summary)
	}
	return summaries
}

// modalSky picks the most frequent sky state; order carries the states in
// first-encountered order so ties break deterministically.
func modalSky(counts map[string]int, order []string) string {
	best := LabelNoData
	bestCount := 0
	for _, sky := range order {
		if counts[sky] > bestCount {
			bestCount = counts[sky]
			best = sky
		}
	}
	return best
}

// MidTermDaily builds DailySummary entries for day offsets 3..7 from the
// separately fetched mid-term temperature and land-forecast series. A day
// is included only if a minimum temperature was found for it; the
// precipitation probability is the larger of the morning and afternoon
// values.
func MidTermDaily(now time.Time, temps MidTermTemps, land MidTermLand) []DailySummary {
	summaries := make([]DailySummary, 0, midHorizonEnd-midHorizonStart+1)
	for day := midHorizonStart; day <= midHorizonEnd; day++ {
		minTemp, ok := temps.Min[day]
		if !ok {
			continue
		}

		summary := DailySummary{
			Date:    now.AddDate(0, 0, day).Format(DateLayout),
			MinTemp: minTemp,
			MaxTemp: temps.Max[day],
			SkyAM:   LabelNoData,
			SkyPM:   LabelNoData,
		}
		if sky, ok := land.SkyAM[day]; ok {
			summary.SkyAM = sky
		}
		if sky, ok := land.SkyPM[day]; ok {
			summary.SkyPM = sky
		}
		summary.PrecipProb = land.PopAM[day]
		if pop := land.PopPM[day]; pop > summary.PrecipProb {
			summary.PrecipProb = pop
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// MergeHorizons combines the near and mid horizons into one chronological
// outlook. The day-offset ranges are disjoint by construction; should a
// date ever appear in both, the near-horizon entry wins.
func MergeHorizons(near, mid []DailySummary) []DailySummary {
	byDate := make(map[string]DailySummary, len(near)+len(mid))
	for _, s := range mid {
		byDate[s.Date] = s
	}
	for _, s := range near {
		byDate[s.Date] = s
	}

	merged := make([]DailySummary, 0, len(byDate))
	for _, date := range sortedKeys(byDate) {
		merged = append(merged, byDate[date])
	}
	return merged
}
