package weather

import "time"

// TimeWindow is the (base_date, base_time) pair identifying one upstream
// publication cycle.
type TimeWindow struct {
	Date string
	Time string
}

// Publication lags observed on the KMA side: an hourly observation posts
// roughly 40 minutes past the hour, and a short-term cycle is safe to
// query 10 minutes after its scheduled hour. The ultra-short forecast is
// issued at H:30 and posts about 15 minutes later; the 45-minute
// subtraction folds the half-hour issue offset and that delay together.
const (
	liveObservationLag = 40 * time.Minute
	ultraShortLag      = 45 * time.Minute
	shortTermMargin    = 10 * time.Minute
)

// shortTermHours are the eight daily short-term publication hours,
// newest first.
var shortTermHours = []int{23, 20, 17, 14, 11, 8, 5, 2}

// LiveObservationWindow resolves the latest live-observation cycle
// queryable at now. Observations publish on the hour; subtracting the
// processing lag rolls the hour (and, across midnight, the date) back when
// this hour's data has not posted yet.
func LiveObservationWindow(now time.Time) TimeWindow {
	t := now.Add(-liveObservationLag)
	return TimeWindow{
		Date: t.Format(DateLayout),
		Time: t.Format("15") + "00",
	}
}

// UltraShortWindow resolves the latest ultra-short-term forecast cycle,
// issued every hour at the half-hour mark.
func UltraShortWindow(now time.Time) TimeWindow {
	t := now.Add(-ultraShortLag)
	return TimeWindow{
		Date: t.Format(DateLayout),
		Time: t.Format("15") + "30",
	}
}

// ShortTermWindow resolves the latest of the eight daily short-term cycles
// available at now. Before the first cycle of the day it rolls back to
// 23:00 of the previous day.
func ShortTermWindow(now time.Time) TimeWindow {
	t := now.Add(-shortTermMargin)
	for _, h := range shortTermHours {
		if t.Hour() >= h {
			return TimeWindow{
				Date: t.Format(DateLayout),
				Time: twoDigit(h) + "00",
			}
		}
	}
	prev := t.AddDate(0, 0, -1)
	return TimeWindow{Date: prev.Format(DateLayout), Time: "2300"}
}

// MidTermIssue resolves the mid-term publication timestamp (yyyyMMddHHmm)
// valid at now. Mid-term forecasts publish twice daily at 06:00 and 18:00.
func MidTermIssue(now time.Time) string {
	switch h := now.Hour(); {
	case h < 6:
		return now.AddDate(0, 0, -1).Format(DateLayout) + "1800"
	case h < 18:
		return now.Format(DateLayout) + "0600"
	default:
		return now.Format(DateLayout) + "1800"
	}
}

func twoDigit(h int) string {
	return string([]byte{'0' + byte(h/10), '0' + byte(h%10)})
}
