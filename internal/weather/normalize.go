package weather

import (
	"strconv"
	"strings"
)

// Domain category labels. These are the keys of every Reading the service
// hands out; upstream category codes never leak past normalization.
const (
	LabelTemp       = "기온(°C)"
	LabelHumidity   = "습도(%)"
	LabelRain1h     = "1시간 강수량(mm)"
	LabelPrecipType = "강수형태"
	LabelWindSpeed  = "풍속(m/s)"
	LabelWindDir    = "풍향(deg)"
	LabelWindEW     = "풍속(동서성분)(m/s)"
	LabelWindNS     = "풍속(남북성분)(m/s)"
	LabelWave       = "파고(m)"
	LabelPop        = "강수확률(%)"
	LabelSky        = "하늘상태"
	LabelSnow1h     = "1시간 신적설(cm)"
	LabelDailyMin   = "일 최저기온(°C)"
	LabelDailyMax   = "일 최고기온(°C)"
	LabelPM10       = "미세먼지"
	LabelPM25       = "초미세먼지"
	LabelPM10Value  = "미세먼지농도"
	LabelPM25Value  = "초미세먼지농도"
	LabelAirTime    = "측정시간"
)

// Sentinels for codes outside the documented tables and for sources that
// reported nothing.
const (
	LabelUnknown = "알 수 없음"
	LabelNone    = "없음"
	LabelNoData  = "정보없음"
	LabelNoRain  = "강수없음"

	defaultSky = "구름많음"
)

// observationLabels maps live-observation category codes to domain labels.
var observationLabels = map[string]string{
	"T1H": LabelTemp,
	"REH": LabelHumidity,
	"RN1": LabelRain1h,
	"PTY": LabelPrecipType,
	"WSD": LabelWindSpeed,
	"VEC": LabelWindDir,
}

// shortTermLabels maps short-term forecast category codes to domain labels.
var shortTermLabels = map[string]string{
	"POP": LabelPop,
	"PTY": LabelPrecipType,
	"PCP": LabelRain1h,
	"REH": LabelHumidity,
	"SNO": LabelSnow1h,
	"SKY": LabelSky,
	"TMP": LabelTemp,
	"TMN": LabelDailyMin,
	"TMX": LabelDailyMax,
	"UUU": LabelWindEW,
	"VVV": LabelWindNS,
	"WAV": LabelWave,
	"VEC": LabelWindDir,
	"WSD": LabelWindSpeed,
}

// ultraShortLabels maps ultra-short-term forecast category codes to domain
// labels. The ultra-short feed carries no precipitation probability.
var ultraShortLabels = map[string]string{
	"T1H": LabelTemp,
	"RN1": LabelRain1h,
	"SKY": LabelSky,
	"PTY": LabelPrecipType,
}

// precipTypeObserved covers live/ultra-short PTY codes (the observation
// feed distinguishes drizzle and flurries).
var precipTypeObserved = map[string]string{
	"0": LabelNone,
	"1": "비",
	"2": "비/눈",
	"3": "눈",
	"5": "빗방울",
	"6": "빗방울눈날림",
	"7": "눈날림",
}

// precipTypeForecast covers short-term PTY codes.
var precipTypeForecast = map[string]string{
	"0": LabelNone,
	"1": "비",
	"2": "비/눈",
	"3": "눈",
	"4": "소나기",
}

var skyStates = map[string]string{
	"1": "맑음",
	"3": "구름많음",
	"4": "흐림",
}

// Intensity bands. The short-term feed replaces exact amounts with band
// codes when precipitation is light.
var (
	rainBands = map[string]string{
		"1": "약한 비",
		"2": "보통 비",
		"3": "강한 비",
	}
	snowBands = map[string]string{
		"1": "보통 눈",
		"2": "많은 눈",
	}
	windBands = map[string]string{
		"1": "약한 바람",
		"2": "약간 강한 바람",
		"3": "강한 바람",
	}
)

var airGrades = map[string]string{
	"1": "좋음",
	"2": "보통",
	"3": "나쁨",
	"4": "매우나쁨",
}

// CoerceNumeric converts a numeric-looking string (an optional leading
// sign, digits, at most one decimal point) to float64 and passes every
// other string through unchanged.
func CoerceNumeric(s string) any {
	body := strings.TrimPrefix(s, "-")
	if body == "" || strings.Count(body, ".") > 1 {
		return s
	}
	digits := strings.ReplaceAll(body, ".", "")
	if digits == "" {
		return s
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return s
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return f
}

// codeLabel translates a code through a table. A value that is already one
// of the table's labels passes through unchanged, which makes the
// translation idempotent; anything else maps to fallback.
func codeLabel(table map[string]string, value, fallback string) string {
	if label, ok := table[value]; ok {
		return label
	}
	for _, label := range table {
		if label == value {
			return value
		}
	}
	return fallback
}

// bandLabel buckets an intensity band code; values outside the band table
// (exact amounts, "강수없음") are coerced like any numeric field.
func bandLabel(table map[string]string, value string) any {
	if label, ok := table[value]; ok {
		return label
	}
	for _, label := range table {
		if label == value {
			return value
		}
	}
	return CoerceNumeric(value)
}

// NormalizeObservation turns live-observation rows into a Reading.
// Unrecognized categories are dropped; unknown precipitation codes map to
// the explicit unknown sentinel.
func NormalizeObservation(rows []Row) Reading {
	parsed := Reading{}
	for _, row := range rows {
		label, ok := observationLabels[row.Category]
		if !ok {
			continue
		}
		if row.Category == "PTY" {
			parsed[label] = codeLabel(precipTypeObserved, row.Value, LabelUnknown)
			continue
		}
		parsed[label] = CoerceNumeric(row.Value)
	}
	return parsed
}

// NormalizeShortTermGrid turns short-term forecast rows into a ForecastGrid.
func NormalizeShortTermGrid(rows []Row) ForecastGrid {
	grid := ForecastGrid{}
	for _, row := range rows {
		label, ok := shortTermLabels[row.Category]
		if !ok {
			continue
		}

		var value any
		switch row.Category {
		case "PTY":
			value = codeLabel(precipTypeForecast, row.Value, LabelUnknown)
		case "SKY":
			value = codeLabel(skyStates, row.Value, LabelUnknown)
		case "PCP":
			value = bandLabel(rainBands, row.Value)
		case "SNO":
			value = bandLabel(snowBands, row.Value)
		case "WSD":
			value = bandLabel(windBands, row.Value)
		default:
			value = CoerceNumeric(row.Value)
		}

		grid.put(row.Date, row.Time, label, value)
	}
	return grid
}

// NormalizeUltraShortGrid turns ultra-short-term forecast rows into a
// ForecastGrid. Unknown sky/precipitation codes fall back to the same
// defaults the observation feed uses.
func NormalizeUltraShortGrid(rows []Row) ForecastGrid {
	grid := ForecastGrid{}
	for _, row := range rows {
		label, ok := ultraShortLabels[row.Category]
		if !ok {
			continue
		}

		var value any
		switch row.Category {
		case "SKY":
			value = codeLabel(skyStates, row.Value, defaultSky)
		case "PTY":
			value = codeLabel(precipTypeObserved, row.Value, LabelNone)
		default:
			value = CoerceNumeric(row.Value)
		}

		grid.put(row.Date, row.Time, label, value)
	}
	return grid
}

func (g ForecastGrid) put(date, hhmm, label string, value any) {
	times, ok := g[date]
	if !ok {
		times = map[string]Reading{}
		g[date] = times
	}
	slot, ok := times[hhmm]
	if !ok {
		slot = Reading{}
		times[hhmm] = slot
	}
	slot[label] = value
}

// ExtremesFromGrid extracts today's forecast min/max temperatures from a
// normalized short-term grid.
func ExtremesFromGrid(grid ForecastGrid, today string) Reading {
	parsed := Reading{}
	times, ok := grid[today]
	if !ok {
		return parsed
	}
	for _, hhmm := range sortedKeys(times) {
		slot := times[hhmm]
		if v, ok := toFloat(slot[LabelDailyMin]); ok {
			parsed[LabelDailyMin] = v
		}
		if v, ok := toFloat(slot[LabelDailyMax]); ok {
			parsed[LabelDailyMax] = v
		}
	}
	return parsed
}

// SkyFromGrid returns the sky state of the earliest slot in a normalized
// ultra-short grid, defaulting when the feed carried none.
func SkyFromGrid(grid ForecastGrid) Reading {
	for _, date := range sortedKeys(grid) {
		times := grid[date]
		for _, hhmm := range sortedKeys(times) {
			if sky, ok := times[hhmm][LabelSky].(string); ok {
				return Reading{LabelSky: sky}
			}
		}
	}
	return Reading{LabelSky: defaultSky}
}

// NormalizeAirQuality turns an air-quality station record into a Reading.
// The hourly grade is preferred over the daily one; a station that reported
// nothing yields the explicit no-data sentinels.
func NormalizeAirQuality(row AirRow) Reading {
	if row == (AirRow{}) {
		return Reading{LabelPM10: LabelNoData, LabelPM25: LabelNoData}
	}

	pm10 := row.PM10Grade1h
	if pm10 == "" {
		pm10 = row.PM10Grade
	}
	pm25 := row.PM25Grade1h
	if pm25 == "" {
		pm25 = row.PM25Grade
	}

	parsed := Reading{
		LabelPM10:    codeLabel(airGrades, pm10, LabelNoData),
		LabelPM25:    codeLabel(airGrades, pm25, LabelNoData),
		LabelAirTime: row.DataTime,
	}
	parsed[LabelPM10Value] = orDash(row.PM10Value)
	parsed[LabelPM25Value] = orDash(row.PM25Value)
	return parsed
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// NormalizeMidTermTemps extracts the day-3..7 min/max temperature series
// from a mid-term temperature row. Days without a parseable minimum and
// maximum are simply absent from the result.
func NormalizeMidTermTemps(row MidTermRow) MidTermTemps {
	temps := MidTermTemps{Min: map[int]float64{}, Max: map[int]float64{}}
	for day := 3; day <= 7; day++ {
		if v, ok := midFloat(row["taMin"+strconv.Itoa(day)]); ok {
			temps.Min[day] = v
		}
		if v, ok := midFloat(row["taMax"+strconv.Itoa(day)]); ok {
			temps.Max[day] = v
		}
	}
	return temps
}

// NormalizeMidTermLand extracts the day-3..7 sky-state and precipitation
// probability series from a mid-term land forecast row.
func NormalizeMidTermLand(row MidTermRow) MidTermLand {
	land := MidTermLand{
		SkyAM: map[int]string{},
		SkyPM: map[int]string{},
		PopAM: map[int]float64{},
		PopPM: map[int]float64{},
	}
	for day := 3; day <= 7; day++ {
		d := strconv.Itoa(day)
		if s, ok := row["wf"+d+"Am"].(string); ok && s != "" {
			land.SkyAM[day] = s
		}
		if s, ok := row["wf"+d+"Pm"].(string); ok && s != "" {
			land.SkyPM[day] = s
		}
		if v, ok := midFloat(row["rnSt"+d+"Am"]); ok {
			land.PopAM[day] = v
		}
		if v, ok := midFloat(row["rnSt"+d+"Pm"]); ok {
			land.PopPM[day] = v
		}
	}
	return land
}

// midFloat accepts the numeric shapes the mid-term services mix freely:
// JSON numbers and numeric strings.
func midFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		if f, ok := CoerceNumeric(t).(float64); ok {
			return f, true
		}
	}
	return 0, false
}
