package weather

import (
	"reflect"
	"testing"
	"time"
)

func TestAggregateDaily(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	slots := []HourlySlot{
		{Date: "20240510", Time: "0900", Temperature: 14.0, Sky: "맑음", PrecipProb: 20},
		{Date: "20240510", Time: "1200", Temperature: 19.0, Sky: "맑음", PrecipProb: 60},
		{Date: "20240510", Time: "1500", Temperature: 21.5, Sky: "구름많음", PrecipProb: 0},
		{Date: "20240511", Time: "0300", Temperature: 11.0, Sky: "흐림", PrecipProb: 80},
		{Date: "20240520", Time: "0900", Temperature: 30.0, Sky: "맑음"}, // beyond the near horizon
	}

	got := AggregateDaily(now, slots)
	want := []DailySummary{
		{Date: "20240510", MinTemp: 14.0, MaxTemp: 21.5, SkyAM: "맑음", SkyPM: "맑음", PrecipProb: 60},
		{Date: "20240511", MinTemp: 11.0, MaxTemp: 11.0, SkyAM: "흐림", SkyPM: "흐림", PrecipProb: 80},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestAggregateDailySkyTieBreak(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	slots := []HourlySlot{
		{Date: "20240510", Time: "0900", Temperature: 10, Sky: "구름많음"},
		{Date: "20240510", Time: "1200", Temperature: 10, Sky: "맑음"},
		{Date: "20240510", Time: "1500", Temperature: 10, Sky: "맑음"},
		{Date: "20240510", Time: "1800", Temperature: 10, Sky: "구름많음"},
	}
	got := AggregateDaily(now, slots)
	if len(got) != 1 || got[0].SkyAM != "구름많음" {
		t.Errorf("tie must go to the first-encountered sky state, got %+v", got)
	}
}

func TestMidTermDaily(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	temps := MidTermTemps{
		Min: map[int]float64{3: 9.0, 5: 7.0},
		Max: map[int]float64{3: 20.0, 4: 22.0, 5: 18.0},
	}
	land := MidTermLand{
		SkyAM: map[int]string{3: "맑음"},
		SkyPM: map[int]string{3: "구름많음", 5: "흐림"},
		PopAM: map[int]float64{3: 20, 5: 70},
		PopPM: map[int]float64{3: 60, 5: 40},
	}

	got := MidTermDaily(now, temps, land)
	want := []DailySummary{
		{Date: "20240513", MinTemp: 9.0, MaxTemp: 20.0, SkyAM: "맑음", SkyPM: "구름많음", PrecipProb: 60},
		{Date: "20240515", MinTemp: 7.0, MaxTemp: 18.0, SkyAM: LabelNoData, SkyPM: "흐림", PrecipProb: 70},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestMergeHorizons(t *testing.T) {
	near := []DailySummary{
		{Date: "20240511", MinTemp: 11, MaxTemp: 18},
		{Date: "20240512", MinTemp: 12, MaxTemp: 19},
	}
	mid := []DailySummary{
		{Date: "20240512", MinTemp: 99, MaxTemp: 99},
		{Date: "20240514", MinTemp: 9, MaxTemp: 16},
	}

	got := MergeHorizons(near, mid)
	if len(got) != 3 {
		t.Fatalf("expected 3 days, got %d: %+v", len(got), got)
	}
	if got[0].Date != "20240511" || got[1].Date != "20240512" || got[2].Date != "20240514" {
		t.Errorf("merged days out of order: %+v", got)
	}
	if got[1].MinTemp != 12 {
		t.Errorf("near horizon must win an overlapping date, got %+v", got[1])
	}
}
