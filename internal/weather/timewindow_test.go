package weather

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2024, 5, 10, hour, min, 0, 0, time.UTC)
}

func TestLiveObservationWindow(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDate string
		wantTime string
	}{
		{"after lag, same hour", at(10, 50), "20240510", "1000"},
		{"before lag, previous hour", at(10, 30), "20240510", "0900"},
		{"exactly at lag boundary", at(10, 40), "20240510", "1000"},
		{"midnight rollback", at(0, 20), "20240509", "2300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := LiveObservationWindow(tt.now)
			if win.Date != tt.wantDate || win.Time != tt.wantTime {
				t.Errorf("got (%s, %s), want (%s, %s)", win.Date, win.Time, tt.wantDate, tt.wantTime)
			}
		})
	}
}

func TestUltraShortWindow(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDate string
		wantTime string
	}{
		{"mid-hour", at(11, 20), "20240510", "1030"},
		{"just before this hour's cycle posts", at(11, 44), "20240510", "1030"},
		{"this hour's cycle just posted", at(11, 45), "20240510", "1130"},
		{"midnight rollback", at(0, 10), "20240509", "2330"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := UltraShortWindow(tt.now)
			if win.Date != tt.wantDate || win.Time != tt.wantTime {
				t.Errorf("got (%s, %s), want (%s, %s)", win.Date, win.Time, tt.wantDate, tt.wantTime)
			}
		})
	}
}

func TestShortTermWindow(t *testing.T) {
	tests := []struct {
		name     string
		now      time.Time
		wantDate string
		wantTime string
	}{
		{"before first cycle rolls to yesterday 2300", at(1, 59), "20240509", "2300"},
		{"margin passed, today's 0200", at(2, 10), "20240510", "0200"},
		{"mid-morning resolves 0800", at(10, 30), "20240510", "0800"},
		{"just before a cycle's margin", at(11, 5), "20240510", "0800"},
		{"exactly at margin boundary", at(11, 10), "20240510", "1100"},
		{"late evening resolves 2300", at(23, 30), "20240510", "2300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			win := ShortTermWindow(tt.now)
			if win.Date != tt.wantDate || win.Time != tt.wantTime {
				t.Errorf("got (%s, %s), want (%s, %s)", win.Date, win.Time, tt.wantDate, tt.wantTime)
			}
		})
	}
}

// TestShortTermWindowAlwaysOnSchedule checks that, whatever the instant,
// the resolved base time is one of the eight published cycles.
func TestShortTermWindowAlwaysOnSchedule(t *testing.T) {
	published := map[string]bool{
		"0200": true, "0500": true, "0800": true, "1100": true,
		"1400": true, "1700": true, "2000": true, "2300": true,
	}

	start := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 48*60; i += 7 {
		now := start.Add(time.Duration(i) * time.Minute)
		win := ShortTermWindow(now)
		if !published[win.Time] {
			t.Fatalf("ShortTermWindow(%v) = %s, not a published cycle", now, win.Time)
		}
	}
}

func TestMidTermIssue(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before 06 uses yesterday evening", at(5, 59), "202405091800"},
		{"after 06 uses this morning", at(6, 1), "202405100600"},
		{"exactly 06 favors the new cycle", at(6, 0), "202405100600"},
		{"exactly 18 favors the new cycle", at(18, 0), "202405101800"},
		{"evening uses 18", at(23, 45), "202405101800"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MidTermIssue(tt.now); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}
