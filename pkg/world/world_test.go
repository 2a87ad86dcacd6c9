package world

import (
	"encoding/json"
	"testing"
)

func TestSeasonForMonth(t *testing.T) {
	tests := []struct {
		month int
		want  Season
	}{
		{0, Winter}, {1, Winter}, {2, Spring}, {4, Spring},
		{5, Summer}, {7, Summer}, {8, Autumn}, {10, Autumn}, {11, Winter}, {14, Spring},
	}
	for _, tt := range tests {
		if got := SeasonForMonth(tt.month); got != tt.want {
			t.Errorf("SeasonForMonth(%d) = %s, want %s", tt.month, got, tt.want)
		}
	}
}

func TestClock_Advance(t *testing.T) {
	c := Clock{Turn: 0, Season: Winter, Month: "January"}
	for i := 0; i < 8; i++ {
		c = c.Advance(4)
	}
	if c.Turn != 8 {
		t.Errorf("Turn = %d, want 8", c.Turn)
	}
	if c.Month != "March" || c.Season != Spring {
		t.Errorf("got %s/%s, want March/spring", c.Month, c.Season)
	}

	c = Clock{}.Advance(0)
	if c.Turn != 1 || c.Month != "February" {
		t.Errorf("turnsPerMonth<1 should act as monthly, got turn %d month %s", c.Turn, c.Month)
	}
}

func TestClockAt(t *testing.T) {
	c := ClockAt(14*12+6, 1)
	if c.Month != "July" || c.Year != 14 || c.Season != Summer {
		t.Errorf("got %s/%d/%s, want July/14/summer", c.Month, c.Year, c.Season)
	}
	if c := (Clock{Weather: "snow"}).Advance(4); c.Weather != "snow" {
		t.Errorf("Expected weather to carry over, got %q", c.Weather)
	}
}

func TestSeasonJSON(t *testing.T) {
	var s Season
	if err := json.Unmarshal([]byte(`"winter"`), &s); err != nil || s != Winter {
		t.Fatalf("unmarshal winter: %v %s", err, s)
	}
	if err := json.Unmarshal([]byte(`"monsoon"`), &s); err == nil {
		t.Error("expected error for unknown season")
	}
}

func TestSexJSON(t *testing.T) {
	var s Sex
	if err := json.Unmarshal([]byte(`"female"`), &s); err != nil || s != Female {
		t.Fatalf("unmarshal female: %v %s", err, s)
	}
	if err := json.Unmarshal([]byte(`"other"`), &s); err == nil {
		t.Error("expected error for unknown sex")
	}
}
