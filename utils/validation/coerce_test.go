package validation

import (
	"encoding/json"
	"testing"
)

func TestCoerceScore(t *testing.T) {
	cases := []struct {
		name string
		in   interface{}
		want int
	}{
		{"nil defaults to zero", nil, 0},
		{"int passes through", 42, 42},
		{"json number", float64(17), 17},
		{"fractional truncates", 17.9, 17},
		{"numeric string", "23", 23},
		{"padded numeric string", "  23 ", 23},
		{"float string truncates", "23.7", 23},
		{"empty string", "", 0},
		{"garbage string", "abc", 0},
		{"mixed garbage", "12abc", 0},
		{"negative passes through", "-5", -5},
		{"bool is not a score", true, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CoerceScore(tc.in); got != tc.want {
				t.Errorf("CoerceScore(%#v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestCoerceScoreJSONNumber(t *testing.T) {
	if got := CoerceScore(json.Number("31")); got != 31 {
		t.Errorf("CoerceScore(json.Number) = %d, want 31", got)
	}
	if got := CoerceScore(json.Number("31.9")); got != 31 {
		t.Errorf("CoerceScore(json.Number float) = %d, want 31", got)
	}
	if got := CoerceScore(json.Number("x")); got != 0 {
		t.Errorf("CoerceScore(bad json.Number) = %d, want 0", got)
	}
}
