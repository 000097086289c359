package convert

import (
	"math"
	"testing"
)

func TestConvert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		value          float64
		fromUnit       string
		toUnit         string
		conversionType string
		want           float64
		wantErr        bool
	}{
		{"km to m", 1, "km", "m", "length", 1000, false},
		{"m to cm", 2, "m", "cm", "length", 200, false},
		{"mi to km", 1, "mi", "km", "length", 1.6093, false},
		{"ft to in", 1, "ft", "in", "length", 12, false},
		{"same length unit", 42, "m", "m", "length", 42, false},
		{"kg to g", 1, "kg", "g", "weight", 1000, false},
		{"lb to kg", 10, "lb", "kg", "weight", 4.5359, false},
		{"ton to kg", 2, "ton", "kg", "weight", 2000, false},
		{"C to F", 100, "C", "F", "temperature", 212, false},
		{"F to C", 32, "F", "C", "temperature", 0, false},
		{"C to K", 0, "C", "K", "temperature", 273.15, false},
		{"K to C", 273.15, "K", "C", "temperature", 0, false},
		{"F to K", 32, "F", "K", "temperature", 273.15, false},
		{"K to F", 273.15, "K", "F", "temperature", 32, false},
		{"unknown length unit", 1, "furlong", "m", "length", 0, true},
		{"unknown weight unit", 1, "stone", "kg", "weight", 0, true},
		{"unknown temperature pair", 1, "C", "R", "temperature", 0, true},
		{"unknown type", 1, "m", "km", "area", 0, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Convert(tt.value, tt.fromUnit, tt.toUnit, tt.conversionType)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Convert = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvertRoundsToFourDecimals(t *testing.T) {
	t.Parallel()

	got, err := Convert(1, "yd", "mi", "length")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	// 0.9144/1609.34 = 0.000568...; rounded to 4 places.
	if got != 0.0006 {
		t.Errorf("Convert = %v, want 0.0006", got)
	}
}
