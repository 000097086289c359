package convert

import (
	"errors"
	"math"
)

// Conversion failures callers can map to client-facing messages.
var (
	ErrInvalidLengthUnits      = errors.New("invalid length units")
	ErrInvalidWeightUnits      = errors.New("invalid weight units")
	ErrInvalidTemperatureUnits = errors.New("invalid temperature units")
	ErrInvalidType             = errors.New("invalid conversion type")
)

// Conversion types accepted by Convert.
const (
	TypeLength      = "length"
	TypeWeight      = "weight"
	TypeTemperature = "temperature"
)

var lengthToMeters = map[string]float64{
	"m":  1,
	"km": 1000,
	"cm": 0.01,
	"mm": 0.001,
	"mi": 1609.34,
	"yd": 0.9144,
	"ft": 0.3048,
	"in": 0.0254,
}

var weightToKg = map[string]float64{
	"kg":  1,
	"g":   0.001,
	"mg":  0.000001,
	"lb":  0.453592,
	"oz":  0.0283495,
	"ton": 1000,
}

// Convert converts value between units of the given conversion type.
// The result is rounded to 4 decimal places.
func Convert(value float64, fromUnit, toUnit, conversionType string) (float64, error) {
	var result float64

	switch conversionType {
	case TypeLength:
		from, okFrom := lengthToMeters[fromUnit]
		to, okTo := lengthToMeters[toUnit]
		if !okFrom || !okTo {
			return 0, ErrInvalidLengthUnits
		}
		result = value * from / to

	case TypeWeight:
		from, okFrom := weightToKg[fromUnit]
		to, okTo := weightToKg[toUnit]
		if !okFrom || !okTo {
			return 0, ErrInvalidWeightUnits
		}
		result = value * from / to

	case TypeTemperature:
		var err error
		result, err = convertTemperature(value, fromUnit, toUnit)
		if err != nil {
			return 0, err
		}

	default:
		return 0, ErrInvalidType
	}

	return math.Round(result*10000) / 10000, nil
}

func convertTemperature(value float64, fromUnit, toUnit string) (float64, error) {
	switch {
	case fromUnit == "C" && toUnit == "F":
		return value*9/5 + 32, nil
	case fromUnit == "F" && toUnit == "C":
		return (value - 32) * 5 / 9, nil
	case fromUnit == "C" && toUnit == "K":
		return value + 273.15, nil
	case fromUnit == "K" && toUnit == "C":
		return value - 273.15, nil
	case fromUnit == "F" && toUnit == "K":
		return (value-32)*5/9 + 273.15, nil
	case fromUnit == "K" && toUnit == "F":
		return (value-273.15)*9/5 + 32, nil
	default:
		return 0, ErrInvalidTemperatureUnits
	}
}
