package domain

import (
	"math"
	"strings"
)

// BMI expects weight in kilograms and height in centimeters. Non-positive input yields 0.
func BMI(weightKg, heightCm float64) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := heightCm / 100
	return weightKg / (h * h)
}

// RoundBMI rounds to two decimals for presentation.
func RoundBMI(bmi float64) float64 { return math.Round(bmi*100) / 100 }

type BMIBand string

const (
	BandUnderweight BMIBand = "underweight"
	BandNormal      BMIBand = "normal"
	BandOverweight  BMIBand = "overweight"
	BandObese       BMIBand = "obese"
)

var bandLabels = map[BMIBand]string{
	BandUnderweight: "Underweight",
	BandNormal:      "Normal weight",
	BandOverweight:  "Overweight",
	BandObese:       "Obese",
}

// aliases accepted by ParseBMIBand, keyed by normalized text
var bandAliases = map[string]BMIBand{
	"underweight":    BandUnderweight,
	"normal":         BandNormal,
	"normal weight":  BandNormal,
	"overweight":     BandOverweight,
	"obese":          BandObese,
	"obesity":        BandObese,
	"abaixo do peso": BandUnderweight,
	"peso normal":    BandNormal,
	"sobrepeso":      BandOverweight,
	"obesidade":      BandObese,
}

func (b BMIBand) Label() string { return bandLabels[b] }

// ClassifyBMI applies the WHO adult cut-offs 18.5 / 25 / 30.
func ClassifyBMI(bmi float64) BMIBand {
	switch {
	case bmi < 18.5:
		return BandUnderweight
	case bmi < 25:
		return BandNormal
	case bmi < 30:
		return BandOverweight
	default:
		return BandObese
	}
}

func ParseBMIBand(label string) (BMIBand, error) {
	key := strings.ToLower(strings.Join(strings.Fields(label), " "))
	key = strings.ReplaceAll(key, "_", " ")
	if b, ok := bandAliases[key]; ok {
		return b, nil
	}
	return "", Validation("unknown BMI range %q", label)
}
