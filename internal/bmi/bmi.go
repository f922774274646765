package bmi

import (
	"errors"
	"math"
)

var ErrInvalidInput = errors.New("Please enter valid weight and height.")

type Category string

const (
	Underweight Category = "Underweight"
	Normal      Category = "Normal weight"
	Overweight  Category = "Overweight"
	Obese       Category = "Obese"
)

type Result struct {
	Value       float64  `json:"bmi"`
	Category    Category `json:"status"`
	Description string   `json:"description"`
}

// Calculate returns the body mass index rounded to one decimal. The category is
// taken from the rounded value, the one shown to the user.
func Calculate(weightKg, heightCm float64) (Result, error) {
	if !(weightKg > 0) || !(heightCm > 0) || math.IsInf(weightKg, 0) || math.IsInf(heightCm, 0) {
		return Result{}, ErrInvalidInput
	}

	heightM := heightCm / 100
	value := math.Round(weightKg/(heightM*heightM)*10) / 10
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return Result{}, ErrInvalidInput
	}

	category := Classify(value)
	return Result{
		Value:       value,
		Category:    category,
		Description: category.Description(),
	}, nil
}

func Classify(value float64) Category {
	switch {
	case value < 18.5:
		return Underweight
	case value < 25:
		return Normal
	case value < 30:
		return Overweight
	default:
		return Obese
	}
}

func (c Category) Description() string {
	switch c {
	case Underweight:
		return "Consider consulting with a healthcare provider about healthy weight gain."
	case Normal:
		return "Great! You're in the healthy weight range. Keep up the good work!"
	case Overweight:
		return "Consider incorporating regular exercise and a balanced diet."
	default:
		return "It's recommended to consult with a healthcare provider about weight management."
	}
}
