package auth

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

var (
	genders        = map[string]bool{"Male": true, "Female": true, "Other": true}
	activityLevels = map[string]bool{
		"Sedentary":         true,
		"Lightly Active":    true,
		"Moderately Active": true,
		"Very Active":       true,
	}
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("Email is required")
	}
	addr, err := mail.ParseAddress(email)
	// reject display names, "Ana <ana@example.com>" is not an email field value
	if err != nil || addr.Address != email {
		return invalid("Invalid email")
	}
	return nil
}

func validateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if len(password) < 6 {
		return invalid("Password must be at least 6 characters")
	}
	return nil
}

type registerRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"passw"`
	Age            int    `json:"age"`
	Height         int    `json:"height"`
	Weight         int    `json:"weight"`
	Gender         string `json:"gender"`
	ActivityLevel  string `json:"activityLevel"`
	ProfilePicture string `json:"profilePicture"`
}

func (r registerRequest) validate() error {
	if len(strings.TrimSpace(r.Name)) < 3 {
		return invalid("Name must be at least 3 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if len(r.Password) < 8 {
		return invalid("Password must be at least 8 characters")
	}
	if !strongPassword(r.Password) {
		return invalid("Password must contain upper, lower, number & special char")
	}
	if r.Age < 1 {
		return invalid("Age must be a positive number")
	}
	if r.Height < 50 {
		return invalid("Height must be realistic")
	}
	if r.Weight < 20 {
		return invalid("Weight must be realistic")
	}
	if !genders[r.Gender] {
		return invalid("Gender must be one of Male, Female, Other")
	}
	if !activityLevels[r.ActivityLevel] {
		return invalid("Invalid activity level")
	}
	return nil
}

func strongPassword(password string) bool {
	var upper, lower, digit, special bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case strings.ContainsRune("!@#$%^&*", c):
			special = true
		}
	}
	return upper && lower && digit && special
}

func validateReset(password, confirmPassword string) error {
	if len(password) < 6 {
		return invalid("Password must be at least 6 characters")
	}
	if password != confirmPassword {
		return invalid("Passwords do not match!")
	}
	return nil
}
