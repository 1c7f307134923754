package core

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxNameLength     = 255
	MaxUsernameLength = 150
	MaxYears          = 100 // exclusive
	MinPasswordLength = 8
	MaxPasswordBytes  = 72 // bcrypt limit
)

const (
	msgRequired = "This field is required."
	msgInteger  = "Enter a whole number."
	msgChoice   = "Select a valid choice."
)

// ValidateYearsOfExperience returns years unchanged if 0 <= years < MaxYears.
// Both the create and the update form of a redactor use it.
func ValidateYearsOfExperience(years int) (int, error) {
	if years >= MaxYears {
		return years, &ValidationError{"years_of_experience", "Years of experience must be less than 100"}
	}
	if years < 0 {
		return years, &ValidationError{"years_of_experience", "Years of experience must not be negative"}
	}
	return years, nil
}

// parseYears parses and validates raw form input.
func parseYears(raw string, errs FieldErrors) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		errs.Add("years_of_experience", msgRequired)
		return 0
	}
	years, err := strconv.Atoi(raw)
	if err != nil {
		errs.Add("years_of_experience", msgInteger)
		return 0
	}
	if _, err := ValidateYearsOfExperience(years); err != nil {
		errs.AddError("years_of_experience", err)
	}
	return years
}

func requireText(field, value string, maxLength int, errs FieldErrors) {
	if strings.TrimSpace(value) == "" {
		errs.Add(field, msgRequired)
		return
	}
	if maxLength > 0 {
		maxText(field, value, maxLength, errs)
	}
}

func maxText(field, value string, maxLength int, errs FieldErrors) {
	if n := utf8.RuneCountInString(value); n > maxLength {
		errs.Add(field, "Ensure this value has at most "+strconv.Itoa(maxLength)+" characters (it has "+strconv.Itoa(n)+").")
	}
}

// validUsername allows letters, digits and @.+-_ only.
func validUsername(username string) bool {
	for _, r := range username {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		switch r {
		case '@', '.', '+', '-', '_':
			continue
		}
		return false
	}
	return true
}

func validatePassword(username, password string, errs FieldErrors) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		errs.Add("password2", "This password is too short. It must contain at least "+strconv.Itoa(MinPasswordLength)+" characters.")
	}
	if len(password) > MaxPasswordBytes {
		errs.Add("password2", "This password is too long. It must contain at most "+strconv.Itoa(MaxPasswordBytes)+" bytes.")
	}
	if isNumeric(password) {
		errs.Add("password2", "This password is entirely numeric.")
	}
	if username != "" && strings.EqualFold(password, username) {
		errs.Add("password2", "The password is too similar to the username.")
	}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidatePassword returns the password rule violations, filed under "password2" like the create form does.
func ValidatePassword(username, password string) FieldErrors {
	var errs = FieldErrors{}
	validatePassword(username, password, errs)
	return errs
}
