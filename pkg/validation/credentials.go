package validation

import "regexp"

var emailPattern = regexp.MustCompile(`^[^` + spaceClass + `@]+@[^` + spaceClass + `@]+\.[^` + spaceClass + `@]+$`)

// Credential field names used by SignUp.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

// Email returns the first failing rule for an address, or "" when valid.
func Email(email string) string {
	if trimText(email) == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Please enter a valid email address"
	}
	if textLength(email) > maxEmailLen {
		return "Email must be 254 characters or less"
	}
	return ""
}

// Password returns the first failing rule for a password, or "" when valid.
func Password(password string) string {
	n := textLength(password)
	switch {
	case n == 0:
		return "Password is required"
	case n < minPassLen:
		return "Password must be at least 6 characters long"
	case n > maxPassLen:
		return "Password must be 128 characters or less"
	}
	return ""
}

// SignUp validates the registration form, including the confirmation field.
func SignUp(email, password, confirm string) Errors {
	errs := Errors{}
	if msg := Email(email); msg != "" {
		errs[FieldEmail] = msg
	}
	if msg := Password(password); msg != "" {
		errs[FieldPassword] = msg
	}
	if password != confirm {
		errs[FieldConfirmPassword] = "Passwords do not match"
	}
	return errs
}
