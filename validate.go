package passedit

import "github.com/go-playground/validator/v10"

var emailValidator = validator.New()

// passwordsMatch requires exact byte equality. Two blanks match, which
// simply means no password change was requested.
func passwordsMatch(password, confirm string) bool {
	return password == confirm
}

func isBlank(s string) bool {
	return s == ""
}

// emailValid checks syntax only. Deliverability is not this endpoint's
// concern.
func emailValid(email string) bool {
	return emailValidator.Var(email, "email") == nil
}
