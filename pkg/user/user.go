package user

import (
	"errors"
	"regexp"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// phoneNumberPattern accepts E.164-style numbers with optional spacing,
// e.g. "+55 11 91234-5678".
var phoneNumberPattern = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,18}[0-9]$`)

type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	PhoneNumber string
	Settings    Settings
}

type Settings struct {
	Timezone string
	// WeekFirstDay anchors the 7-day week window used by the agenda views.
	WeekFirstDay   time.Weekday
	VoiceAssistant bool
}

// ValidatePhoneNumber rejects malformed numbers before any network call.
// An empty number is allowed: the field is optional.
func ValidatePhoneNumber(number string) error {
	if number == "" {
		return nil
	}
	if !phoneNumberPattern.MatchString(number) {
		return ErrInvalidPhoneNumber
	}
	return nil
}
