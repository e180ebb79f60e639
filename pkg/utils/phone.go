package utils

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// CheckPhone validates a phone number against the regions the service is
// deployed for and returns it in international format. Numbers without a
// recognised country prefix are parsed as Slovak.
func CheckPhone(phone string) (string, bool) {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 3 {
		return "", false
	}

	region := "SK"
	switch {
	case strings.HasPrefix(phone, "+43"):
		region = "AT"
	case strings.HasPrefix(phone, "+48"):
		region = "PL"
	case strings.HasPrefix(phone, "+421"):
		region = "SK"
	case strings.HasPrefix(phone, "+420"):
		region = "CZ"
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", false
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", false
	}

	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL), true
}
