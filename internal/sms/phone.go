package sms

import "strings"

// FormatPhone converts a locally formatted phone number into international
// form for the gateway: a leading 0 is replaced by the country code.
// Numbers already in international form are returned with spaces stripped.
func FormatPhone(phone, countryCode string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	if phone == "" {
		return phone
	}

	if strings.HasPrefix(phone, "+") {
		return phone
	}

	if strings.HasPrefix(phone, "0") {
		return countryCode + phone[1:]
	}

	return countryCode + phone
}
