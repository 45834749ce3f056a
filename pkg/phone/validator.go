package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// PhoneType represents the type of phone number.
type PhoneType string

const (
	TypeFixedLine         PhoneType = "FIXED_LINE"
	TypeMobile            PhoneType = "MOBILE"
	TypeFixedLineOrMobile PhoneType = "FIXED_LINE_OR_MOBILE"
	TypeTollFree          PhoneType = "TOLL_FREE"
	TypeVoip              PhoneType = "VOIP"
	TypeUnknown           PhoneType = "UNKNOWN"
)

// ValidationResult contains the result of phone number validation.
type ValidationResult struct {
	IsValid             bool      `json:"isValid"`
	E164Format          string    `json:"e164Format"`
	InternationalFormat string    `json:"internationalFormat"`
	NationalFormat      string    `json:"nationalFormat"`
	CountryCode         string    `json:"countryCode"`
	PhoneType           PhoneType `json:"phoneType"`
}

// ValidatePhone validates a phone number and returns detailed information.
// countryCode defaults to IN since most buyers register Indian numbers.
func ValidatePhone(phone, countryCode string) (*ValidationResult, error) {
	if phone == "" {
		return nil, fmt.Errorf("phone number cannot be empty")
	}
	if countryCode == "" {
		countryCode = "IN"
	}

	parsed, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &ValidationResult{
		IsValid:             phonenumbers.IsValidNumber(parsed),
		E164Format:          phonenumbers.Format(parsed, phonenumbers.E164),
		InternationalFormat: phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL),
		NationalFormat:      phonenumbers.Format(parsed, phonenumbers.NATIONAL),
		CountryCode:         phonenumbers.GetRegionCodeForNumber(parsed),
		PhoneType:           numberType(parsed),
	}, nil
}

// Normalize returns the E.164 form of a phone number, or an error when the
// number cannot be parsed as a valid number in the given region.
func Normalize(phone, countryCode string) (string, error) {
	result, err := ValidatePhone(phone, countryCode)
	if err != nil {
		return "", err
	}
	if !result.IsValid {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}
	return result.E164Format, nil
}

func numberType(parsed *phonenumbers.PhoneNumber) PhoneType {
	switch phonenumbers.GetNumberType(parsed) {
	case phonenumbers.FIXED_LINE:
		return TypeFixedLine
	case phonenumbers.MOBILE:
		return TypeMobile
	case phonenumbers.FIXED_LINE_OR_MOBILE:
		return TypeFixedLineOrMobile
	case phonenumbers.TOLL_FREE:
		return TypeTollFree
	case phonenumbers.VOIP:
		return TypeVoip
	default:
		return TypeUnknown
	}
}
