package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"whvmatch/internal/models"
)

var australianStates = map[string]struct{}{
	"ACT": {}, "NSW": {}, "NT": {}, "QLD": {}, "SA": {}, "TAS": {}, "VIC": {}, "WA": {},
}

// ValidateRole accepts the two marketplace roles.
func ValidateRole(role string) (models.Role, error) {
	r, ok := models.ParseRole(role)
	if !ok {
		return "", fmt.Errorf("role must be %q or %q", models.RoleEmployer, models.RoleWHV)
	}
	return r, nil
}

// ValidateState accepts an empty value or an Australian state/territory code.
func ValidateState(state string) error {
	if state == "" {
		return nil
	}
	if _, ok := australianStates[strings.ToUpper(state)]; !ok {
		return fmt.Errorf("state must be an Australian state or territory code")
	}
	return nil
}

// ValidateVisa accepts empty values or the known visa subclasses and stages.
func ValidateVisa(visaType models.VisaType, stage models.VisaStage) error {
	switch visaType {
	case "", models.VisaType417, models.VisaType462:
	default:
		return fmt.Errorf("visa_type must be 417 or 462")
	}
	switch stage {
	case "", models.VisaStageFirst, models.VisaStageSecond, models.VisaStageThird:
	default:
		return fmt.Errorf("visa_stage must be first, second or third")
	}
	return nil
}

// ValidateName checks a required display field.
func ValidateName(field, value string, max int) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%s must not exceed %d characters", field, max)
	}
	return nil
}

// ValidatePayRange checks that a job's pay range is non-negative and ordered.
func ValidatePayRange(min, max float64) error {
	if min < 0 || max < 0 {
		return fmt.Errorf("pay must not be negative")
	}
	if max != 0 && min > max {
		return fmt.Errorf("pay_min must not exceed pay_max")
	}
	return nil
}
