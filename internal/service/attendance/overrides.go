package attendance

import (
	"strings"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/timecode"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ParseOverrides converts operator input into decimal overrides. Day fields
// take a plain number, hour fields a number or H:MM, and minute fields whole
// minutes or H:MM[:SS]. Every invalid entry is reported.
func ParseOverrides(raw attendance.RawOverrides) (attendance.Overrides, error) {
	parsed := make(attendance.Overrides, len(raw))
	var errs validator.ValidationErrors

	for _, field := range attendance.Fields {
		text, ok := raw[field]
		if !ok {
			continue
		}
		value, msg := parseValue(field, strings.TrimSpace(text))
		if msg != "" {
			errs = append(errs, validator.ValidationError{Field: string(field), Message: msg})
			continue
		}
		parsed[field] = value
	}
	for field := range raw {
		if !field.Valid() {
			errs = append(errs, validator.ValidationError{Field: string(field), Message: "unknown field"})
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return parsed, nil
}

func parseValue(field attendance.Field, text string) (decimal.Decimal, string) {
	if text == "" {
		return decimal.Zero, "is required"
	}
	if strings.HasPrefix(text, "-") {
		return decimal.Zero, "must be non-negative"
	}

	switch field.Unit() {
	case attendance.UnitDays:
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, "must be a number"
		}
		return d, ""
	case attendance.UnitMinutes:
		if strings.Contains(text, ":") {
			return decimal.NewFromInt(int64(timecode.FlexibleToSeconds(text) / 60)), ""
		}
		d, err := decimal.NewFromString(text)
		if err != nil || !d.IsInteger() {
			return decimal.Zero, "must be a whole number of minutes or H:MM"
		}
		return d, ""
	default:
		if strings.Contains(text, ":") {
			return decimal.NewFromFloat(timecode.ClockToHours(text)).Round(4), ""
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Zero, "must be a number or H:MM"
		}
		return d, ""
	}
}
