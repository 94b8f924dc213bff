package filters

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Decimal parses an optional decimal query value.
func Decimal(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Field(field, field+" must be a decimal number")
	}
	return &value, nil
}

// Int parses an optional integer query value.
func Int(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.Field(field, field+" must be an integer")
	}
	return &value, nil
}

// Bool parses an optional boolean query value.
func Bool(field, raw string) (*bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, pkgerrors.Field(field, field+" must be true or false")
	}
	return &value, nil
}

// Numeric renders a decimal as a SQL parameter compared as a number on every driver.
func Numeric(value decimal.Decimal) any {
	return value.String()
}
