// Package core provides money parsing and handling utilities.
//
// This file contains the strict input parser used at the boundary and the
// display formatter/parser pair used only for rendering.
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when none is configured.
const DefaultCurrency = money.IDR

// ParseAmount converts a user-typed decimal string into a positive Amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// grouping separators and anything that is not a digit are rejected; the
// result must be greater than zero.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Amount{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Amount{}, ErrInvalidAmount
	}
	for _, part := range parts {
		for _, r := range part {
			if !unicode.IsDigit(r) {
				return Amount{}, ErrInvalidAmount
			}
		}
	}
	if parts[0] == "" {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{d}, nil
}

// LookupCurrency returns the go-money currency for code, or an error if the
// code is unknown.
func LookupCurrency(code string) (*money.Currency, error) {
	c := money.GetCurrency(strings.ToUpper(strings.TrimSpace(code)))
	if c == nil {
		return nil, fmt.Errorf("unknown currency %q", code)
	}
	return c, nil
}

// Format renders an amount for display in the given currency, rounded to the
// currency's minor unit. Unknown currencies fall back to DefaultCurrency.
func Format(a Amount, currency string) string {
	c, err := LookupCurrency(currency)
	if err != nil {
		c = money.GetCurrency(DefaultCurrency)
	}
	minor := a.Decimal.Shift(int32(c.Fraction)).Round(0).IntPart()
	return c.Formatter().Format(minor)
}

// Parse is the inverse of Format. It is permissive: the currency symbol,
// spaces and grouping separators are dropped, the currency's decimal
// separator becomes a dot, and any other non-numeric character is ignored.
// It does not check the sign; use ParseAmount for validated input.
func Parse(display string, currency string) (Amount, error) {
	c, err := LookupCurrency(currency)
	if err != nil {
		c = money.GetCurrency(DefaultCurrency)
	}

	s := strings.ReplaceAll(display, c.Grapheme, "")
	negative := strings.Contains(s, "-")
	if c.Thousand != "" {
		s = strings.ReplaceAll(s, c.Thousand, "")
	}
	if c.Decimal != "" && c.Decimal != "." {
		s = strings.ReplaceAll(s, c.Decimal, ".")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return Amount{}, fmt.Errorf("no digits in %q", display)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse %q: %w", display, err)
	}
	if negative {
		d = d.Neg()
	}
	return Amount{d}, nil
}
