// Package util provides a collection of domain-agnostic utility functions and cross-platform helpers.
package util

import "strconv"

// IntOrNil parses a base-10 integer, returning nil for empty or unparsable input.
func IntOrNil(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// FloatOrNil parses a floating point number, returning nil for empty or unparsable input.
func FloatOrNil(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
