// Copyright (c) 2026 The Barryland Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullInt64FromPtr(t *testing.T) {
	tests := []struct {
		name     string
		input    *int64
		expected sql.NullInt64
	}{
		{
			name:     "nil pointer",
			input:    nil,
			expected: sql.NullInt64{},
		},
		{
			name:     "positive value",
			input:    ptr(int64(42)),
			expected: sql.NullInt64{Int64: 42, Valid: true},
		},
		{
			name:     "zero value",
			input:    ptr(int64(0)),
			expected: sql.NullInt64{Int64: 0, Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NullInt64FromPtr(tt.input)
			if result != tt.expected {
				t.Errorf("NullInt64FromPtr() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestNullInt64Positive(t *testing.T) {
	tests := []struct {
		input int64
		valid bool
	}{
		{input: 7, valid: true},
		{input: 0, valid: false},
		{input: -3, valid: false},
	}

	for _, tt := range tests {
		result := NullInt64Positive(tt.input)
		if result.Valid != tt.valid {
			t.Errorf("NullInt64Positive(%d).Valid = %v, expected %v", tt.input, result.Valid, tt.valid)
		}
	}
}

func TestNullStringFromValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected sql.NullString
	}{
		{
			name:     "empty string",
			input:    "",
			expected: sql.NullString{},
		},
		{
			name:     "non-empty string",
			input:    "Casablanca",
			expected: sql.NullString{String: "Casablanca", Valid: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NullStringFromValue(tt.input)
			if result != tt.expected {
				t.Errorf("NullStringFromValue(%q) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNullTimeRoundTrip(t *testing.T) {
	loc := time.FixedZone("UTC+1", 3600)
	in := time.Date(2026, 3, 1, 10, 0, 0, 0, loc)

	nt := NullTimeFromValue(in)
	if !nt.Valid || nt.Time.Location() != time.UTC {
		t.Fatalf("NullTimeFromValue() = %v, expected valid UTC time", nt)
	}
	got := TimePtr(nt)
	if got == nil || !got.Equal(in) {
		t.Errorf("TimePtr() = %v, expected %v", got, in)
	}
	if TimePtr(sql.NullTime{}) != nil {
		t.Error("TimePtr() of invalid time should be nil")
	}
}

func TestFloat64Pointers(t *testing.T) {
	v := 33.57
	nf := NullFloat64FromPtr(&v)
	if !nf.Valid || nf.Float64 != v {
		t.Errorf("NullFloat64FromPtr() = %v", nf)
	}
	if NullFloat64FromPtr(nil).Valid {
		t.Error("NullFloat64FromPtr(nil) should be invalid")
	}
	if p := Float64Ptr(nf); p == nil || *p != v {
		t.Errorf("Float64Ptr() = %v", p)
	}
	if Float64Ptr(sql.NullFloat64{}) != nil {
		t.Error("Float64Ptr() of invalid value should be nil")
	}
}

func ptr(v int64) *int64 {
	return &v
}
