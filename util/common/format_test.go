package common

import (
	"reflect"
	"testing"
)

func TestCleanString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  hola  mundo  ", "hola mundo"},
		{"\tuna\nsola\tlinea\n", "una sola linea"},
		{"sin cambios", "sin cambios"},
		{"   ", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := CleanString(tc.input); got != tc.expected {
			t.Errorf("CleanString(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestSafeInt(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"42", 42, true},
		{" -7 ", -7, true},
		{"", 0, false},
		{"abc", 0, false},
		{"3.14", 0, false},
	}
	for _, tc := range tests {
		got, ok := SafeInt(tc.input)
		if got != tc.expected || ok != tc.ok {
			t.Errorf("SafeInt(%q) = (%d, %v), expected (%d, %v)", tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestSafeFloat(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"-34.9214", -34.9214, true},
		{"0", 0, true},
		{"", 0, false},
		{"coord", 0, false},
	}
	for _, tc := range tests {
		got, ok := SafeFloat(tc.input)
		if got != tc.expected || ok != tc.ok {
			t.Errorf("SafeFloat(%q) = (%v, %v), expected (%v, %v)", tc.input, got, ok, tc.expected, tc.ok)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"1", true},
		{"SI", true},
		{"on", true},
		{" yes ", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"quizás", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ParseBool(tc.input); got != tc.expected {
			t.Errorf("ParseBool(%q) = %v, expected %v", tc.input, got, tc.expected)
		}
	}
}

func TestIsEmail(t *testing.T) {
	valid := []string{"ana@example.com", "a.b+c@sub.dominio.ar"}
	for _, v := range valid {
		if !IsEmail(v) {
			t.Errorf("IsEmail(%q) = false", v)
		}
	}
	invalid := []string{"", "sin-arroba", "dos@@example.com", "espacio @example.com", "sin@punto"}
	for _, v := range invalid {
		if IsEmail(v) {
			t.Errorf("IsEmail(%q) = true", v)
		}
	}
}

func TestParseIDList(t *testing.T) {
	got := ParseIDList("1,x,3,, 5 ")
	expected := []int{1, 3, 5}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("ParseIDList = %v, expected %v", got, expected)
	}

	if got := ParseIDList(""); len(got) != 0 {
		t.Errorf("ParseIDList(\"\") = %v, expected empty", got)
	}
}
