package main

import (
	"reflect"
	"testing"
)

func TestParseSpacings(t *testing.T) {
	got, err := parseSpacings("800, 400,200")
	if err != nil {
		t.Fatalf("parseSpacings: %v", err)
	}
	if want := []float64{800, 400, 200}; !reflect.DeepEqual(got, want) {
		t.Fatalf("parseSpacings = %v, want %v", got, want)
	}

	if _, err := parseSpacings("800,abc"); err == nil {
		t.Fatalf("non-numeric spacing should fail")
	}
	if _, err := parseSpacings(""); err == nil {
		t.Fatalf("empty list should fail")
	}
}
