package normalize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  1543 mission st  ", "1543 MISSION ST"},
		{"1543   Mission   St", "1543 MISSION ST"},
		{",1543 Mission St,", "1543 MISSION ST"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreetAddressExpansion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1543 Mission St", "1543 MISSION STREET"},
		{"22 Oak Ave", "22 OAK AVENUE"},
		{"7 Sunset Blvd", "7 SUNSET BOULEVARD"},
		{"9 N Main St", "9 NORTH MAIN STREET"},
		{"3 SW Pine Dr", "3 SOUTHWEST PINE DRIVE"},
		{"100 Cahuilla Rd", "100 CAHUILLA ROAD"},
	}

	for _, tt := range tests {
		if got := StreetAddress(tt.in); got != tt.want {
			t.Errorf("StreetAddress(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStreetAddressIdempotent(t *testing.T) {
	inputs := []string{
		"1543 Mission St",
		"9 n main st",
		"22 OAK AVENUE",
		"7 Sunset Blvd, ",
	}

	for _, in := range inputs {
		once := StreetAddress(in)
		twice := StreetAddress(once)
		if once != twice {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestState(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"California", "CA"},
		{"NEW YORK", "NY"},
		{"ca", "CA"},
		{"CA", "CA"},
		{"Narnia", "NARNIA"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := State(tt.in); got != tt.want {
			t.Errorf("State(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestZipcode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"94103", "94103"},
		{"94103-1234", "94103"},
		{"CA 94103", "94103"},
		{"K1A 0B1", "K1A 0B1"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Zipcode(tt.in); got != tt.want {
			t.Errorf("Zipcode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCoordinates(t *testing.T) {
	lat, lng, ok := Coordinates("37.7749, -122.4194")
	if !ok {
		t.Fatal("valid pair not parsed")
	}
	if lat != 37.7749 || lng != -122.4194 {
		t.Errorf("got (%f, %f)", lat, lng)
	}

	for _, in := range []string{"", "not coordinates", "95.0, 10.0", "10.0, 200.0"} {
		if _, _, ok := Coordinates(in); ok {
			t.Errorf("Coordinates(%q) ok = true, want false", in)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("  , ") {
		t.Error("IsBlank(\"  , \") = false")
	}
	if IsBlank("1 Main St") {
		t.Error("IsBlank(\"1 Main St\") = true")
	}
}
