package placekey

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhereCoordinatesDeterministic(t *testing.T) {
	first, ok := WhereCoordinates("227-223@5vg-82n-kzz")
	if !ok {
		t.Fatal("WhereCoordinates failed for valid placekey")
	}
	second, _ := WhereCoordinates("227-223@5vg-82n-kzz")
	if first != second {
		t.Errorf("coordinates not deterministic: %+v vs %+v", first, second)
	}

	if first.Latitude < 25.0 || first.Latitude >= 45.0 {
		t.Errorf("latitude %f outside [25, 45)", first.Latitude)
	}
	if first.Longitude < -125.0 || first.Longitude >= -75.0 {
		t.Errorf("longitude %f outside [-125, -75)", first.Longitude)
	}
}

func TestWhereCoordinatesNoWherePart(t *testing.T) {
	for _, pk := range []string{"", "no-at-sign", "trailing@"} {
		if _, ok := WhereCoordinates(pk); ok {
			t.Errorf("WhereCoordinates(%q) succeeded, want failure", pk)
		}
	}
}

func TestToAddressViaGeocoder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		json.NewEncoder(w).Encode(map[string]string{
			"display_name": "1543 Mission Street, San Francisco, CA 94103",
		})
	}))
	defer server.Close()

	mapper := NewReverseMapper(server.URL)
	result := mapper.ToAddress(context.Background(), "227-223@5vg-82n-kzz")
	if !result.Success {
		t.Fatalf("Success = false: %s", result.Error)
	}
	if result.Simulated {
		t.Error("geocoded result marked Simulated")
	}
	if result.Address != "1543 Mission Street, San Francisco, CA 94103" {
		t.Errorf("Address = %q", result.Address)
	}
	if result.Coordinates == nil {
		t.Error("Coordinates missing")
	}
}

func TestToAddressFallsBackToSimulated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	mapper := NewReverseMapper(server.URL)
	result := mapper.ToAddress(context.Background(), "227-223@5vg-82n-kzz")
	if !result.Success {
		t.Fatalf("fallback should still succeed: %s", result.Error)
	}
	if !result.Simulated {
		t.Fatal("fallback result not marked Simulated")
	}
	if result.Address == "" {
		t.Error("simulated address empty")
	}

	// The synthetic address is a pure function of the placekey
	again := mapper.ToAddress(context.Background(), "227-223@5vg-82n-kzz")
	if again.Address != result.Address {
		t.Errorf("simulated address not deterministic: %q vs %q", again.Address, result.Address)
	}
}

func TestToAddressEmptyPlacekey(t *testing.T) {
	mapper := NewReverseMapper("")
	result := mapper.ToAddress(context.Background(), "  ")
	if result.Success {
		t.Fatal("Success = true for empty placekey")
	}
	if result.Error == "" {
		t.Error("empty placekey should carry an error message")
	}
}

func TestToAddressNoWherePartSimulates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("geocoder called for placekey without where-part")
	}))
	defer server.Close()

	mapper := NewReverseMapper(server.URL)
	result := mapper.ToAddress(context.Background(), "whatonly")
	if !result.Success || !result.Simulated {
		t.Errorf("result = %+v, want simulated success", result)
	}
}

func TestToAddressBatchOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	mapper := NewReverseMapper(server.URL)
	pks := []string{"22c@aaa", "22c@bbb", ""}
	results := mapper.ToAddressBatch(context.Background(), pks)
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if !results[0].Success || !results[1].Success {
		t.Error("valid placekeys failed")
	}
	if results[2].Success {
		t.Error("empty placekey succeeded")
	}
}
