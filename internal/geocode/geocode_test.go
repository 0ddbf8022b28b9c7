package geocode

import (
	"encoding/json"
	"testing"
)

func TestBuildAddress(t *testing.T) {
	got := BuildAddress("Алматы", "Абая", "10", "Алматинская область", "Казахстан")
	want := "Алматы, Абая, 10, Алматинская область, Казахстан"
	if got != want {
		t.Fatalf("unexpected address: %s", got)
	}
}

func TestBuildAddressSkipsEmptyParts(t *testing.T) {
	got := BuildAddress("Астана", "", "  ", "", "Казахстан")
	if got != "Астана, Казахстан" {
		t.Fatalf("unexpected address: %s", got)
	}
	if BuildAddress("", "", "", "", "") != "" {
		t.Fatalf("expected empty address for empty components")
	}
}

func decodeDGIS(t *testing.T, payload string) dgisResponse {
	t.Helper()
	var body dgisResponse
	if err := json.Unmarshal([]byte(payload), &body); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return body
}

func TestParseDGISResponse(t *testing.T) {
	body := decodeDGIS(t, `{"result":{"total":1,"items":[{"point":{"lat":43.25,"lon":76.95}}]}}`)
	p, err := parseDGISResponse(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 43.25 || p.Lon != 76.95 {
		t.Fatalf("unexpected point: %+v", p)
	}
}

func TestParseDGISResponseEmpty(t *testing.T) {
	body := decodeDGIS(t, `{"result":{"total":0,"items":[]}}`)
	if _, err := parseDGISResponse(body); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	body = decodeDGIS(t, `{"result":{"total":1,"items":[{}]}}`)
	if _, err := parseDGISResponse(body); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing point, got %v", err)
	}
}
