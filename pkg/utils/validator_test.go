package utils

import (
	"strings"
	"testing"
)

func TestValidateTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		wantErr bool
	}{
		{"valid title", "Pothole on Elm Street", false},
		{"empty title", "", true},
		{"whitespace only", "   ", true},
		{"too long", strings.Repeat("x", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTitle(tt.title)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTitle() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	valid := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		lat     *float64
		lng     *float64
		wantErr bool
	}{
		{"no coordinates", nil, nil, false},
		{"valid pair", valid(52.37), valid(4.89), false},
		{"latitude only", valid(52.37), nil, true},
		{"longitude only", nil, valid(4.89), true},
		{"latitude out of range", valid(91), valid(4.89), true},
		{"longitude out of range", valid(52.37), valid(181), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinates(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinates() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"empty is allowed", "", false},
		{"https url", "https://img.example.com/photo.jpg", false},
		{"http url", "http://img.example.com/photo.jpg", false},
		{"relative path", "/uploads/photo.jpg", true},
		{"file scheme", "file:///etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	got := SanitizeString("hello\x00world\x1f!")
	if got != "helloworld!" {
		t.Errorf("SanitizeString() = %q", got)
	}
}
