package utils

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidateTitle checks a report title for presence and length
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if len(title) > 200 {
		return fmt.Errorf("title exceeds 200 characters")
	}
	return nil
}

// ValidateCoordinates checks an optional lat/lng pair
func ValidateCoordinates(lat, lng *float64) error {
	if (lat == nil) != (lng == nil) {
		return fmt.Errorf("latitude and longitude must be provided together")
	}
	if lat == nil {
		return nil
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("latitude out of range: %f", *lat)
	}
	if *lng < -180 || *lng > 180 {
		return fmt.Errorf("longitude out of range: %f", *lng)
	}
	return nil
}

// ValidateImageURL checks that an image reference is an absolute http(s) URL
func ValidateImageURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid image URL: %s", rawURL)
	}
	return nil
}

// SanitizeString removes control characters from free-text input
func SanitizeString(s string) string {
	return regexp.MustCompile(`[\x00-\x1f\x7f]`).ReplaceAllString(s, "")
}
