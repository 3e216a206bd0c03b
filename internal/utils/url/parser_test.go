package urlutil

import "testing"

func TestValidate(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Fatalf("expected valid, got error: %v", err)
		}
	}

	invalid := []string{"ftp://example.com", "//example.com", "http:///"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Fatalf("expected invalid for %s", u)
		}
	}
}

func TestValidateTemplate(t *testing.T) {
	if err := ValidateTemplate("https://www.marinetraffic.com/en/ais/home/shipid:{shipid}/zoom:10", "{shipid}"); err != nil {
		t.Errorf("expected valid template, got %v", err)
	}
	if err := ValidateTemplate("https://example.com/ship", "{shipid}"); err == nil {
		t.Error("expected error for missing placeholder")
	}
	if err := ValidateTemplate("file:///ships/{shipid}", "{shipid}"); err == nil {
		t.Error("expected error for non-http template")
	}
}

func TestHost(t *testing.T) {
	tests := map[string]string{
		"https://WWW.MarineTraffic.com/en/ais": "www.marinetraffic.com",
		"http://localhost:8080/x":              "localhost",
		"not a url":                            "",
	}
	for in, want := range tests {
		if got := Host(in); got != want {
			t.Errorf("Host(%q) = %q, want %q", in, got, want)
		}
	}
}
