package headers

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	in := []string{"accept-language: en-US", "", "X-Forwarded-For:10.0.0.1", "Referer: https://a.example/b?c=d:e"}
	out, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	expected := map[string]string{
		"Accept-Language": "en-US",
		"X-Forwarded-For": "10.0.0.1",
		"Referer":         "https://a.example/b?c=d:e",
	}
	if !reflect.DeepEqual(out, expected) {
		t.Fatalf("unexpected parse result: %#v", out)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, line := range []string{"BadHeader", ": value", "Bad Key: v"} {
		if _, err := Parse([]string{line}); err == nil {
			t.Errorf("Parse(%q) expected error", line)
		}
	}
}

func TestLines(t *testing.T) {
	got := Lines("A: 1\r\nB: 2")
	if !reflect.DeepEqual(got, []string{"A: 1", "B: 2"}) {
		t.Errorf("Lines = %q", got)
	}
}
