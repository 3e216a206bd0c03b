// Package extract turns rendered tracking-page text into typed vessel fields.
//
// Every field is matched independently through its own rule table, so a
// missing or malformed value never prevents the others from being read.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// Policy decides what a page without a coordinate pair means
type Policy string

const (
	// PolicyLenient leaves the position empty and keeps the other fields
	PolicyLenient Policy = "lenient"
	// PolicyStrict fails the whole extraction
	PolicyStrict Policy = "strict"
)

// ParsePolicy validates a policy name
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLenient, PolicyStrict:
		return p, nil
	case "":
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown coordinate policy %q (want lenient or strict)", s)
	}
}

// ErrNoPosition is returned under PolicyStrict when no coordinate pair is found
var ErrNoPosition = errors.New("no coordinate pair in page text")

// Fields is the partial result of one extraction. Nil means not found.
type Fields struct {
	Route     *Match
	Departure *Match // normalized timestamp text, zone-less
	Arrival   *Match
	Position  *orb.Point
	Speed     *float64
	Heading   *float64
}

// Extractor applies a rule table to page text
type Extractor struct {
	rules  Rules
	policy Policy
}

// New creates an Extractor. A zero Rules value uses DefaultRules().
func New(rules Rules, policy Policy) *Extractor {
	if len(rules.Route) == 0 && len(rules.Position) == 0 {
		rules = DefaultRules()
	}
	if policy == "" {
		policy = PolicyLenient
	}
	return &Extractor{rules: rules, policy: policy}
}

// Policy returns the coordinate policy in use
func (e *Extractor) Policy() Policy {
	return e.policy
}

// Extract reads every field from text. The only error is ErrNoPosition under
// the strict policy; the fields found are still returned alongside it.
func (e *Extractor) Extract(text string) (Fields, error) {
	var f Fields

	if m, ok := e.rules.Route.First(text, nil); ok {
		f.Route = &m
	}
	if m, ok := e.rules.Departure.First(text, normalizeTimestamp); ok {
		f.Departure = &m
	}
	if m, ok := e.rules.Arrival.First(text, normalizeTimestamp); ok {
		f.Arrival = &m
	}
	if m, ok := e.rules.Position.First(text, normalizeCoordinates); ok {
		if p, err := parseCoordinates(m.Value); err == nil {
			f.Position = &p
		}
	}
	if m, ok := e.rules.Speed.First(text, nonNegative(0)); ok {
		v, _ := strconv.ParseFloat(m.Value, 64)
		f.Speed = &v
	}
	if m, ok := e.rules.Heading.First(text, nonNegative(360)); ok {
		v, _ := strconv.ParseFloat(m.Value, 64)
		f.Heading = &v
	}

	if f.Position == nil && e.policy == PolicyStrict {
		return f, ErrNoPosition
	}
	return f, nil
}

// normalizeCoordinates accepts "(lat, lon)" within the valid degree ranges
func normalizeCoordinates(raw string) (string, bool) {
	p, err := parseCoordinates(raw)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(p.Lat(), 'f', -1, 64) + ", " + strconv.FormatFloat(p.Lon(), 'f', -1, 64), true
}

func parseCoordinates(raw string) (orb.Point, error) {
	s := strings.Trim(strings.TrimSpace(raw), "()")
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return orb.Point{}, fmt.Errorf("want 2 coordinates, got %d", len(parts))
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return orb.Point{}, fmt.Errorf("longitude: %w", err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return orb.Point{}, fmt.Errorf("coordinates out of range: %v, %v", lat, lon)
	}
	return orb.Point{lon, lat}, nil
}

// nonNegative accepts numbers in [0, limit]; limit 0 means unbounded
func nonNegative(limit float64) Normalizer {
	return func(raw string) (string, bool) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || (limit > 0 && v > limit) {
			return "", false
		}
		return raw, true
	}
}
