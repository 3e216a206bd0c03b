package extract

import (
	"regexp"
	"strings"
)

// Rule is one named pattern tried for a field. Group selects the capture
// used as the value; 0 takes the whole match.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	Group   int
}

// Normalizer turns a raw match into the field's canonical text, or rejects it
type Normalizer func(raw string) (string, bool)

// RuleSet is an ordered list of rules for one field. The first rule yielding
// an accepted match wins; later matches of the same rule are tried before
// falling through to the next rule.
type RuleSet []Rule

// Match is a field value together with the rule that produced it
type Match struct {
	Value string
	Rule  string
}

// First runs the rules against text in order
func (rs RuleSet) First(text string, normalize Normalizer) (Match, bool) {
	for _, r := range rs {
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			if r.Group >= len(m) {
				continue
			}
			v := collapseSpaces(m[r.Group])
			if v == "" {
				continue
			}
			if normalize != nil {
				var ok bool
				if v, ok = normalize(v); !ok {
					continue
				}
			}
			return Match{Value: v, Rule: r.Name}, true
		}
	}
	return Match{}, false
}

// Rules holds the rule table for every extracted field
type Rules struct {
	Route     RuleSet
	Departure RuleSet
	Arrival   RuleSet
	Position  RuleSet
	Speed     RuleSet
	Heading   RuleSet
}

// NationalRouteRule matches a two-leg route where both ports carry the given
// country prefix, e.g. "VN HAIPHONG VN SAIGON".
func NationalRouteRule(country string) Rule {
	c := regexp.QuoteMeta(strings.ToUpper(strings.TrimSpace(country)))
	return Rule{
		Name:    "national-" + strings.ToLower(country),
		Pattern: regexp.MustCompile(`\b` + c + `\s+\w+\s+` + c + `\s+\w+`),
	}
}

var (
	arrowRouteRule = Rule{
		Name:    "arrow",
		Pattern: regexp.MustCompile(`\b[A-Z]{2,3}\s+[A-Z][\w-]*\s*(?:→|->)\s*[A-Z]{2,3}\s+[A-Z][\w-]*`),
	}
	labelRouteRule = Rule{
		Name:    "label",
		Pattern: regexp.MustCompile(`(?i)\broute:[ \t]*([^\n]+)`),
		Group:   1,
	}
)

// DefaultRules returns the rule table for the tracking page. Countries select
// the national two-leg route patterns tried first; "VN" is used when none are given.
func DefaultRules(countries ...string) Rules {
	if len(countries) == 0 {
		countries = []string{"VN"}
	}

	var route RuleSet
	for _, c := range countries {
		if strings.TrimSpace(c) == "" {
			continue
		}
		route = append(route, NationalRouteRule(c))
	}
	route = append(route, arrowRouteRule, labelRouteRule)

	return Rules{
		Route: route,
		Departure: RuleSet{
			{Name: "atd-label", Pattern: regexp.MustCompile(`\bATD:\s*([0-9\-:\s]+)`), Group: 1},
		},
		Arrival: RuleSet{
			{Name: "eta-label", Pattern: regexp.MustCompile(`\bETA\b[^:\n]*:\s*([0-9\-:\s]+)`), Group: 1},
			{Name: "reported-eta", Pattern: regexp.MustCompile(`Reported ETA:\s*([0-9\-:\s]+)`), Group: 1},
		},
		Position: RuleSet{
			{Name: "paren-pair", Pattern: regexp.MustCompile(`\([-+]?\d+\.\d+,\s*[-+]?\d+\.\d+\)`)},
		},
		Speed: RuleSet{
			{Name: "knots", Pattern: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:kn|knots)\b`), Group: 1},
		},
		Heading: RuleSet{
			{Name: "slash-degrees", Pattern: regexp.MustCompile(`/\s*(\d{1,3})°`), Group: 1},
		},
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
