package classify

import "github.com/shimware/skel/spec"

// DefaultRules returns the built-in rule set. Priorities are chosen so
// that more specific rules outrank generic ones for the same element
// kind: an avatar image hits the circle rule at 100 before the plain
// image rectangle at 40.
func DefaultRules() []Rule {
	return []Rule{
		{
			Match:    Match{Kind: "img", ClassContains: "avatar"},
			To:       Target{Shape: spec.ShapeCircle, Width: "40px", Height: "40px", Radius: "50%"},
			Priority: 100,
		},
		{
			Match:    Match{Kind: "button"},
			To:       Target{Shape: spec.ShapeRect, Radius: "6px"},
			Priority: 80,
		},
		{
			Match:    Match{Role: "button"},
			To:       Target{Shape: spec.ShapeRect, Radius: "6px"},
			Priority: 80,
		},
		{
			Match:    Match{Kind: "input", Attr: map[string]string{"type": "submit"}},
			To:       Target{Shape: spec.ShapeRect, Radius: "6px"},
			Priority: 80,
		},
		{
			Match:    Match{ClassContains: "btn"},
			To:       Target{Shape: spec.ShapeRect, Radius: "6px"},
			Priority: 75,
		},

		{Match: Match{Kind: "h1"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "2rem"}, Priority: 70},
		{Match: Match{Kind: "h2"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "1.75rem"}, Priority: 70},
		{Match: Match{Kind: "h3"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "1.5rem"}, Priority: 70},
		{Match: Match{Kind: "h4"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "1.25rem"}, Priority: 70},
		{Match: Match{Kind: "h5"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "1.125rem"}, Priority: 70},
		{Match: Match{Kind: "h6"}, To: Target{Shape: spec.ShapeLine, Lines: 1, Height: "1rem"}, Priority: 70},

		{
			Match:    Match{ClassContains: "tag"},
			To:       Target{Shape: spec.ShapeRect, Width: "48px", Height: "20px", Radius: "999px"},
			Priority: 65,
		},
		{
			Match:    Match{ClassContains: "badge"},
			To:       Target{Shape: spec.ShapeRect, Width: "48px", Height: "20px", Radius: "999px"},
			Priority: 65,
		},

		// Lines left at zero: computed from text length at classify time.
		{Match: Match{Kind: "p"}, To: Target{Shape: spec.ShapeLine}, Priority: 60},

		{Match: Match{Kind: "svg"}, To: Target{Shape: spec.ShapeRect}, Priority: 50},

		{Match: Match{Kind: "img"}, To: Target{Shape: spec.ShapeRect}, Priority: 40},
		{Match: Match{Kind: "video"}, To: Target{Shape: spec.ShapeRect}, Priority: 40},
		{Match: Match{Kind: "audio"}, To: Target{Shape: spec.ShapeRect, Height: "54px"}, Priority: 40},
	}
}
