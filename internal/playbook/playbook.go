// Package playbook holds the remediation guidance shown to operators when a
// parameter breaches a band. Built-in defaults exist per parameter and
// breach direction; sites may override them with their own step lists.
package playbook

// ReferenceLink points an operator at supporting documentation.
type ReferenceLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Playbook is an ordered list of remediation steps for one parameter and
// breach direction.
type Playbook struct {
	ParameterKey   string          `json:"parameter_key"`
	Direction      string          `json:"direction"` // "low" or "high"
	Steps          []string        `json:"steps"`
	ReferenceLinks []ReferenceLink `json:"reference_links"`
	SiteOverride   bool            `json:"site_override"`
}

// Default returns the built-in playbook for a parameter and direction, or
// false when none is defined.
func Default(parameterKey, direction string) (Playbook, bool) {
	steps, ok := defaults[key{parameterKey, direction}]
	if !ok {
		return Playbook{}, false
	}
	return Playbook{
		ParameterKey:   parameterKey,
		Direction:      direction,
		Steps:          append([]string(nil), steps.steps...),
		ReferenceLinks: append([]ReferenceLink(nil), steps.links...),
	}, true
}

type key struct {
	parameter string
	direction string
}

type entry struct {
	steps []string
	links []ReferenceLink
}

var defaults = map[key]entry{
	{"ph", "low"}: {
		steps: []string{
			"Verify the pH probe reading against a handheld meter",
			"Check influent for industrial discharge or septic loading",
			"Increase alkalinity dosing (lime or bicarbonate) if nitrification is consuming buffer",
			"Review recent trade waste acceptance records",
		},
	},
	{"ph", "high"}: {
		steps: []string{
			"Verify the pH probe reading against a handheld meter",
			"Reduce or pause alkaline chemical dosing",
			"Check for caustic cleaning discharges upstream",
		},
	},
	{"do", "low"}: {
		steps: []string{
			"Confirm blowers and diffusers are running; check for tripped drives",
			"Raise the aeration setpoint or bring a standby blower online",
			"Check MLSS concentration; high solids raise oxygen demand",
			"Inspect diffuser membranes for fouling if demand has not changed",
		},
	},
	{"do", "high"}: {
		steps: []string{
			"Lower the aeration setpoint to save energy",
			"Confirm the DO probe is not reading in air or a dead zone",
		},
	},
	{"mlss", "low"}: {
		steps: []string{
			"Reduce wasting rate (WAS flow)",
			"Check clarifier for solids washout",
			"Review recent hydraulic loading for washout events",
		},
	},
	{"mlss", "high"}: {
		steps: []string{
			"Increase wasting rate gradually (no more than 10% per day)",
			"Check sludge volume index for settleability problems",
			"Confirm return activated sludge flow is balanced",
		},
	},
	{"ammonia", "high"}: {
		steps: []string{
			"Check DO in the aeration basin; nitrifiers need at least 2 mg/L",
			"Verify alkalinity is sufficient (7.1 mg per mg ammonia nitrified)",
			"Check water temperature; nitrification slows sharply below 10 C",
			"Review sludge age; consider reducing wasting to retain nitrifiers",
		},
	},
	{"nitrate", "high"}: {
		steps: []string{
			"Check anoxic zone mixing and internal recycle rates",
			"Verify carbon availability for denitrification",
		},
	},
	{"turbidity", "high"}: {
		steps: []string{
			"Inspect clarifier weirs and launders for solids carryover",
			"Check polymer dosing on the tertiary stage",
			"Review filter backwash schedule",
		},
	},
}
