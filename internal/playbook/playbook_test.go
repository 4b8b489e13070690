package playbook

import (
	"testing"

	"github.com/plantops/plantwatch/internal/database"
)

type fakeStore struct {
	stored *database.SitePlaybook
	err    error
}

func (f *fakeStore) GetSitePlaybook(siteID int64, parameterKey, direction string) (*database.SitePlaybook, error) {
	return f.stored, f.err
}

func TestDefaultKnownParameter(t *testing.T) {
	pb, ok := Default("ph", "low")
	if !ok {
		t.Fatal("Expected a built-in playbook for ph/low")
	}
	if pb.ParameterKey != "ph" || pb.Direction != "low" {
		t.Errorf("Expected ph/low, got %s/%s", pb.ParameterKey, pb.Direction)
	}
	if len(pb.Steps) == 0 {
		t.Error("Expected non-empty steps")
	}
	if pb.SiteOverride {
		t.Error("Default playbook should not be marked as a site override")
	}
}

func TestDefaultUnknownDirection(t *testing.T) {
	// Nitrate only has a high-side playbook.
	if _, ok := Default("nitrate", "low"); ok {
		t.Error("Expected no built-in playbook for nitrate/low")
	}
}

func TestDefaultReturnsCopy(t *testing.T) {
	pb, _ := Default("do", "low")
	pb.Steps[0] = "mutated"

	again, _ := Default("do", "low")
	if again.Steps[0] == "mutated" {
		t.Error("Mutating a returned playbook should not affect the defaults")
	}
}

func TestEffectivePrefersOverride(t *testing.T) {
	store := &fakeStore{stored: &database.SitePlaybook{
		SiteID:         1,
		ParameterKey:   "ph",
		Direction:      "low",
		StepsJSON:      `["Call the on-call chemist","Isolate trade waste inlet"]`,
		ReferencesJSON: `[{"title":"Site SOP 12","url":"https://docs.example.com/sop-12"}]`,
	}}

	pb, err := Effective(store, 1, "ph", "low")
	if err != nil {
		t.Fatalf("Effective failed: %v", err)
	}
	if pb == nil {
		t.Fatal("Expected a playbook")
	}
	if !pb.SiteOverride {
		t.Error("Expected the override to be marked as site-specific")
	}
	if len(pb.Steps) != 2 || pb.Steps[0] != "Call the on-call chemist" {
		t.Errorf("Unexpected steps: %v", pb.Steps)
	}
	if len(pb.ReferenceLinks) != 1 || pb.ReferenceLinks[0].Title != "Site SOP 12" {
		t.Errorf("Unexpected reference links: %v", pb.ReferenceLinks)
	}
}

func TestEffectiveFallsBackToDefault(t *testing.T) {
	pb, err := Effective(&fakeStore{}, 1, "ammonia", "high")
	if err != nil {
		t.Fatalf("Effective failed: %v", err)
	}
	if pb == nil {
		t.Fatal("Expected the built-in ammonia/high playbook")
	}
	if pb.SiteOverride {
		t.Error("Fallback playbook should not be marked as a site override")
	}
}

func TestEffectiveNoneDefined(t *testing.T) {
	pb, err := Effective(&fakeStore{}, 1, "turbidity", "low")
	if err != nil {
		t.Fatalf("Effective failed: %v", err)
	}
	if pb != nil {
		t.Errorf("Expected nil playbook, got %+v", pb)
	}
}

func TestStoredRoundTrip(t *testing.T) {
	in := &Playbook{
		ParameterKey: "do",
		Direction:    "low",
		Steps:        []string{"Start standby blower", "Check diffuser pressure"},
		ReferenceLinks: []ReferenceLink{
			{Title: "Aeration guide", URL: "https://docs.example.com/aeration"},
		},
	}

	stored, err := ToStored(4, in)
	if err != nil {
		t.Fatalf("ToStored failed: %v", err)
	}
	if stored.SiteID != 4 {
		t.Errorf("Expected site ID 4, got %d", stored.SiteID)
	}

	out, err := FromStored(stored)
	if err != nil {
		t.Fatalf("FromStored failed: %v", err)
	}
	if len(out.Steps) != 2 || out.Steps[1] != "Check diffuser pressure" {
		t.Errorf("Unexpected steps after round trip: %v", out.Steps)
	}
	if len(out.ReferenceLinks) != 1 || out.ReferenceLinks[0].URL != "https://docs.example.com/aeration" {
		t.Errorf("Unexpected links after round trip: %v", out.ReferenceLinks)
	}
}

func TestFromStoredBadJSON(t *testing.T) {
	_, err := FromStored(&database.SitePlaybook{StepsJSON: "not json"})
	if err == nil {
		t.Error("Expected an error for malformed steps JSON")
	}
}
