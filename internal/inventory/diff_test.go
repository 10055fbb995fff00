package inventory

import (
	"testing"

	"edc-panorama-api-server/internal/models"
)

func baseAsset() models.Asset {
	return models.Asset{
		Code:            "2024-EDC-AA-0001",
		Name:            "Agrafeuse",
		Category:        "AA",
		Location:        "EDC",
		AcquisitionYear: "2024",
		State:           models.StateGood,
		Holder:          "Jean Dupont",
		HolderPresence:  "Présent",
		Door:            "101",
		Description:     "Grande agrafeuse",
	}
}

func TestDiff_DescriptionOnly(t *testing.T) {
	before := baseAsset()
	after := before
	after.Description = "Agrafeuse géante"

	changes := Diff(before, after)
	if len(changes) != 1 {
		t.Fatalf("len(changes) = %d, want 1", len(changes))
	}
	if changes[0].Field != "description" {
		t.Errorf("Field = %q, want %q", changes[0].Field, "description")
	}
	if changes[0].Before != "Grande agrafeuse" || changes[0].After != "Agrafeuse géante" {
		t.Errorf("change = %+v", changes[0])
	}
	if RequiresJustification(before, after) {
		t.Error("RequiresJustification() = true for description-only edit, want false")
	}
}

func TestDiff_LocationRequiresJustification(t *testing.T) {
	before := baseAsset()
	after := before
	after.Location = "DG"

	if !RequiresJustification(before, after) {
		t.Fatal("RequiresJustification() = false for location edit, want true")
	}
	got := ChangedCriticalFields(before, after)
	if len(got) != 1 || got[0] != "location" {
		t.Errorf("ChangedCriticalFields() = %v, want [location]", got)
	}
}

func TestDiff_NoChange(t *testing.T) {
	a := baseAsset()
	if changes := Diff(a, a); len(changes) != 0 {
		t.Errorf("Diff() = %v, want no changes", changes)
	}
	if RequiresJustification(a, a) {
		t.Error("RequiresJustification() = true for identical assets")
	}
}

func TestDiff_UntrackedFieldsIgnored(t *testing.T) {
	before := baseAsset()
	after := before
	after.Observation = "Rayure sur le côté"
	after.PhotoURL = "https://cdn.example.com/a.jpg"

	if changes := Diff(before, after); len(changes) != 0 {
		t.Errorf("Diff() = %v, want no tracked changes", changes)
	}
}

func TestDiff_OrderFollowsTrackedFields(t *testing.T) {
	before := baseAsset()
	after := before
	after.HolderPresence = "Absent"
	after.Name = "Perforatrice"

	changes := Diff(before, after)
	if len(changes) != 2 {
		t.Fatalf("len(changes) = %d, want 2", len(changes))
	}
	if changes[0].Field != "name" || changes[1].Field != "holderPresence" {
		t.Errorf("fields = %q, %q; want name, holderPresence", changes[0].Field, changes[1].Field)
	}
}
