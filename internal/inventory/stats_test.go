package inventory

import (
	"testing"

	"edc-panorama-api-server/internal/models"
)

func amount(v float64) *float64 { return &v }

func TestComputeStats(t *testing.T) {
	assets := []models.Asset{
		{State: models.StateGood, AcquisitionYear: "2024", Amount: amount(1000)},
		{State: models.StateGood, AcquisitionYear: "2023", CustomAttributes: map[string]string{"Prix d'achat": "2 500,50 FCFA"}},
		{State: models.StateDefective, AcquisitionYear: "2024"},
		{State: models.StateInMaintenance, AcquisitionYear: "2024"},
		{State: models.StateRetired, AcquisitionYear: "2022", IsArchived: true, Amount: amount(99999)},
	}

	s := ComputeStats(assets)
	if s.TotalAssets != 4 {
		t.Errorf("TotalAssets = %d, want 4", s.TotalAssets)
	}
	if s.GoodCondition != 2 {
		t.Errorf("GoodCondition = %d, want 2", s.GoodCondition)
	}
	if s.BadCondition != 1 {
		t.Errorf("BadCondition = %d, want 1", s.BadCondition)
	}
	if s.TotalValue != 3500.5 {
		t.Errorf("TotalValue = %v, want 3500.5", s.TotalValue)
	}
	if s.TotalValueFormatted == "" {
		t.Error("TotalValueFormatted is empty")
	}
	if s.ByState[0].Name != models.StateGood || s.ByState[0].Value != 2 {
		t.Errorf("ByState[0] = %+v, want most frequent state first", s.ByState[0])
	}
	if len(s.ByYear) != 2 || s.ByYear[0].Name != "2023" || s.ByYear[1].Value != 3 {
		t.Errorf("ByYear = %+v", s.ByYear)
	}
}

func TestAssetValue_UnparseableAttribute(t *testing.T) {
	a := models.Asset{CustomAttributes: map[string]string{"valeur": "n/a"}}
	if got := AssetValue(a); got != 0 {
		t.Errorf("AssetValue() = %v, want 0", got)
	}
}

func TestComputeChart(t *testing.T) {
	assets := []models.Asset{
		{Location: "EDC", State: models.StateRetired},
		{Location: "EDC", State: models.StateGood},
		{Location: "DG", State: "Perdu"},
		{Location: "", State: models.StateGood},
	}
	chart, err := ComputeChart(assets, "location", "state")
	if err != nil {
		t.Fatalf("ComputeChart() error = %v", err)
	}
	wantKeys := []string{models.StateGood, models.StateRetired, "Perdu"}
	if len(chart.Keys) != len(wantKeys) {
		t.Fatalf("Keys = %v, want %v", chart.Keys, wantKeys)
	}
	for i := range wantKeys {
		if chart.Keys[i] != wantKeys[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, chart.Keys[i], wantKeys[i])
		}
	}
	if len(chart.Data) != 3 {
		t.Fatalf("len(Data) = %d, want 3", len(chart.Data))
	}
	if chart.Data[0]["name"] != "DG" || chart.Data[2]["name"] != undefinedValue {
		t.Errorf("Data names = %v, %v", chart.Data[0]["name"], chart.Data[2]["name"])
	}
	if chart.Data[1][models.StateGood] != 1 || chart.Data[1]["Perdu"] != 0 {
		t.Errorf("EDC row = %v", chart.Data[1])
	}
}

func TestComputeChart_RejectsUnknownAxis(t *testing.T) {
	if _, err := ComputeChart(nil, "holder", "state"); err == nil {
		t.Error("ComputeChart() error = nil, want error for unsupported axis")
	}
}
