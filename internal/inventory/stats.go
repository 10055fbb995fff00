package inventory

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"edc-panorama-api-server/internal/models"
)

// undefinedValue labels assets that have no value on a chart axis.
const undefinedValue = "Non défini"

var (
	amountKeyPattern = regexp.MustCompile(`(?i)prix|valeur|montant|cout|cost|price|value`)
	nonNumeric       = regexp.MustCompile(`[^0-9.,-]`)
	frenchPrinter    = message.NewPrinter(language.French)
)

// ChartAxes lists the asset fields a chart may be grouped by.
var ChartAxes = []string{"location", "category", "acquisitionYear", "state", "holderPresence"}

// Count is one bar or slice of a chart.
type Count struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats are the dashboard key figures over active assets.
type Stats struct {
	TotalAssets         int     `json:"totalAssets"`
	GoodCondition       int     `json:"goodCondition"`
	BadCondition        int     `json:"badCondition"`
	TotalValue          float64 `json:"totalValue"`
	TotalValueFormatted string  `json:"totalValueFormatted"`
	ByState             []Count `json:"byState"`
	ByYear              []Count `json:"byYear"`
}

// ComputeStats aggregates non-archived assets.
func ComputeStats(assets []models.Asset) Stats {
	var s Stats
	byState := map[string]int{}
	byYear := map[string]int{}

	for _, a := range assets {
		if a.IsArchived {
			continue
		}
		s.TotalAssets++
		switch a.State {
		case models.StateGood:
			s.GoodCondition++
		case models.StateDefective, models.StateDepreciated, models.StateRetired:
			s.BadCondition++
		}
		s.TotalValue += AssetValue(a)
		byState[a.State]++
		byYear[a.AcquisitionYear]++
	}

	for name, v := range byState {
		s.ByState = append(s.ByState, Count{Name: name, Value: v})
	}
	sort.SliceStable(s.ByState, func(i, j int) bool {
		if s.ByState[i].Value != s.ByState[j].Value {
			return s.ByState[i].Value > s.ByState[j].Value
		}
		return s.ByState[i].Name < s.ByState[j].Name
	})
	for name, v := range byYear {
		s.ByYear = append(s.ByYear, Count{Name: name, Value: v})
	}
	sort.Slice(s.ByYear, func(i, j int) bool { return s.ByYear[i].Name < s.ByYear[j].Name })

	s.TotalValueFormatted = FormatAmount(s.TotalValue)
	return s
}

// AssetValue is the monetary amount of an asset, falling back to the first
// custom attribute whose key looks like a price.
func AssetValue(a models.Asset) float64 {
	if a.Amount != nil {
		return *a.Amount
	}
	keys := make([]string, 0, len(a.CustomAttributes))
	for k := range a.CustomAttributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !amountKeyPattern.MatchString(k) {
			continue
		}
		clean := nonNumeric.ReplaceAllString(a.CustomAttributes[k], "")
		clean = strings.Replace(clean, ",", ".", 1)
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return 0
}

// FormatAmount renders a whole amount with French digit grouping.
func FormatAmount(v float64) string {
	return frenchPrinter.Sprintf("%.0f", v)
}

// Chart is a cross tabulation of active assets.
type Chart struct {
	Keys []string         `json:"keys"`
	Data []map[string]any `json:"data"`
}

// ComputeChart counts active assets per xAxis value, split by groupBy.
func ComputeChart(assets []models.Asset, xAxis, groupBy string) (Chart, error) {
	if !validAxis(xAxis) || !validAxis(groupBy) {
		return Chart{}, fmt.Errorf("unsupported chart axis %q/%q", xAxis, groupBy)
	}
	counts := map[string]map[string]int{}
	groups := map[string]struct{}{}

	for _, a := range assets {
		if a.IsArchived {
			continue
		}
		x := axisValue(a, xAxis)
		g := axisValue(a, groupBy)
		if counts[x] == nil {
			counts[x] = map[string]int{}
		}
		counts[x][g]++
		groups[g] = struct{}{}
	}

	xs := make([]string, 0, len(counts))
	for x := range counts {
		xs = append(xs, x)
	}
	sort.Strings(xs)

	chart := Chart{Keys: orderGroups(groups, groupBy), Data: []map[string]any{}}
	for _, x := range xs {
		item := map[string]any{"name": x}
		for _, g := range chart.Keys {
			item[g] = counts[x][g]
		}
		chart.Data = append(chart.Data, item)
	}
	return chart, nil
}

func orderGroups(groups map[string]struct{}, groupBy string) []string {
	keys := []string{}
	if groupBy == "state" {
		for _, s := range models.StateOrder {
			if _, ok := groups[s]; ok {
				keys = append(keys, s)
			}
		}
		var others []string
		for g := range groups {
			if !contains(models.StateOrder, g) {
				others = append(others, g)
			}
		}
		sort.Strings(others)
		return append(keys, others...)
	}
	for g := range groups {
		keys = append(keys, g)
	}
	sort.Strings(keys)
	return keys
}

func validAxis(axis string) bool { return contains(ChartAxes, axis) }

func axisValue(a models.Asset, axis string) string {
	var v string
	switch axis {
	case "location":
		v = a.Location
	case "category":
		v = a.Category
	case "acquisitionYear":
		v = a.AcquisitionYear
	case "state":
		v = a.State
	case "holderPresence":
		v = a.HolderPresence
	}
	if v == "" {
		return undefinedValue
	}
	return v
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
