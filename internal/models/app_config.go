package models

import "sort"

// ConfigDocumentID is the _id of the singleton configuration document.
const ConfigDocumentID = "system_config"

// Custom field types.
const (
	FieldTypeText   = "text"
	FieldTypeNumber = "number"
	FieldTypeDate   = "date"
	FieldTypeSelect = "select"
)

// CustomField is an administrator-defined asset attribute.
type CustomField struct {
	ID         string   `bson:"id" json:"id"`
	Label      string   `bson:"label" json:"label"`
	Type       string   `bson:"type" json:"type"`
	Options    []string `bson:"options,omitempty" json:"options,omitempty"`
	Order      int      `bson:"order" json:"order"`
	IsArchived bool     `bson:"isArchived" json:"isArchived"`
}

// CoreField overrides the label and visibility of a built-in asset field.
type CoreField struct {
	Key       string `bson:"key" json:"key"`
	Label     string `bson:"label" json:"label"`
	IsVisible bool   `bson:"isVisible" json:"isVisible"`
}

// AppConfig is the global taxonomy shared by every session.
type AppConfig struct {
	ID                     string              `bson:"_id,omitempty" json:"-"`
	CompanyName            string              `bson:"companyName" json:"companyName"`
	Categories             map[string][]string `bson:"categories" json:"categories"` // code -> allowed asset names
	CategoriesDescriptions map[string]string   `bson:"categoriesDescriptions" json:"categoriesDescriptions"`
	Locations              []string            `bson:"locations" json:"locations"`
	States                 []string            `bson:"states" json:"states"`
	HolderPresences        []string            `bson:"holderPresences" json:"holderPresences"`
	CustomFields           []CustomField       `bson:"customFields" json:"customFields"`
	CoreFields             []CoreField         `bson:"coreFields" json:"coreFields"`
}

// HasCategory reports whether code is part of the taxonomy.
func (c AppConfig) HasCategory(code string) bool {
	_, ok := c.Categories[code]
	return ok
}

// DefaultState is the first configured state, or StateGood.
func (c AppConfig) DefaultState() string {
	if len(c.States) > 0 {
		return c.States[0]
	}
	return StateGood
}

// DefaultHolderPresence is the first configured presence, or "Présent".
func (c AppConfig) DefaultHolderPresence() string {
	if len(c.HolderPresences) > 0 {
		return c.HolderPresences[0]
	}
	return "Présent"
}

// FieldLabel returns the configured label of a core field, falling back to def.
func (c AppConfig) FieldLabel(key, def string) string {
	for _, f := range c.CoreFields {
		if f.Key == key && f.Label != "" {
			return f.Label
		}
	}
	return def
}

// ActiveCustomFields returns custom fields that are not archived, in order.
func (c AppConfig) ActiveCustomFields() []CustomField {
	var out []CustomField
	for _, f := range c.CustomFields {
		if !f.IsArchived {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// DefaultAppConfig is seeded when no configuration document exists.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		ID:          ConfigDocumentID,
		CompanyName: "Electricity Development Corporation",
		Categories: map[string][]string{
			"AA": {"Agrafeuse", "Perforatrice", "Calculatrice"},
			"IT": {"Ordinateur portable", "Ordinateur fixe", "Imprimante", "Écran"},
			"MB": {"Bureau", "Chaise", "Armoire"},
			"VH": {"Véhicule de service", "Moto"},
		},
		CategoriesDescriptions: map[string]string{
			"AA": "Matériel de bureau",
			"IT": "Matériel informatique",
			"MB": "Mobilier",
			"VH": "Véhicules",
		},
		Locations:       []string{"EDC", "DG", "DRH", "DAF"},
		States:          []string{StateGood, StateDefective, StateDepreciated, StateInMaintenance, StateRetired},
		HolderPresences: []string{"Présent", "Absent"},
		CustomFields:    []CustomField{},
		CoreFields: []CoreField{
			{Key: "door", Label: "Porte", IsVisible: true},
			{Key: "holder", Label: "Détenteur", IsVisible: true},
			{Key: "description", Label: "Description", IsVisible: true},
			{Key: "observation", Label: "Observation", IsVisible: true},
			{Key: "photoUrl", Label: "Photo", IsVisible: true},
			{Key: "registrationDate", Label: "Date d'enregistrement", IsVisible: true},
		},
	}
}
