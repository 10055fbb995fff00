package inventory

import "edc-panorama-api-server/internal/models"

// Spreadsheet column headers shared by import, export and the import template.
const (
	ColCode     = "Code Inventaire"
	ColName     = "Nom"
	ColCategory = "Catégorie"
	ColLocation = "Localisation"
	ColYear     = "Année Acquisition"
	ColState    = "État"
	ColPresence = "Présence Détenteur"
)

// RequiredColumns must all be present for an import to be considered.
var RequiredColumns = []string{ColCode, ColName, ColCategory, ColLocation}

// Labels of the core fields whose column header follows the configuration.
type Labels struct {
	RegistrationDate string
	Holder           string
	Door             string
	Description      string
	Observation      string
}

// LabelsFor resolves configurable column headers with their French defaults.
func LabelsFor(cfg models.AppConfig) Labels {
	return Labels{
		RegistrationDate: cfg.FieldLabel("registrationDate", "Date d'enregistrement"),
		Holder:           cfg.FieldLabel("holder", "Détenteur"),
		Door:             cfg.FieldLabel("door", "Porte"),
		Description:      cfg.FieldLabel("description", "Description"),
		Observation:      cfg.FieldLabel("observation", "Observation"),
	}
}

// Columns returns the full header row in export order.
func Columns(cfg models.AppConfig) []string {
	l := LabelsFor(cfg)
	cols := []string{
		ColCode, ColName, ColCategory, ColLocation, ColYear,
		l.RegistrationDate, ColState, l.Holder, ColPresence,
		l.Door, l.Description, l.Observation,
	}
	for _, f := range cfg.ActiveCustomFields() {
		cols = append(cols, f.Label)
	}
	return cols
}
