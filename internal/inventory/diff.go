package inventory

import "edc-panorama-api-server/internal/models"

// trackedFields are compared on every edit and written into the audit log.
var trackedFields = []string{
	"name", "location", "state", "holder", "category", "description",
	"acquisitionYear", "door", "holderPresence",
}

// CriticalFields need a written justification when they change.
var CriticalFields = []string{
	"location", "acquisitionYear", "name", "category", "door", "state", "holderPresence",
}

func fieldValue(a models.Asset, field string) string {
	switch field {
	case "name":
		return a.Name
	case "location":
		return a.Location
	case "state":
		return a.State
	case "holder":
		return a.Holder
	case "category":
		return a.Category
	case "description":
		return a.Description
	case "acquisitionYear":
		return a.AcquisitionYear
	case "door":
		return a.Door
	case "holderPresence":
		return a.HolderPresence
	}
	return ""
}

// Diff lists the tracked fields whose value differs between before and after.
func Diff(before, after models.Asset) []models.FieldChange {
	var changes []models.FieldChange
	for _, field := range trackedFields {
		oldVal, newVal := fieldValue(before, field), fieldValue(after, field)
		if oldVal != newVal {
			changes = append(changes, models.FieldChange{Field: field, Before: oldVal, After: newVal})
		}
	}
	return changes
}

// ChangedCriticalFields returns the critical fields modified by the edit.
func ChangedCriticalFields(before, after models.Asset) []string {
	var changed []string
	for _, field := range CriticalFields {
		if fieldValue(before, field) != fieldValue(after, field) {
			changed = append(changed, field)
		}
	}
	return changed
}

// RequiresJustification reports whether the edit touches a critical field.
func RequiresJustification(before, after models.Asset) bool {
	return len(ChangedCriticalFields(before, after)) > 0
}
