package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"edc-panorama-api-server/internal/models"
)

// maxReportedErrors caps the validation errors returned to the caller.
const maxReportedErrors = 10

// MissingColumnsError rejects a whole batch whose header lacks required columns.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Columns, ", "))
}

// ImportResult is the outcome of reconciling a spreadsheet against live data.
// When Errors is not empty nothing must be written.
type ImportResult struct {
	Assets          []models.Asset `json:"-"`
	DuplicateInFile int            `json:"duplicateInFile"`
	AlreadyExisting int            `json:"alreadyExisting"`
	Errors          []string       `json:"errors,omitempty"`
}

// Valid reports whether the batch passed category validation.
func (r ImportResult) Valid() bool { return len(r.Errors) == 0 }

// Reconcile turns spreadsheet rows into candidate assets. Rows with a blank
// code are ignored, the first occurrence of a code within the file wins and
// codes already present in liveCodes are skipped.
func Reconcile(headers []string, rows []map[string]string, liveCodes []string, cfg models.AppConfig, now time.Time) (ImportResult, error) {
	if missing := missingColumns(headers); len(missing) > 0 {
		return ImportResult{}, &MissingColumnsError{Columns: missing}
	}

	live := make(map[string]struct{}, len(liveCodes))
	for _, c := range liveCodes {
		live[c] = struct{}{}
	}
	labels := LabelsFor(cfg)
	seen := make(map[string]struct{})
	var res ImportResult
	var errs []string

	for i, row := range rows {
		code := strings.TrimSpace(row[ColCode])
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			res.DuplicateInFile++
			continue
		}
		seen[code] = struct{}{}

		if _, exists := live[code]; exists {
			res.AlreadyExisting++
			continue
		}

		category := NormalizeCategory(row[ColCategory])
		if !cfg.HasCategory(category) {
			errs = append(errs, fmt.Sprintf("Ligne %d: La catégorie '%s' n'existe pas.", i+2, category))
		}

		asset := models.Asset{
			Code:             code,
			Name:             strings.TrimSpace(row[ColName]),
			Category:         category,
			Location:         strings.TrimSpace(row[ColLocation]),
			AcquisitionYear:  strings.TrimSpace(row[ColYear]),
			State:            orDefault(row[ColState], cfg.DefaultState()),
			HolderPresence:   orDefault(row[ColPresence], cfg.DefaultHolderPresence()),
			RegistrationDate: normalizeDate(row[labels.RegistrationDate], now),
			Holder:           strings.TrimSpace(row[labels.Holder]),
			Door:             strings.TrimSpace(row[labels.Door]),
			Description:      strings.TrimSpace(row[labels.Description]),
			Observation:      strings.TrimSpace(row[labels.Observation]),
			CustomAttributes: map[string]string{},
		}
		for _, field := range cfg.CustomFields {
			if v, ok := row[field.Label]; ok && strings.TrimSpace(v) != "" {
				asset.CustomAttributes[field.ID] = strings.TrimSpace(v)
			}
		}
		res.Assets = append(res.Assets, asset)
	}

	if len(errs) > 0 {
		res.Assets = nil
		if len(errs) > maxReportedErrors {
			errs = errs[:maxReportedErrors]
		}
		res.Errors = errs
	}
	return res, nil
}

// NormalizeCategory extracts the category code from "AA - Matériel de bureau",
// "AA Matériel" or "aa".
func NormalizeCategory(raw string) string {
	raw = strings.TrimSpace(raw)
	var code string
	switch {
	case strings.Contains(raw, "-"):
		code = strings.TrimSpace(strings.SplitN(raw, "-", 2)[0])
	case strings.Contains(raw, " "):
		code = strings.TrimSpace(strings.SplitN(raw, " ", 2)[0])
	default:
		code = raw
	}
	return strings.ToUpper(code)
}

func missingColumns(headers []string) []string {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[strings.TrimSpace(h)] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// excelEpoch is day zero of spreadsheet date serials.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serials below minDateSerial (1927-05-18) are read as text, so a bare year
// such as "2024" is kept as written.
const (
	minDateSerial = 10000
	maxDateSerial = 2958466
)

// normalizeDate keeps textual dates, converts spreadsheet serials and falls
// back to today for blank cells.
func normalizeDate(v string, now time.Time) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return now.Format("2006-01-02")
	}
	if serial, err := strconv.ParseFloat(v, 64); err == nil && serial >= minDateSerial && serial < maxDateSerial {
		return excelEpoch.AddDate(0, 0, int(serial)).Format("2006-01-02")
	}
	return v
}
