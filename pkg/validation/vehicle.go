package validation

import (
	"fmt"
	"math"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

const (
	minYear       = 1900
	maxMakeLen    = 50
	maxModelLen   = 50
	maxEngineLen  = 100
	maxTransLen   = 50
	maxColorLen   = 30
	maxVINLen     = 17
	maxPlateLen   = 20
	maxNotesLen   = 500
	strictVINLen  = 17
	maxEmailLen   = 254
	minPassLen    = 6
	maxPassLen    = 128
	categoryLabel = "Vehicle type"
)

// Candidate is a record as received from an editor or the wire. Year is a
// float64 so fractional values inside the range pass, matching clients that
// send the year as a plain JSON number.
type Candidate struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         float64 `json:"year"`
	Type         string  `json:"type"`
	Engine       string  `json:"engine,omitempty"`
	Transmission string  `json:"transmission,omitempty"`
	Color        string  `json:"color,omitempty"`
	VIN          string  `json:"vin,omitempty"`
	LicensePlate string  `json:"licensePlate,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}

// CandidateFromData lifts a typed payload into a Candidate.
func CandidateFromData(d vehicle.Data) Candidate {
	return Candidate{
		Make:         d.Make,
		Model:        d.Model,
		Year:         float64(d.Year),
		Type:         string(d.Type),
		Engine:       d.Engine,
		Transmission: d.Transmission,
		Color:        d.Color,
		VIN:          d.VIN,
		LicensePlate: d.LicensePlate,
		Notes:        d.Notes,
	}
}

// Data converts the candidate into a typed payload. Year is truncated.
func (c Candidate) Data() vehicle.Data {
	year := 0
	if !math.IsNaN(c.Year) && !math.IsInf(c.Year, 0) {
		year = int(c.Year)
	}
	return vehicle.Data{
		Make:         c.Make,
		Model:        c.Model,
		Year:         year,
		Type:         vehicle.Type(c.Type),
		Engine:       c.Engine,
		Transmission: c.Transmission,
		Color:        c.Color,
		VIN:          c.VIN,
		LicensePlate: c.LicensePlate,
		Notes:        c.Notes,
	}
}

// Vehicle validates a candidate record against the reference time now.
// This is the lenient rule set used for persisted records.
func Vehicle(c Candidate, now time.Time) Errors {
	errs := Errors{}

	if msg := required(c.Make, "Make", maxMakeLen); msg != "" {
		errs[FieldMake] = msg
	}
	if msg := required(c.Model, "Model", maxModelLen); msg != "" {
		errs[FieldModel] = msg
	}
	if msg := Year(c.Year, now); msg != "" {
		errs[FieldYear] = msg
	}
	if msg := Category(c.Type); msg != "" {
		errs[FieldType] = msg
	}

	optional := []struct {
		field string
		label string
		value string
		max   int
	}{
		{FieldEngine, "Engine", c.Engine, maxEngineLen},
		{FieldTransmission, "Transmission", c.Transmission, maxTransLen},
		{FieldColor, "Color", c.Color, maxColorLen},
		{FieldLicensePlate, "License plate", c.LicensePlate, maxPlateLen},
		{FieldNotes, "Notes", c.Notes, maxNotesLen},
	}
	for _, f := range optional {
		if msg := maxLength(f.value, f.label, f.max); msg != "" {
			errs[f.field] = msg
		}
	}
	if msg := VINLenient(c.VIN); msg != "" {
		errs[FieldVIN] = msg
	}

	return errs
}

// Data validates a typed payload.
func Data(d vehicle.Data, now time.Time) Errors {
	return Vehicle(CandidateFromData(d), now)
}

// Year checks the manufacture year. Zero and NaN count as missing.
func Year(year float64, now time.Time) string {
	if year == 0 || math.IsNaN(year) {
		return "Year is required"
	}
	upper := now.Year() + 1
	if year < minYear || year > float64(upper) {
		return fmt.Sprintf("Year must be between %d and %d", minYear, upper)
	}
	return ""
}

// Category checks the vehicle type against the closed enumeration.
func Category(raw string) string {
	if raw == "" {
		return categoryLabel + " is required"
	}
	if !vehicle.Type(raw).Valid() {
		return "Invalid vehicle type"
	}
	return ""
}

// VINLenient accepts any identification number up to 17 characters.
func VINLenient(vin string) string {
	return maxLength(vin, "VIN", maxVINLen)
}

// VINStrict rejects a non-empty identification number shorter than 17
// characters. It is applied by interactive editors on submit.
func VINStrict(vin string) string {
	if vin == "" {
		return ""
	}
	if textLength(vin) < strictVINLen {
		return fmt.Sprintf("VIN must be %d characters", strictVINLen)
	}
	return ""
}

func required(value, label string, max int) string {
	trimmed := trimText(value)
	if trimmed == "" {
		return label + " is required"
	}
	if textLength(trimmed) > max {
		return fmt.Sprintf("%s must be %d characters or less", label, max)
	}
	return ""
}

func maxLength(value, label string, max int) string {
	if value == "" {
		return ""
	}
	if textLength(trimText(value)) > max {
		return fmt.Sprintf("%s must be %d characters or less", label, max)
	}
	return ""
}
