// Package vehicle defines the garage record model shared by validation, the
// form controller, the stores and the HTTP surface.
package vehicle

import (
	"strconv"
	"strings"
	"time"
)

// Vehicle is a persisted garage record. ID, OwnerID and the timestamps are
// assigned by the store and never edited through a form.
type Vehicle struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"ownerId"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	Year         int       `json:"year"`
	Type         Type      `json:"type"`
	Engine       string    `json:"engine,omitempty"`
	Transmission string    `json:"transmission,omitempty"`
	Color        string    `json:"color,omitempty"`
	VIN          string    `json:"vin,omitempty"`
	LicensePlate string    `json:"licensePlate,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Data is the user-editable part of a Vehicle, used as the create payload.
type Data struct {
	Make         string `json:"make"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	Type         Type   `json:"type"`
	Engine       string `json:"engine,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	Color        string `json:"color,omitempty"`
	VIN          string `json:"vin,omitempty"`
	LicensePlate string `json:"licensePlate,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	Make         *string `json:"make,omitempty"`
	Model        *string `json:"model,omitempty"`
	Year         *int    `json:"year,omitempty"`
	Type         *Type   `json:"type,omitempty"`
	Engine       *string `json:"engine,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
	Color        *string `json:"color,omitempty"`
	VIN          *string `json:"vin,omitempty"`
	LicensePlate *string `json:"licensePlate,omitempty"`
	Notes        *string `json:"notes,omitempty"`
}

// Data returns the editable attributes of v.
func (v Vehicle) Data() Data {
	return Data{
		Make:         v.Make,
		Model:        v.Model,
		Year:         v.Year,
		Type:         v.Type,
		Engine:       v.Engine,
		Transmission: v.Transmission,
		Color:        v.Color,
		VIN:          v.VIN,
		LicensePlate: v.LicensePlate,
		Notes:        v.Notes,
	}
}

// Title is the card heading, e.g. "2024 Toyota Camry".
func (v Vehicle) Title() string {
	parts := make([]string, 0, 3)
	if v.Year > 0 {
		parts = append(parts, strconv.Itoa(v.Year))
	}
	if s := strings.TrimSpace(v.Make); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(v.Model); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}

// FullPatch converts d into a patch that overwrites every editable attribute.
func FullPatch(d Data) Patch {
	return Patch{
		Make:         &d.Make,
		Model:        &d.Model,
		Year:         &d.Year,
		Type:         &d.Type,
		Engine:       &d.Engine,
		Transmission: &d.Transmission,
		Color:        &d.Color,
		VIN:          &d.VIN,
		LicensePlate: &d.LicensePlate,
		Notes:        &d.Notes,
	}
}

// Apply writes the non-nil fields of p onto v.
func (p Patch) Apply(v *Vehicle) {
	if v == nil {
		return
	}
	if p.Make != nil {
		v.Make = *p.Make
	}
	if p.Model != nil {
		v.Model = *p.Model
	}
	if p.Year != nil {
		v.Year = *p.Year
	}
	if p.Type != nil {
		v.Type = *p.Type
	}
	if p.Engine != nil {
		v.Engine = *p.Engine
	}
	if p.Transmission != nil {
		v.Transmission = *p.Transmission
	}
	if p.Color != nil {
		v.Color = *p.Color
	}
	if p.VIN != nil {
		v.VIN = *p.VIN
	}
	if p.LicensePlate != nil {
		v.LicensePlate = *p.LicensePlate
	}
	if p.Notes != nil {
		v.Notes = *p.Notes
	}
}

// Empty reports whether the patch carries no changes.
func (p Patch) Empty() bool {
	return p.Make == nil && p.Model == nil && p.Year == nil && p.Type == nil &&
		p.Engine == nil && p.Transmission == nil && p.Color == nil &&
		p.VIN == nil && p.LicensePlate == nil && p.Notes == nil
}
