// Package views renders the server-side garage pages: the vehicle list with
// its empty state, the vehicle form, the password reset form and the error
// state.
package views

import (
	"embed"
	"io"
	"io/fs"
	"strconv"

	"github.com/goliatone/go-trackjournal/pkg/form"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

//go:embed templates/*.tpl
var embedded embed.FS

// Templates returns the embedded template tree.
func Templates() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Views renders pages with a resolved theme.
type Views struct {
	engine *Engine
	theme  Theme
}

// New builds the views for the given theme variant.
func New(variant string) (*Views, error) {
	th, err := ResolveTheme(variant)
	if err != nil {
		return nil, err
	}
	engine, err := NewEngine(Templates())
	if err != nil {
		return nil, err
	}
	if err := engine.Globals(map[string]any{"theme": th}); err != nil {
		return nil, err
	}
	return &Views{engine: engine, theme: th}, nil
}

// Theme returns the resolved theme.
func (v *Views) Theme() Theme { return v.theme }

// Detail is a labelled value on a vehicle card.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Card is the display form of a garage record.
type Card struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Details []Detail `json:"details"`
	Notes   string   `json:"notes,omitempty"`
	EditURL string   `json:"editUrl,omitempty"`
}

// CardFor builds the card for v. Empty optional attributes are omitted.
func CardFor(v vehicle.Vehicle, editURL string) Card {
	card := Card{ID: v.ID, Title: v.Title(), Type: string(v.Type), Notes: v.Notes, EditURL: editURL}
	add := func(label, value string) {
		if value != "" {
			card.Details = append(card.Details, Detail{Label: label, Value: value})
		}
	}
	add("Engine", v.Engine)
	add("Transmission", v.Transmission)
	add("Color", v.Color)
	add("License Plate", v.LicensePlate)
	add("VIN", v.VIN)
	return card
}

// Garage is the vehicle list page.
type Garage struct {
	Title  string `json:"title"`
	Cards  []Card `json:"cards"`
	AddURL string `json:"addUrl"`
	Flash  string `json:"flash,omitempty"`
}

// EmptyState is shown when a list has nothing to display.
type EmptyState struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ActionLabel string `json:"actionLabel,omitempty"`
	ActionURL   string `json:"actionUrl,omitempty"`
}

// DefaultEmptyState returns the stock empty state.
func DefaultEmptyState() EmptyState {
	return EmptyState{
		Title:       "No items found",
		Message:     "There are no items to display at the moment.",
		ActionLabel: "Add Item",
	}
}

// ErrorState is the full page error with an optional retry link.
type ErrorState struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RetryLabel string `json:"retryLabel,omitempty"`
	RetryURL   string `json:"retryUrl,omitempty"`
}

// DefaultErrorState returns the stock error state.
func DefaultErrorState() ErrorState {
	return ErrorState{
		Title:      "Something went wrong",
		Message:    "An error occurred while loading the content. Please try again.",
		RetryLabel: "Try Again",
	}
}

// RenderGarage writes the list page, falling back to the empty state when
// there are no cards.
func (v *Views) RenderGarage(w io.Writer, page Garage) error {
	if page.Title == "" {
		page.Title = "My Garage"
	}
	empty := EmptyState{
		Title:       "No vehicles yet",
		Message:     "Add your first vehicle to start tracking it.",
		ActionLabel: "Add Vehicle",
		ActionURL:   page.AddURL,
	}
	return v.engine.Render(w, "garage", map[string]any{"page": page, "empty": empty})
}

// RenderError writes a full page error.
func (v *Views) RenderError(w io.Writer, state ErrorState) error {
	defaults := DefaultErrorState()
	if state.Title == "" {
		state.Title = defaults.Title
	}
	if state.Message == "" {
		state.Message = defaults.Message
	}
	if state.RetryURL != "" && state.RetryLabel == "" {
		state.RetryLabel = defaults.RetryLabel
	}
	return v.engine.Render(w, "error", map[string]any{"state": state})
}

// Choice is a select option.
type Choice struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected"`
}

// FormField is one input of the vehicle form.
type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Value    string   `json:"value"`
	Error    string   `json:"error,omitempty"`
	Required bool     `json:"required"`
	Disabled bool     `json:"disabled"`
	Choices  []Choice `json:"choices,omitempty"`
	List     []string `json:"list,omitempty"`
}

// FormPage is the vehicle form.
type FormPage struct {
	Title     string      `json:"title"`
	Action    string      `json:"action"`
	CancelURL string      `json:"cancelUrl"`
	Submit    string      `json:"submit"`
	Banner    string      `json:"banner,omitempty"`
	Success   string      `json:"success,omitempty"`
	Fields    []FormField `json:"fields"`
	Busy      bool        `json:"busy"`
}

// FormFromSnapshot lays out snap as form fields.
func FormFromSnapshot(snap form.Snapshot, action, cancelURL string) FormPage {
	values := snap.Values
	errs := snap.Errors
	page := FormPage{
		Title:     snap.Title,
		Action:    action,
		CancelURL: cancelURL,
		Submit:    "Add Vehicle",
		Banner:    snap.Banner,
		Success:   snap.SuccessMessage,
		Busy:      snap.State == form.Submitting,
	}
	if snap.Mode == form.ModeEdit {
		page.Submit = "Save Changes"
	}

	types := make([]Choice, 0, len(vehicle.Types()))
	for _, info := range vehicle.Types() {
		types = append(types, Choice{Value: string(info.Value), Label: info.Label, Selected: info.Value == values.Type})
	}
	makes := make([]Choice, 0, len(snap.Makes))
	for _, mk := range snap.Makes {
		makes = append(makes, Choice{Value: mk.Name, Label: mk.Name, Selected: mk.Name == values.Make})
	}
	models := make([]Choice, 0, len(snap.Models))
	for _, md := range snap.Models {
		models = append(models, Choice{Value: md.Name, Label: md.Name, Selected: md.Name == values.Model})
	}
	year := ""
	if values.Year != 0 {
		year = strconv.Itoa(values.Year)
	}

	page.Fields = []FormField{
		{Name: string(form.FieldType), Label: "Vehicle Type", Kind: "select", Value: string(values.Type), Required: true, Choices: types},
		{Name: string(form.FieldMake), Label: "Make", Kind: "combo", Value: values.Make, Required: true, Choices: makes},
		{Name: string(form.FieldModel), Label: "Model", Kind: "combo", Value: values.Model, Required: true, Choices: models, Disabled: !snap.ModelEnabled()},
		{Name: string(form.FieldYear), Label: "Year", Kind: "number", Value: year, Required: true},
		{Name: string(form.FieldColor), Label: "Color", Kind: "text", Value: values.Color},
		{Name: string(form.FieldEngine), Label: "Engine", Kind: "text", Value: values.Engine},
		{Name: string(form.FieldTransmission), Label: "Transmission", Kind: "text", Value: values.Transmission, List: vehicle.TransmissionTypes},
		{Name: string(form.FieldVIN), Label: "VIN", Kind: "text", Value: values.VIN},
		{Name: string(form.FieldLicensePlate), Label: "License Plate", Kind: "text", Value: values.LicensePlate},
		{Name: string(form.FieldNotes), Label: "Notes", Kind: "textarea", Value: values.Notes},
	}
	for i := range page.Fields {
		page.Fields[i].Error = errs[page.Fields[i].Name]
	}
	return page
}

// RenderForm writes the vehicle form.
func (v *Views) RenderForm(w io.Writer, page FormPage) error {
	return v.engine.Render(w, "form", map[string]any{"page": page})
}

// ResetPage is the choose-a-new-password form reached from the reset email.
type ResetPage struct {
	Action string `json:"action"`
	Token  string `json:"token"`
	Error  string `json:"error,omitempty"`
	Done   bool   `json:"done"`
}

// RenderReset writes the password reset form, or its confirmation once Done.
func (v *Views) RenderReset(w io.Writer, page ResetPage) error {
	return v.engine.Render(w, "reset", map[string]any{"page": page})
}
