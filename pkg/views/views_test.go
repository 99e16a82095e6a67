package views

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trackjournal/pkg/form"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

func newViews(t *testing.T, variant string) *Views {
	t.Helper()
	v, err := New(variant)
	if err != nil {
		t.Fatalf("views: %v", err)
	}
	return v
}

func TestResolveTheme(t *testing.T) {
	light, err := ResolveTheme("")
	if err != nil {
		t.Fatalf("light: %v", err)
	}
	if light.Variant != VariantLight || light.CSSVars["--color-background"] != "#ffffff" {
		t.Fatalf("unexpected light theme: %+v", light.CSSVars)
	}

	dark, err := ResolveTheme(VariantDark)
	if err != nil {
		t.Fatalf("dark: %v", err)
	}
	if dark.CSSVars["--color-background"] != "#0f172a" || dark.CSSVars["--color-primary"] != "#3b82f6" {
		t.Fatalf("dark variant not merged over base: %+v", dark.CSSVars)
	}
	if !strings.Contains(dark.Style, "--color-surface: #1e293b;") {
		t.Fatalf("style missing surface var: %s", dark.Style)
	}

	if _, err := ResolveTheme("sepia"); err == nil {
		t.Fatalf("expected unknown variant error")
	}
}

func TestCardFor(t *testing.T) {
	card := CardFor(vehicle.Vehicle{
		ID: "v1", Make: "Toyota", Model: "Camry", Year: 2024, Type: vehicle.TypeCar,
		Color: "Blue", VIN: "1HGCM82633A004352",
	}, "/garage/v1/edit")

	want := Card{
		ID:    "v1",
		Title: "2024 Toyota Camry",
		Type:  "car",
		Details: []Detail{
			{Label: "Color", Value: "Blue"},
			{Label: "VIN", Value: "1HGCM82633A004352"},
		},
		EditURL: "/garage/v1/edit",
	}
	if diff := cmp.Diff(want, card); diff != "" {
		t.Fatalf("card mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderGarage_Cards(t *testing.T) {
	v := newViews(t, VariantDark)
	var buf bytes.Buffer
	err := v.RenderGarage(&buf, Garage{
		AddURL: "/garage/new",
		Cards: []Card{
			CardFor(vehicle.Vehicle{ID: "v1", Make: "Honda", Model: "Civic", Year: 2018, Type: vehicle.TypeMotorcycle, Notes: "<b>fast</b>"}, ""),
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"My Garage", "2018 Honda Civic", "Motorcycle", `data-icon="motorbike"`, "&lt;b&gt;fast&lt;/b&gt;", "--color-background: #0f172a;"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "No vehicles yet") {
		t.Fatalf("empty state must not render with cards")
	}
}

func TestRenderGarage_Empty(t *testing.T) {
	v := newViews(t, "")
	var buf bytes.Buffer
	if err := v.RenderGarage(&buf, Garage{AddURL: "/garage/new"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "No vehicles yet") || !strings.Contains(out, `href="/garage/new"`) {
		t.Fatalf("expected empty state:\n%s", out)
	}
}

func TestRenderError_Defaults(t *testing.T) {
	v := newViews(t, "")
	var buf bytes.Buffer
	if err := v.RenderError(&buf, ErrorState{RetryURL: "/garage"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Something went wrong", "An error occurred while loading the content. Please try again.", "Try Again"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormFromSnapshot(t *testing.T) {
	snap := form.Snapshot{
		Mode:   form.ModeCreate,
		State:  form.Ready,
		Title:  "Add Vehicle",
		Values: vehicle.Data{Type: vehicle.TypeCar, Year: 2025},
		Errors: map[string]string{"make": "Make is required"},
		Makes:  []vehicle.Make{{ID: "1", Name: "Toyota"}},
	}
	page := FormFromSnapshot(snap, "/garage/new", "/garage")
	if page.Submit != "Add Vehicle" {
		t.Fatalf("unexpected submit label %q", page.Submit)
	}
	byName := map[string]FormField{}
	for _, f := range page.Fields {
		byName[f.Name] = f
	}
	if byName["make"].Error != "Make is required" {
		t.Fatalf("make error not carried: %+v", byName["make"])
	}
	if !byName["model"].Disabled {
		t.Fatalf("model must be disabled until a make is chosen")
	}
	if !byName["type"].Choices[0].Selected {
		t.Fatalf("car must be selected: %+v", byName["type"].Choices)
	}

	v := newViews(t, "")
	var buf bytes.Buffer
	if err := v.RenderForm(&buf, page); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Add Vehicle", "Make is required", `<option value="Toyota">`, "Dual-Clutch"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderReset(t *testing.T) {
	v := newViews(t, "")
	var buf bytes.Buffer
	if err := v.RenderReset(&buf, ResetPage{Action: "/reset-password", Token: "abc", Error: "Passwords do not match"}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`value="abc"`, "Passwords do not match", `action="/reset-password"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output", want)
		}
	}

	buf.Reset()
	if err := v.RenderReset(&buf, ResetPage{Done: true}); err != nil {
		t.Fatalf("render done: %v", err)
	}
	if strings.Contains(buf.String(), "<form") {
		t.Fatalf("confirmation must not show the form")
	}
}
