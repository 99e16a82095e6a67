// Package tui drives a vehicle editor session from the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-trackjournal/pkg/form"
	"github.com/goliatone/go-trackjournal/pkg/validation"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

const otherChoice = "Other (type it)"

// Actions offered after the fields are filled in.
const (
	ActionSave   = "Save"
	ActionEdit   = "Edit all fields"
	ActionCancel = "Cancel"
)

var fieldLabels = map[form.Field]string{
	form.FieldType:         "Vehicle type",
	form.FieldMake:         "Make",
	form.FieldModel:        "Model",
	form.FieldYear:         "Year",
	form.FieldColor:        "Color",
	form.FieldEngine:       "Engine",
	form.FieldTransmission: "Transmission",
	form.FieldVIN:          "VIN",
	form.FieldLicensePlate: "License plate",
	form.FieldNotes:        "Notes",
}

// Runner walks a form.Controller through its fields with a PromptDriver.
type Runner struct {
	driver PromptDriver
	theme  Theme
}

// New builds a runner. Without WithPromptDriver the survey driver is used.
func New(opts ...Option) *Runner {
	r := &Runner{theme: DefaultTheme()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Driver exposes the prompt driver for flows outside the vehicle editor.
func (r *Runner) Driver() PromptDriver { return r.driver }

// Run loads the catalog and edits until the record is saved, the session is
// cancelled (ErrCancelled) or input is aborted (ErrAborted).
func (r *Runner) Run(ctx context.Context, ctrl *form.Controller) (vehicle.Vehicle, error) {
	if err := r.load(ctx, ctrl, ctrl.Init); err != nil {
		return vehicle.Vehicle{}, err
	}
	_ = r.driver.Info(ctx, ctrl.Snapshot().Title)

	fields := form.Fields()
	for {
		if err := r.editFields(ctx, ctrl, fields); err != nil {
			return vehicle.Vehicle{}, err
		}
		fields = nil

		action, err := r.choose(ctx, SelectConfig{
			Message: "What next?",
			Options: []string{ActionSave, ActionEdit, ActionCancel},
		})
		if err != nil {
			return vehicle.Vehicle{}, err
		}

		switch action {
		case ActionEdit:
			fields = form.Fields()
		case ActionCancel:
			discarded, err := r.confirmCancel(ctx, ctrl)
			if err != nil {
				return vehicle.Vehicle{}, err
			}
			if discarded {
				return vehicle.Vehicle{}, ErrCancelled
			}
		case ActionSave:
			err := ctrl.Submit(ctx)
			var errs validation.Errors
			switch {
			case err == nil:
				snap := ctrl.Snapshot()
				_ = r.info(ctx, snap.SuccessMessage)
				return *snap.Result, nil
			case errors.As(err, &errs):
				r.reportErrors(ctx, errs)
				fields = invalidFields(errs)
			case errors.Is(err, form.ErrMissingRecord):
				return vehicle.Vehicle{}, err
			default:
				_ = r.fail(ctx, ctrl.Snapshot().Banner)
			}
		}
	}
}

// load runs fn and offers a retry while the catalog cannot be loaded.
func (r *Runner) load(ctx context.Context, ctrl *form.Controller, fn func(context.Context) error) error {
	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, form.ErrDiscarded) || errors.Is(err, form.ErrSubmitting) {
			return err
		}
		if snap := ctrl.Snapshot(); snap.Load != nil {
			_ = r.fail(ctx, snap.Load.Title+": "+snap.Load.Message)
			if snap.Load.Detail != "" && snap.Load.Detail != snap.Load.Message {
				_ = r.driver.Info(ctx, snap.Load.Detail)
			}
		}
		retry, cerr := r.driver.Confirm(ctx, ConfirmConfig{Message: "Try again?", Default: true})
		if cerr != nil {
			return cerr
		}
		if !retry {
			return err
		}
		fn = ctrl.Retry
	}
}

func (r *Runner) editFields(ctx context.Context, ctrl *form.Controller, fields []form.Field) error {
	for _, field := range fields {
		err := r.promptField(ctx, ctrl, field)
		if err == nil {
			continue
		}
		if ctrl.State() == form.LoadError {
			if lerr := r.load(ctx, ctrl, ctrl.Retry); lerr != nil {
				return lerr
			}
			continue
		}
		return err
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, ctrl *form.Controller, field form.Field) error {
	snap := ctrl.Snapshot()
	label := fieldLabels[field]
	help := snap.Errors[string(field)]

	switch field {
	case form.FieldType:
		return r.promptType(ctx, ctrl, snap, help)
	case form.FieldMake:
		return r.promptMake(ctx, ctrl, snap, help)
	case form.FieldModel:
		return r.promptModel(ctx, ctrl, snap, help)
	case form.FieldNotes:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: snap.Values.Notes, Help: help})
		if err != nil {
			return err
		}
		return ctrl.SetField(ctx, field, value)
	case form.FieldTransmission:
		help = strings.TrimSpace(help + " e.g. " + strings.Join(vehicle.TransmissionTypes, ", "))
	}

	value, err := r.driver.Input(ctx, InputConfig{
		Message: label,
		Default: currentText(snap.Values, field),
		Help:    help,
	})
	if err != nil {
		return err
	}
	return ctrl.SetField(ctx, field, value)
}

func (r *Runner) promptType(ctx context.Context, ctrl *form.Controller, snap form.Snapshot, help string) error {
	types := vehicle.Types()
	options := make([]string, len(types))
	def := 0
	for i, info := range types {
		options[i] = info.Label
		if info.Value == snap.Values.Type {
			def = i
		}
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: fieldLabels[form.FieldType], Options: options, DefaultIndex: def, Help: help})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(types) {
		return ErrInvalidChoice
	}
	return ctrl.SetField(ctx, form.FieldType, string(types[idx].Value))
}

func (r *Runner) promptMake(ctx context.Context, ctrl *form.Controller, snap form.Snapshot, help string) error {
	makes := snap.Makes
	options := make([]string, 0, len(makes)+1)
	def := len(makes)
	for i, mk := range makes {
		options = append(options, mk.Name)
		if mk.ID == snap.MakeID {
			def = i
		}
	}
	options = append(options, otherChoice)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: fieldLabels[form.FieldMake], Options: options, DefaultIndex: def, Help: help, PageSize: 10})
	if err != nil {
		return err
	}
	switch {
	case idx >= 0 && idx < len(makes):
		return ctrl.SelectMake(ctx, makes[idx].ID)
	case idx == len(makes):
		value, err := r.driver.Input(ctx, InputConfig{Message: fieldLabels[form.FieldMake], Default: snap.Values.Make, Help: help})
		if err != nil {
			return err
		}
		if err := ctrl.SetField(ctx, form.FieldMake, value); err != nil {
			return err
		}
		if ctrl.Snapshot().MakeID == "" {
			makes, err := ctrl.SearchMakes(ctx, value)
			if err == nil {
				names := make([]string, 0, len(makes))
				for _, mk := range makes {
					names = append(names, mk.Name)
				}
				r.suggest(ctx, value, names)
			}
		}
		return nil
	default:
		return ErrInvalidChoice
	}
}

func (r *Runner) promptModel(ctx context.Context, ctrl *form.Controller, snap form.Snapshot, help string) error {
	input := func() error {
		value, err := r.driver.Input(ctx, InputConfig{Message: fieldLabels[form.FieldModel], Default: snap.Values.Model, Help: help})
		if err != nil {
			return err
		}
		if err := ctrl.SetField(ctx, form.FieldModel, value); err != nil {
			return err
		}
		if ctrl.Snapshot().ModelID == "" {
			models, err := ctrl.SearchModels(ctx, value)
			if err == nil {
				names := make([]string, 0, len(models))
				for _, md := range models {
					names = append(names, md.Name)
				}
				r.suggest(ctx, value, names)
			}
		}
		return nil
	}
	if len(snap.Models) == 0 {
		return input()
	}

	options := make([]string, 0, len(snap.Models)+1)
	def := len(snap.Models)
	for i, md := range snap.Models {
		options = append(options, md.Name)
		if md.ID == snap.ModelID {
			def = i
		}
	}
	options = append(options, otherChoice)

	idx, err := r.driver.Select(ctx, SelectConfig{Message: fieldLabels[form.FieldModel], Options: options, DefaultIndex: def, Help: help, PageSize: 10})
	if err != nil {
		return err
	}
	switch {
	case idx >= 0 && idx < len(snap.Models):
		return ctrl.SelectModel(snap.Models[idx].ID)
	case idx == len(snap.Models):
		return input()
	default:
		return ErrInvalidChoice
	}
}

// suggest lists catalog entries matching a typed value that is not in the
// catalog itself.
func (r *Runner) suggest(ctx context.Context, typed string, names []string) {
	if len(names) == 0 {
		return
	}
	_ = r.driver.Info(ctx, fmt.Sprintf("%q is not in the catalog. Matching entries: %s", strings.TrimSpace(typed), strings.Join(names, ", ")))
}

// confirmCancel shows the discard prompt and reports whether the session was
// discarded.
func (r *Runner) confirmCancel(ctx context.Context, ctrl *form.Controller) (bool, error) {
	prompt, err := ctrl.Cancel()
	if err != nil {
		return false, err
	}
	choice, err := r.choose(ctx, SelectConfig{Message: prompt.Message, Options: prompt.Choices})
	if err != nil {
		_ = ctrl.ResolveCancel(form.ChoiceContinue)
		return false, err
	}
	if err := ctrl.ResolveCancel(choice); err != nil {
		return false, err
	}
	return choice == form.ChoiceCancel, nil
}

func (r *Runner) choose(ctx context.Context, cfg SelectConfig) (string, error) {
	idx, err := r.driver.Select(ctx, cfg)
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(cfg.Options) {
		return "", ErrInvalidChoice
	}
	return cfg.Options[idx], nil
}

func (r *Runner) reportErrors(ctx context.Context, errs validation.Errors) {
	for _, field := range errs.Fields() {
		_ = r.fail(ctx, fmt.Sprintf("%s: %s", fieldLabels[form.Field(field)], errs[field]))
	}
}

func (r *Runner) info(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Runner) fail(ctx context.Context, msg string) error {
	if msg == "" {
		return nil
	}
	return r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
}

// invalidFields keeps the display order of the fields that failed.
func invalidFields(errs validation.Errors) []form.Field {
	var out []form.Field
	for _, field := range form.Fields() {
		if errs.Has(string(field)) {
			out = append(out, field)
		}
	}
	return out
}

func currentText(values vehicle.Data, field form.Field) string {
	switch field {
	case form.FieldYear:
		if values.Year == 0 {
			return ""
		}
		return strconv.Itoa(values.Year)
	case form.FieldColor:
		return values.Color
	case form.FieldEngine:
		return values.Engine
	case form.FieldTransmission:
		return values.Transmission
	case form.FieldVIN:
		return values.VIN
	case form.FieldLicensePlate:
		return values.LicensePlate
	}
	return ""
}
