package form

import (
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// State is the controller lifecycle position.
type State int

const (
	Initializing State = iota
	Ready
	LoadError
	Submitting
	SubmitSuccess
	SubmitError
	Discarded
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case LoadError:
		return "load-error"
	case Submitting:
		return "submitting"
	case SubmitSuccess:
		return "submit-success"
	case SubmitError:
		return "submit-error"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Mode distinguishes create and edit sessions.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Intent selects what a form session does: create a record for an owner, or
// edit an existing record.
type Intent struct {
	mode    Mode
	ownerID string
	record  *vehicle.Vehicle
}

// Create starts a session that adds a record owned by ownerID.
func Create(ownerID string) Intent {
	return Intent{mode: ModeCreate, ownerID: ownerID}
}

// Edit starts a session that updates v. A nil record is accepted, but every
// submit fails with ErrMissingRecord.
func Edit(v *vehicle.Vehicle) Intent {
	intent := Intent{mode: ModeEdit}
	if v != nil {
		cp := *v
		intent.record = &cp
		intent.ownerID = v.OwnerID
	}
	return intent
}

func (i Intent) Mode() Mode { return i.mode }

// Field names accepted by SetField.
type Field string

const (
	FieldMake         Field = "make"
	FieldModel        Field = "model"
	FieldYear         Field = "year"
	FieldType         Field = "type"
	FieldEngine       Field = "engine"
	FieldTransmission Field = "transmission"
	FieldColor        Field = "color"
	FieldVIN          Field = "vin"
	FieldLicensePlate Field = "licensePlate"
	FieldNotes        Field = "notes"
)

// Fields lists the editable fields in display order.
func Fields() []Field {
	return []Field{
		FieldType, FieldMake, FieldModel, FieldYear, FieldColor,
		FieldEngine, FieldTransmission, FieldVIN, FieldLicensePlate, FieldNotes,
	}
}

// Prompt is a confirmation dialog the renderer must show.
type Prompt struct {
	Title   string
	Message string
	Choices []string
}

// Cancel prompt choices.
const (
	ChoiceContinue = "Continue Editing"
	ChoiceCancel   = "Cancel"
)

// CancelPrompt is shown before discarding a session.
func CancelPrompt() Prompt {
	return Prompt{
		Title:   "Cancel",
		Message: "Are you sure you want to cancel? All entered data will be lost.",
		Choices: []string{ChoiceContinue, ChoiceCancel},
	}
}

// LoadFailure describes the full-screen error shown when a catalog load fails.
// Message is the user-facing text and Detail the underlying error.
type LoadFailure struct {
	Title   string
	Message string
	Detail  string
}

// Snapshot is an immutable view of the controller for renderers.
type Snapshot struct {
	Mode           Mode
	State          State
	Title          string
	Values         vehicle.Data
	Errors         map[string]string
	Banner         string
	Load           *LoadFailure
	Makes          []vehicle.Make
	Models         []vehicle.Model
	MakeID         string
	ModelID        string
	MakesLoading   bool
	ModelsLoading  bool
	Dirty          bool
	Result         *vehicle.Vehicle
	SuccessMessage string
}

// ModelEnabled reports whether the model picker accepts input.
func (s Snapshot) ModelEnabled() bool {
	return s.Values.Make != ""
}
