package form

import "errors"

// Messages shown by the controller.
const (
	MessageMissingRecord = "Vehicle data is required for editing"
	MessageCreateFailed  = "Failed to create vehicle"
	MessageUpdateFailed  = "Failed to update vehicle"
	MessageMakesFailed   = "Failed to load vehicle makes"
	MessageModelsFailed  = "Failed to load vehicle models"
	TitleLoadError       = "Error Loading Form"
	MessageCreated       = "Vehicle added successfully!"
	MessageUpdated       = "Vehicle updated successfully!"
)

var (
	// ErrMissingRecord is returned by Submit for an edit session without a record.
	ErrMissingRecord = errors.New(MessageMissingRecord)
	// ErrSubmitting is returned for actions attempted while a submit is in flight.
	ErrSubmitting = errors.New("form: submit in progress")
	// ErrDiscarded is returned once the session has been cancelled.
	ErrDiscarded = errors.New("form: session discarded")
	// ErrNotReady is returned when an action needs a loaded catalog.
	ErrNotReady = errors.New("form: catalog not loaded")
	// ErrUnknownChoice is returned for ids or prompt choices that are not offered.
	ErrUnknownChoice = errors.New("form: unknown choice")
	// ErrNoPrompt is returned by ResolveCancel without a pending prompt.
	ErrNoPrompt = errors.New("form: no pending prompt")
	// ErrUnknownField is returned by SetField for unsupported fields.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrMissingDependency is returned by New without a resolver or submitter.
	ErrMissingDependency = errors.New("form: resolver and submitter are required")
)
