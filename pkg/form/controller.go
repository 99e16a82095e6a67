package form

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/validation"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Submitter persists the record produced by a form session.
type Submitter interface {
	Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error)
	Update(ctx context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error)
}

// Controller is a single vehicle editor session. It is safe for concurrent
// use; actions are applied in the order they acquire the controller.
type Controller struct {
	mu sync.Mutex

	intent    Intent
	resolver  catalog.Resolver
	submitter Submitter
	now       func() time.Time
	logger    *zap.Logger
	onSuccess func(id string)
	onCancel  func()

	state  State
	seeded bool
	seed   vehicle.Data
	values vehicle.Data
	errors validation.Errors
	banner string
	load   *LoadFailure

	makes         []vehicle.Make
	models        []vehicle.Model
	makeID        string
	modelID       string
	makesLoading  bool
	modelsLoading bool

	// epoch tags dependent loads; a response is applied only while its epoch
	// is still current.
	epoch      uint64
	cancelLoad context.CancelFunc

	promptOpen bool
	cancelled  bool
	result     *vehicle.Vehicle
	success    string
}

// New builds a controller for intent. Call Init to load the catalog.
func New(intent Intent, resolver catalog.Resolver, submitter Submitter, opts ...Option) (*Controller, error) {
	if resolver == nil || submitter == nil {
		return nil, ErrMissingDependency
	}
	if intent.mode == "" {
		intent.mode = ModeCreate
	}
	c := &Controller{
		intent:    intent,
		resolver:  resolver,
		submitter: submitter,
		now:       time.Now,
		logger:    zap.NewNop(),
		state:     Initializing,
		errors:    validation.Errors{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Defaults returns the seed values of a create session at now.
func Defaults(now time.Time) vehicle.Data {
	return vehicle.Data{
		Year: now.Year(),
		Type: vehicle.TypeCar,
	}
}

// Init seeds the fields on first use and loads the make list. On failure the
// controller moves to LoadError and the error is returned.
func (c *Controller) Init(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Discarded {
		c.mu.Unlock()
		return ErrDiscarded
	}
	if c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitting
	}
	if !c.seeded {
		c.seed = c.initialValues()
		c.values = c.seed
		c.seeded = true
	}
	c.state = Initializing
	c.load = nil
	c.makesLoading = true
	c.mu.Unlock()

	makes, err := c.resolver.Makes(ctx)

	c.mu.Lock()
	c.makesLoading = false
	if c.state == Discarded {
		c.mu.Unlock()
		return ErrDiscarded
	}
	if err != nil {
		c.failLoad(MessageMakesFailed, err)
		c.mu.Unlock()
		c.logger.Warn("form: load makes failed", zap.Error(err))
		return err
	}
	c.makes = makes
	c.state = Ready

	m, ok := catalog.FindMakeByName(makes, c.values.Make)
	if !ok {
		c.mu.Unlock()
		return nil
	}
	c.makeID = m.ID
	load := c.beginLoad(ctx, m.ID)
	c.mu.Unlock()

	return c.awaitModels(load)
}

// Retry restarts initialization after a LoadError. Entered values are kept.
func (c *Controller) Retry(ctx context.Context) error {
	return c.Init(ctx)
}

func (c *Controller) initialValues() vehicle.Data {
	if c.intent.mode == ModeEdit && c.intent.record != nil {
		return c.intent.record.Data()
	}
	return Defaults(c.now())
}

// SetField applies a raw text value to field. VIN and license plate are
// uppercased and the year keeps its leading digits (0 when there are none).
// Only the error of the edited field is cleared. Editing after a failed
// submit returns the session to Ready. A make name that matches a catalog
// make other than the current one loads its models like SelectMake.
func (c *Controller) SetField(ctx context.Context, field Field, value string) error {
	c.mu.Lock()
	if err := c.checkEditable(); err != nil {
		c.mu.Unlock()
		return err
	}

	if field == FieldMake {
		load, ok := c.setMakeText(ctx, value)
		c.touched(field)
		c.mu.Unlock()
		if !ok {
			return nil
		}
		return c.awaitModels(load)
	}
	defer c.mu.Unlock()

	switch field {
	case FieldModel:
		c.values.Model = value
		c.modelID = ""
		for _, m := range c.models {
			if strings.EqualFold(m.Name, strings.TrimSpace(value)) {
				c.modelID = m.ID
				break
			}
		}
	case FieldYear:
		c.values.Year = parseLeadingInt(value)
	case FieldType:
		c.values.Type = vehicle.Type(strings.TrimSpace(value))
	case FieldEngine:
		c.values.Engine = value
	case FieldTransmission:
		c.values.Transmission = value
	case FieldColor:
		c.values.Color = value
	case FieldVIN:
		c.values.VIN = strings.ToUpper(value)
	case FieldLicensePlate:
		c.values.LicensePlate = strings.ToUpper(value)
	case FieldNotes:
		c.values.Notes = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	c.touched(field)
	return nil
}

// setMakeText handles free-text make edits. A name that no longer matches the
// selected make drops the dependent selection and abandons in-flight loads;
// a name matching another catalog make starts its model load. The caller
// holds c.mu and awaits the load after unlocking.
func (c *Controller) setMakeText(ctx context.Context, value string) (modelLoad, bool) {
	c.values.Make = value
	m, ok := catalog.FindMakeByName(c.makes, value)
	if ok && m.ID == c.makeID {
		return modelLoad{}, false
	}
	c.resetDependent()
	if !ok {
		return modelLoad{}, false
	}
	c.makeID = m.ID
	return c.beginLoad(ctx, m.ID), true
}

// SelectMake picks a make by id and loads its models. The model selection is
// cleared when the make changes. If another make is selected before the load
// completes, the earlier load is cancelled and its result discarded.
func (c *Controller) SelectMake(ctx context.Context, makeID string) error {
	c.mu.Lock()
	if err := c.checkEditable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if c.state == Initializing {
		c.mu.Unlock()
		return ErrNotReady
	}
	m, ok := c.makeByID(makeID)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: make %q", ErrUnknownChoice, makeID)
	}
	if m.ID != c.makeID {
		c.resetDependent()
	}
	c.makeID = m.ID
	c.values.Make = m.Name
	c.touched(FieldMake)
	load := c.beginLoad(ctx, m.ID)
	c.mu.Unlock()

	return c.awaitModels(load)
}

// SelectModel picks a model of the current make by id.
func (c *Controller) SelectModel(modelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkEditable(); err != nil {
		return err
	}
	for _, m := range c.models {
		if m.ID == modelID {
			c.modelID = m.ID
			c.values.Model = m.Name
			c.touched(FieldModel)
			return nil
		}
	}
	return fmt.Errorf("%w: model %q", ErrUnknownChoice, modelID)
}

// SearchMakes filters the make catalog by term.
func (c *Controller) SearchMakes(ctx context.Context, term string) ([]vehicle.Make, error) {
	return c.resolver.SearchMakes(ctx, term)
}

// SearchModels filters the models of the selected make by term. Without a
// selected make the result is empty.
func (c *Controller) SearchModels(ctx context.Context, term string) ([]vehicle.Model, error) {
	c.mu.Lock()
	makeID := c.makeID
	c.mu.Unlock()
	if makeID == "" {
		return []vehicle.Model{}, nil
	}
	return c.resolver.SearchModels(ctx, makeID, term)
}

type modelLoad struct {
	ctx    context.Context
	cancel context.CancelFunc
	makeID string
	epoch  uint64
}

// beginLoad supersedes any in-flight model load. The caller holds c.mu.
func (c *Controller) beginLoad(ctx context.Context, makeID string) modelLoad {
	if c.cancelLoad != nil {
		c.cancelLoad()
	}
	c.epoch++
	loadCtx, cancel := context.WithCancel(ctx)
	c.cancelLoad = cancel
	c.modelsLoading = true
	return modelLoad{ctx: loadCtx, cancel: cancel, makeID: makeID, epoch: c.epoch}
}

// awaitModels runs the load without holding c.mu and applies the result only
// if no newer load or reset happened meanwhile.
func (c *Controller) awaitModels(load modelLoad) error {
	models, err := c.resolver.Models(load.ctx, load.makeID)
	load.cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if load.epoch != c.epoch {
		c.logger.Debug("form: discarded stale model load",
			zap.String("make_id", load.makeID),
			zap.Uint64("epoch", load.epoch),
		)
		return nil
	}
	c.cancelLoad = nil
	c.modelsLoading = false
	if c.state == Discarded {
		return ErrDiscarded
	}
	if err != nil {
		c.failLoad(MessageModelsFailed, err)
		c.logger.Warn("form: load models failed", zap.String("make_id", load.makeID), zap.Error(err))
		return err
	}
	c.models = models
	return nil
}

// Submit validates the fields and, when valid, hands the record to the
// Submitter. Validation failures keep the session in Ready and are returned
// as validation.Errors. Submitter failures move it to SubmitError with the
// failure message as the form-level banner; entered values are kept.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case Submitting:
		c.mu.Unlock()
		return ErrSubmitting
	case Discarded:
		c.mu.Unlock()
		return ErrDiscarded
	case Initializing, LoadError, SubmitSuccess:
		c.mu.Unlock()
		return ErrNotReady
	}

	if c.intent.mode == ModeEdit && c.intent.record == nil {
		c.state = SubmitError
		c.banner = MessageMissingRecord
		c.mu.Unlock()
		return ErrMissingRecord
	}

	errs := validation.Data(c.values, c.now())
	if msg := validation.VINStrict(c.values.VIN); msg != "" {
		errs[validation.FieldVIN] = msg
	}
	if !errs.Empty() {
		c.errors = errs
		c.state = Ready
		c.mu.Unlock()
		return errs
	}

	c.state = Submitting
	c.banner = ""
	c.errors = validation.Errors{}
	intent := c.intent
	values := c.values
	c.mu.Unlock()

	var (
		saved    vehicle.Vehicle
		err      error
		fallback string
		message  string
	)
	if intent.mode == ModeEdit {
		rec := *intent.record
		vehicle.FullPatch(values).Apply(&rec)
		saved, err = c.submitter.Update(ctx, rec)
		fallback, message = MessageUpdateFailed, MessageUpdated
	} else {
		saved, err = c.submitter.Create(ctx, intent.ownerID, values)
		fallback, message = MessageCreateFailed, MessageCreated
	}

	c.mu.Lock()
	if err != nil {
		c.state = SubmitError
		c.banner = errorMessage(err, fallback)
		c.mu.Unlock()
		c.logger.Warn("form: submit failed", zap.String("mode", string(intent.mode)), zap.Error(err))
		return err
	}
	c.state = SubmitSuccess
	c.result = &saved
	c.success = message
	onSuccess := c.onSuccess
	c.mu.Unlock()

	if onSuccess != nil {
		onSuccess(saved.ID)
	}
	return nil
}

// Cancel opens the discard confirmation. The prompt is shown even when no
// field changed.
func (c *Controller) Cancel() (Prompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case Submitting:
		return Prompt{}, ErrSubmitting
	case Discarded:
		return Prompt{}, ErrDiscarded
	}
	c.promptOpen = true
	return CancelPrompt(), nil
}

// ResolveCancel answers the pending cancel prompt. ChoiceContinue keeps the
// session untouched; ChoiceCancel discards all field state and invokes the
// cancel callback exactly once.
func (c *Controller) ResolveCancel(choice string) error {
	c.mu.Lock()
	if !c.promptOpen {
		c.mu.Unlock()
		return ErrNoPrompt
	}

	switch choice {
	case ChoiceContinue:
		c.promptOpen = false
		c.mu.Unlock()
		return nil
	case ChoiceCancel:
	default:
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	c.promptOpen = false
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.epoch++
	c.state = Discarded
	c.values = vehicle.Data{}
	c.seed = vehicle.Data{}
	c.errors = validation.Errors{}
	c.banner = ""
	c.load = nil
	c.makes = nil
	c.models = nil
	c.makeID = ""
	c.modelID = ""
	c.modelsLoading = false

	var onCancel func()
	if !c.cancelled {
		c.cancelled = true
		onCancel = c.onCancel
	}
	c.mu.Unlock()

	if onCancel != nil {
		onCancel()
	}
	return nil
}

// Dirty reports whether any field differs from its seed value.
func (c *Controller) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values != c.seed
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a copy of the session for rendering.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Mode:           c.intent.mode,
		State:          c.state,
		Title:          "Add Vehicle",
		Values:         c.values,
		Errors:         c.errors.Clone(),
		Banner:         c.banner,
		Makes:          append([]vehicle.Make(nil), c.makes...),
		Models:         append([]vehicle.Model(nil), c.models...),
		MakeID:         c.makeID,
		ModelID:        c.modelID,
		MakesLoading:   c.makesLoading,
		ModelsLoading:  c.modelsLoading,
		Dirty:          c.values != c.seed,
		SuccessMessage: c.success,
	}
	if c.intent.mode == ModeEdit {
		snap.Title = "Edit Vehicle"
	}
	if c.load != nil {
		load := *c.load
		snap.Load = &load
	}
	if c.result != nil {
		res := *c.result
		snap.Result = &res
	}
	return snap
}

func (c *Controller) checkEditable() error {
	switch c.state {
	case Submitting:
		return ErrSubmitting
	case Discarded:
		return ErrDiscarded
	case LoadError:
		return ErrNotReady
	case SubmitSuccess:
		return ErrNotReady
	}
	return nil
}

// touched clears the field error and reopens a failed session for editing.
func (c *Controller) touched(field Field) {
	delete(c.errors, string(field))
	if c.state == SubmitError {
		c.state = Ready
	}
}

func (c *Controller) resetDependent() {
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.epoch++
	c.makeID = ""
	c.modelID = ""
	c.models = nil
	c.modelsLoading = false
	c.values.Model = ""
}

func (c *Controller) makeByID(id string) (vehicle.Make, bool) {
	for _, m := range c.makes {
		if m.ID == id {
			return m, true
		}
	}
	return vehicle.Make{}, false
}

func (c *Controller) failLoad(message string, err error) {
	c.state = LoadError
	c.load = &LoadFailure{
		Title:   TitleLoadError,
		Message: message,
		Detail:  errorMessage(err, message),
	}
}

func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// parseLeadingInt keeps the leading decimal digits of raw, ignoring
// surrounding whitespace. It returns 0 when there are none.
func parseLeadingInt(raw string) int {
	raw = strings.TrimSpace(raw)
	sign := 1
	if strings.HasPrefix(raw, "-") {
		sign = -1
		raw = raw[1:]
	} else if strings.HasPrefix(raw, "+") {
		raw = raw[1:]
	}
	n := 0
	for _, r := range raw {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		if n > 1_000_000 {
			break
		}
	}
	return sign * n
}
