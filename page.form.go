package main

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// FormState is the state of a page form.
type FormState int

const (
	FormIdle FormState = iota
	FormDraftingNew
	FormEditingExisting
	FormSubmitting
)

func (s FormState) String() string {
	switch s {
	case FormIdle:
		return "idle"
	case FormDraftingNew:
		return "drafting"
	case FormEditingExisting:
		return "editing"
	case FormSubmitting:
		return "submitting"
	default:
		return fmt.Sprintf("FormState(%d)", int(s))
	}
}

// FormController holds the new draft and the edit draft of a page and
// submits the active one. At most one draft is active: the edit draft
// when a record is selected, the new draft otherwise.
type FormController[T Record[T]] struct {
	mu       sync.Mutex
	logger   *zap.Logger
	schema   *Schema[T]
	gateway  Gateway[T]
	store    *CollectionStore[T]
	notifier Notifier

	state      FormState
	newValues  FormValues
	editBase   T
	editValues FormValues
	editing    bool
	// resume is the state restored when a submission fails.
	resume FormState
}

func NewFormController[T Record[T]](logger *zap.Logger, schema *Schema[T], gateway Gateway[T], store *CollectionStore[T], notifier Notifier) *FormController[T] {
	return &FormController[T]{
		logger:    logger,
		schema:    schema,
		gateway:   gateway,
		store:     store,
		notifier:  notifier,
		state:     FormIdle,
		newValues: FormValues{},
	}
}

// State returns the current form state.
func (f *FormController[T]) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Values returns a copy of the active draft values.
func (f *FormController[T]) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editing {
		return f.editValues.Clone()
	}
	return f.newValues.Clone()
}

// Editing returns the record being edited.
func (f *FormController[T]) Editing() (T, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editBase, f.editing
}

// SelectForEdit makes a copy of the record the active draft. Any in-progress
// new draft is discarded.
func (f *FormController[T]) SelectForEdit(rec T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrSubmitInFlight
	}
	f.editBase = f.schema.clone(rec)
	f.editValues = f.schema.Values(rec).Clone()
	f.editing = true
	f.newValues = FormValues{}
	f.state = FormEditingExisting
	return nil
}

// FieldChanged updates one field of the active draft.
func (f *FormController[T]) FieldChanged(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrSubmitInFlight
	}
	if !f.schema.hasField(field) {
		return fmt.Errorf("unknown field %q", field)
	}
	if f.editing {
		f.editValues[field] = value
		return nil
	}
	f.newValues[field] = value
	if f.newValues.Blank() {
		f.state = FormIdle
	} else {
		f.state = FormDraftingNew
	}
	return nil
}

// Cancel leaves edit mode. The new draft is cleared when the schema asks for it.
func (f *FormController[T]) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FormSubmitting {
		return ErrSubmitInFlight
	}
	if !f.editing && !f.schema.ClearOnCancel {
		return nil
	}
	var zero T
	f.editing = false
	f.editBase = zero
	f.editValues = nil
	if f.schema.ClearOnCancel {
		f.newValues = FormValues{}
	}
	if f.newValues.Blank() {
		f.state = FormIdle
	} else {
		f.state = FormDraftingNew
	}
	return nil
}

// Submit validates and sends the active draft. On success the store is
// patched with the record returned by the backend and the draft is reset.
// On failure the draft is kept and the form goes back to its prior state.
func (f *FormController[T]) Submit(ctx context.Context) (T, error) {
	var zero T
	f.mu.Lock()
	if f.state == FormSubmitting {
		f.mu.Unlock()
		f.notifier.Notify(NoticeWarning, "A submission is already in progress.")
		return zero, ErrSubmitInFlight
	}

	editing := f.editing
	values := f.newValues.Clone()
	base := zero
	rules := f.schema.CreateRules
	if editing {
		values = f.editValues.Clone()
		base = f.schema.clone(f.editBase)
		rules = f.schema.UpdateRules
	}

	if err := checkRules(rules, values); err != nil {
		f.mu.Unlock()
		f.notifier.Notify(NoticeWarning, err.(*ClientValidationError).Reason)
		return zero, err
	}
	draft, err := f.schema.Build(base, values)
	if err != nil {
		f.mu.Unlock()
		f.notifier.Notify(NoticeWarning, err.Error())
		return zero, err
	}

	f.resume = f.state
	f.state = FormSubmitting
	f.mu.Unlock()

	var rec T
	if editing {
		rec, err = f.gateway.Update(ctx, base.RecordID(), draft)
		if err == nil && rec.RecordID() == 0 {
			rec = draft.WithRecordID(base.RecordID())
		}
	} else {
		rec, err = f.gateway.Create(ctx, draft)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.state = f.resume
		f.logger.Error("form: submission failed", zap.String("kind", f.schema.Resource), zap.Bool("editing", editing), zap.Error(err))
		if editing {
			f.notifier.Notify(NoticeError, f.schema.Messages.UpdateFailed)
		} else {
			f.notifier.Notify(NoticeError, f.schema.Messages.CreateFailed)
		}
		return zero, err
	}

	if editing {
		f.store.ApplyUpdate(rec)
		f.editing = false
		f.editBase = zero
		f.editValues = nil
		f.notifier.Notify(NoticeSuccess, f.schema.Messages.Updated)
	} else {
		f.store.ApplyCreate(rec)
		f.newValues = FormValues{}
		if f.schema.OnCreated != nil {
			f.schema.OnCreated(rec)
		}
		f.notifier.Notify(NoticeSuccess, f.schema.Messages.Created)
	}
	f.state = FormIdle
	return rec, nil
}
