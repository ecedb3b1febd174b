package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// PageView is the entity independent view of a page used by the console.
type PageView interface {
	Title() string
	Fields() []FieldSpec
	Columns() []string
	Rows() [][]string
	FormState() FormState
	FormValues() FormValues
	ConfirmDelete() bool
	Mount(ctx context.Context) error
	Reload(ctx context.Context) error
	SetField(field, value string) error
	SubmitForm(ctx context.Context) error
	CancelForm() error
	EditAt(index int) error
	DeleteAt(ctx context.Context, index int) error
}

var _ PageView = (*Page[Author])(nil) // ensure Page implements PageView.

// Page composes the store, the seeder and the form of one entity.
type Page[T Record[T]] struct {
	logger    *zap.Logger
	schema    *Schema[T]
	gateway   Gateway[T]
	notifier  Notifier
	store     *CollectionStore[T]
	seeder    *Seeder[T]
	form      *FormController[T]
	reconcile bool

	mu     sync.Mutex
	seeded bool
}

// PageOption customizes a Page.
type PageOption func(*pageOptions)

type pageOptions struct {
	reconcile bool
}

// WithReconcile reloads the collection after each successful mutation.
func WithReconcile(enabled bool) PageOption {
	return func(o *pageOptions) { o.reconcile = enabled }
}

func NewPage[T Record[T]](logger *zap.Logger, schema *Schema[T], gateway Gateway[T], notifier Notifier, opts ...PageOption) *Page[T] {
	o := &pageOptions{}
	for _, opt := range opts {
		opt(o)
	}
	logger = logger.With(zap.String("page", schema.Resource))
	store := NewCollectionStore(logger, schema.Resource, gateway)
	return &Page[T]{
		logger:    logger,
		schema:    schema,
		gateway:   gateway,
		notifier:  notifier,
		store:     store,
		seeder:    NewSeeder(logger, store, gateway),
		form:      NewFormController(logger, schema, gateway, store, notifier),
		reconcile: o.reconcile,
	}
}

func (p *Page[T]) Store() *CollectionStore[T] { return p.store }

func (p *Page[T]) Form() *FormController[T] { return p.form }

// Mount loads the collection. After the first successful load, an empty
// collection is seeded with the schema samples.
func (p *Page[T]) Mount(ctx context.Context) error {
	if err := p.store.Load(ctx); err != nil {
		p.notifier.Notify(NoticeError, p.schema.Messages.LoadFailed)
		return err
	}

	p.mu.Lock()
	first := !p.seeded
	p.seeded = true
	p.mu.Unlock()
	if !first || len(p.schema.Samples) == 0 {
		return nil
	}

	created, err := p.seeder.SeedIfEmpty(ctx, p.schema.Samples)
	if created > 0 {
		p.notifier.Notify(NoticeInfo, fmt.Sprintf(p.schema.Messages.Seeded, created))
	}
	if err != nil {
		p.notifier.Notify(NoticeError, p.schema.Messages.LoadFailed)
	}
	return err
}

// Reload replaces the collection with the backend list.
func (p *Page[T]) Reload(ctx context.Context) error {
	if err := p.store.Load(ctx); err != nil {
		p.notifier.Notify(NoticeError, p.schema.Messages.LoadFailed)
		return err
	}
	return nil
}

// Delete removes the record from the backend then from the store.
func (p *Page[T]) Delete(ctx context.Context, id int64) error {
	if err := p.gateway.Delete(ctx, id); err != nil {
		p.logger.Error("page: failed to delete", zap.Int64("id", id), zap.Error(err))
		p.notifier.Notify(NoticeError, p.schema.Messages.DeleteFailed)
		return err
	}
	p.store.ApplyRemove(id)
	p.notifier.Notify(NoticeSuccess, p.schema.Messages.Deleted)
	p.reconcileAfter(ctx)
	return nil
}

// Submit sends the active draft.
func (p *Page[T]) Submit(ctx context.Context) (T, error) {
	rec, err := p.form.Submit(ctx)
	if err == nil {
		p.reconcileAfter(ctx)
	}
	return rec, err
}

func (p *Page[T]) reconcileAfter(ctx context.Context) {
	if !p.reconcile {
		return
	}
	if err := p.store.Load(ctx); err != nil {
		p.logger.Warn("page: failed to reconcile", zap.Error(err))
	}
}

func (p *Page[T]) Title() string { return p.schema.Title }

func (p *Page[T]) Fields() []FieldSpec { return p.schema.Fields }

func (p *Page[T]) Columns() []string { return p.schema.Columns }

func (p *Page[T]) Rows() [][]string {
	recs := p.store.Records()
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, p.schema.Row(rec))
	}
	return rows
}

func (p *Page[T]) FormState() FormState { return p.form.State() }

func (p *Page[T]) FormValues() FormValues { return p.form.Values() }

func (p *Page[T]) ConfirmDelete() bool { return p.schema.ConfirmDelete }

func (p *Page[T]) SetField(field, value string) error { return p.form.FieldChanged(field, value) }

func (p *Page[T]) SubmitForm(ctx context.Context) error {
	_, err := p.Submit(ctx)
	return err
}

func (p *Page[T]) CancelForm() error { return p.form.Cancel() }

var errNoSuchRow = errors.New("no record at this position")

func (p *Page[T]) recordAt(index int) (T, error) {
	recs := p.store.Records()
	if index < 0 || index >= len(recs) {
		var zero T
		return zero, errNoSuchRow
	}
	return recs[index], nil
}

// EditAt selects the record displayed at the index for edition.
func (p *Page[T]) EditAt(index int) error {
	rec, err := p.recordAt(index)
	if err != nil {
		return err
	}
	return p.form.SelectForEdit(rec)
}

// DeleteAt deletes the record displayed at the index.
func (p *Page[T]) DeleteAt(ctx context.Context, index int) error {
	rec, err := p.recordAt(index)
	if err != nil {
		return err
	}
	return p.Delete(ctx, rec.RecordID())
}
