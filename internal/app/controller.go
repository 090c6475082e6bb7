// Package app owns the transaction store and mediates every read and write
// to it. Each operation runs under one lock: validate, mutate, persist,
// then re-render, so callers always observe a consistent view.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/persist"
	"budget/internal/render"
	"budget/internal/store"
)

// Persister loads and saves the whole transaction sequence.
type Persister interface {
	Load(ctx context.Context) ([]core.Transaction, error)
	Save(ctx context.Context, ts []core.Transaction) error
	Quarantine(ctx context.Context, raw string) (string, error)
}

// Publisher announces persisted changes. Failures never fail the mutation.
type Publisher interface {
	PublishLedgerChanged(ctx context.Context, op, id string, count int) error
}

// View is everything the UI shows for the current store contents.
type View struct {
	Rows    []render.Row
	Summary core.SummaryDisplay
	Chart   render.ChartConfig
	Count   int
}

// Result is the outcome of a form submission.
type Result struct {
	State       FormState
	Form        FormInput
	Transaction core.Transaction
	View        View
}

type Controller struct {
	mu        sync.Mutex
	store     *store.Store
	persister Persister
	publisher Publisher
	logger    *log.Logger
	recovered string
}

type Option func(*Controller)

func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) { c.logger = l.WithComponent(log.ComponentController) }
}

func New(p Persister, opts ...Option) *Controller {
	c := &Controller{
		store:     store.New(nil),
		persister: p,
		logger:    log.New(log.DefaultConfig()).WithComponent(log.ComponentController),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the store with persisted state. Corrupt content is copied
// aside and the session starts empty; any other read failure is returned.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, err := c.persister.Load(ctx)
	var ce *persist.CorruptError
	switch {
	case errors.As(err, &ce):
		key, qerr := c.persister.Quarantine(ctx, ce.Raw)
		if qerr != nil {
			return fmt.Errorf("quarantine corrupt state: %w", qerr)
		}
		c.recovered = key
		c.logger.ErrorContext(ctx, "Persisted transactions are corrupt, starting empty",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeCorruptState,
			log.FieldStorageKey, key)
		ts = nil
	case err != nil:
		return fmt.Errorf("load transactions: %w", err)
	}

	c.store.Replace(ts)
	c.logger.InfoContext(ctx, "Transactions loaded", log.FieldCount, len(ts))
	return nil
}

// Recovered returns the key holding quarantined corrupt state, if any.
func (c *Controller) Recovered() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recovered
}

// Quarantined lists every key holding a copy of corrupt state, oldest
// first, when the persister can enumerate them.
func (c *Controller) Quarantined(ctx context.Context) ([]string, error) {
	l, ok := c.persister.(interface {
		Quarantined(ctx context.Context) ([]string, error)
	})
	if !ok {
		return nil, persist.ErrListUnsupported
	}
	return l.Quarantined(ctx)
}

// Transactions returns a copy of the store in display order.
func (c *Controller) Transactions() []core.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.All()
}

// Summary returns the totals of the current store.
func (c *Controller) Summary() core.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.Summarize(c.store.All())
}

// View renders the current store.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view()
}

func (c *Controller) view() View {
	ts := c.store.All()
	return View{
		Rows:    render.List(ts),
		Summary: core.Summarize(ts).Display(),
		Chart:   render.Chart(ts),
		Count:   len(ts),
	}
}

// change is a persisted mutation waiting to be announced.
type change struct {
	op    string
	id    string
	count int
}

// Submit validates the form and either appends a new transaction or, when
// the form carries an EditingID, updates that record in place. On a
// validation failure nothing is mutated and the form is returned as typed.
// The change event is published after the lock is released.
func (c *Controller) Submit(ctx context.Context, in FormInput) (Result, error) {
	res, ev, err := c.submit(ctx, in)
	if ev != nil {
		c.publish(ctx, *ev)
	}
	return res, err
}

func (c *Controller) submit(ctx context.Context, in FormInput) (Result, *change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transition(ctx, StateIdle, StateSubmitting)
	t, err := in.Parse()
	if err != nil {
		c.transition(ctx, StateSubmitting, StateErrorShown)
		c.logger.WarnContext(ctx, "Transaction rejected", log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypeValidation).
			WithOperation(log.OpValidate).
			ToSlice()...)
		return Result{State: StateErrorShown, Form: in, View: c.view()}, nil, err
	}

	op := log.OpCreate
	if in.Editing() {
		op = log.OpUpdate
		t, err = c.update(ctx, in.EditingID, t)
	} else {
		t, err = c.add(ctx, t)
	}
	if err != nil {
		c.transition(ctx, StateSubmitting, StateErrorShown)
		return Result{State: StateErrorShown, Form: in, View: c.view()}, nil, err
	}

	c.transition(ctx, StateSubmitting, StateMutated)
	c.logger.InfoContext(ctx, "Transaction saved", log.NewFields().
		WithOperation(op).
		WithTransaction(t.ID, t.Name, t.Amount, t.Date).
		WithCount(c.store.Len()).
		ToSlice()...)
	c.transition(ctx, StateMutated, StateIdle)

	ev := &change{op: op, id: t.ID, count: c.store.Len()}
	return Result{State: StateMutated, Transaction: t, View: c.view()}, ev, nil
}

func (c *Controller) add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.ID = core.NewID()
	c.store.Add(t)
	if err := c.save(ctx); err != nil {
		_, _ = c.store.RemoveAt(c.store.Len() - 1)
		return core.Transaction{}, err
	}
	return t, nil
}

func (c *Controller) update(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	prev, err := c.store.Update(id, t)
	if err != nil {
		c.logger.WarnContext(ctx, "Edit of unknown transaction rejected",
			log.FieldTxID, id, log.FieldErrorType, log.ErrorTypeNotFound)
		return core.Transaction{}, err
	}
	if err := c.save(ctx); err != nil {
		_, _ = c.store.Update(id, prev)
		return core.Transaction{}, err
	}
	t.ID = id
	return t, nil
}

// Edit returns the form pre-filled from the transaction with the given id.
// The record stays in the store until the edited form is submitted.
func (c *Controller) Edit(id string) (FormInput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.store.Get(id)
	if err != nil {
		return FormInput{}, err
	}
	return Prefill(t), nil
}

// EditAt is Edit addressed by current position.
func (c *Controller) EditAt(i int) (FormInput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.store.At(i)
	if err != nil {
		return FormInput{}, err
	}
	return Prefill(t), nil
}

// Delete removes the transaction with the given id. An unknown id, for
// example from a stale page or a double click, is rejected without touching
// the store.
func (c *Controller) Delete(ctx context.Context, id string) (View, error) {
	v, ev, err := c.remove(ctx, func() (core.Transaction, int, error) {
		t, pos, err := c.store.Remove(id)
		if err != nil {
			c.logger.WarnContext(ctx, "Delete of unknown transaction rejected",
				log.FieldTxID, id, log.FieldErrorType, log.ErrorTypeNotFound)
		}
		return t, pos, err
	})
	if ev != nil {
		c.publish(ctx, *ev)
	}
	return v, err
}

// DeleteAt removes the transaction at position i.
func (c *Controller) DeleteAt(ctx context.Context, i int) (View, error) {
	v, ev, err := c.remove(ctx, func() (core.Transaction, int, error) {
		t, err := c.store.RemoveAt(i)
		if err != nil {
			c.logger.WarnContext(ctx, "Delete at invalid index rejected",
				log.FieldIndex, i, log.FieldErrorType, log.ErrorTypeNotFound)
		}
		return t, i, err
	})
	if ev != nil {
		c.publish(ctx, *ev)
	}
	return v, err
}

// remove runs take under the lock, persists the result and restores the
// removed record if the save fails.
func (c *Controller) remove(ctx context.Context, take func() (core.Transaction, int, error)) (View, *change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, pos, err := take()
	if err != nil {
		return c.view(), nil, err
	}
	if err := c.save(ctx); err != nil {
		_ = c.store.Insert(pos, t)
		return c.view(), nil, err
	}
	c.logger.InfoContext(ctx, "Transaction deleted", log.NewFields().
		WithOperation(log.OpDelete).
		WithTransaction(t.ID, t.Name, t.Amount, t.Date).
		WithCount(c.store.Len()).
		ToSlice()...)
	return c.view(), &change{op: log.OpDelete, id: t.ID, count: c.store.Len()}, nil
}

func (c *Controller) save(ctx context.Context) error {
	if err := c.persister.Save(ctx, c.store.All()); err != nil {
		c.logger.ErrorContext(ctx, "Failed to persist transactions", log.NewFields().
			WithError(err).
			WithErrorType(log.ErrorTypeStorage).
			WithOperation(log.OpSave).
			ToSlice()...)
		return fmt.Errorf("persist transactions: %w", err)
	}
	return nil
}

// publish runs after c.mu is released.
func (c *Controller) publish(ctx context.Context, ev change) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishLedgerChanged(ctx, ev.op, ev.id, ev.count); err != nil {
		c.logger.WarnContext(ctx, "Failed to publish change event",
			log.FieldError, err, log.FieldOperation, ev.op, log.FieldTxID, ev.id)
	}
}

func (c *Controller) transition(ctx context.Context, from, to FormState) {
	c.logger.DebugContext(ctx, "Form state", "from", from.String(), "to", to.String())
}
