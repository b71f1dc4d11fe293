package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Writer issues single-product writes against the remote store.
type Writer interface {
	CreateProduct(ctx context.Context, p Payload) (Product, error)
	ReplaceProduct(ctx context.Context, id int, p Payload) (Product, error)
	DeleteProduct(ctx context.Context, id int) error
}

type OpKind string

const (
	OpCreate OpKind = "create"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateValidationFailed
	StateSubmitting
	StateSucceeded
	StateRemoteFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateValidationFailed:
		return "validation_failed"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateRemoteFailed:
		return "remote_failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateValidationFailed || s == StateRemoteFailed
}

// StateOf maps the error returned by a Mutator call to the terminal state
// the call ended in.
func StateOf(err error) State {
	switch {
	case err == nil:
		return StateSucceeded
	case errors.Is(err, ErrInvalidDraft):
		return StateValidationFailed
	default:
		return StateRemoteFailed
	}
}

type Transition struct {
	Op   OpKind
	ID   int
	From State
	To   State
	Err  error
}

type Observer func(Transition)

type MutatorOption func(*Mutator)

func WithMutatorLogger(log *zap.Logger) MutatorOption {
	return func(m *Mutator) { m.log = log }
}

func WithObserver(o Observer) MutatorOption {
	return func(m *Mutator) { m.observe = o }
}

// Mutator validates drafts and turns them into remote writes. Every call is
// independent: no queueing, batching or retry.
type Mutator struct {
	remote  Writer
	log     *zap.Logger
	observe Observer
}

func NewMutator(remote Writer, opts ...MutatorOption) *Mutator {
	m := &Mutator{remote: remote, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutator) Create(ctx context.Context, d Draft) (Product, error) {
	const op = "Mutator.Create"

	run := m.start(OpCreate, 0)
	payload, err := run.validate(0, d, false)
	if err != nil {
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := m.remote.CreateProduct(ctx, payload)
	if err = run.finish(err); err != nil {
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Update fully replaces product id. Existence is left to the remote store.
func (m *Mutator) Update(ctx context.Context, id int, d Draft) (Product, error) {
	const op = "Mutator.Update"

	run := m.start(OpUpdate, id)
	payload, err := run.validate(id, d, true)
	if err != nil {
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := m.remote.ReplaceProduct(ctx, id, payload)
	if err = run.finish(err); err != nil {
		return Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Delete is passed straight through; deleting twice is whatever the remote
// store says it is.
func (m *Mutator) Delete(ctx context.Context, id int) error {
	const op = "Mutator.Delete"

	run := m.start(OpDelete, id)
	run.to(StateValidating, nil)
	if err := checkID(id); err != nil {
		run.to(StateValidationFailed, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	run.to(StateSubmitting, nil)

	if err := run.finish(m.remote.DeleteProduct(ctx, id)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type run struct {
	m     *Mutator
	op    OpKind
	id    int
	state State
}

func (m *Mutator) start(op OpKind, id int) *run {
	return &run{m: m, op: op, id: id, state: StateIdle}
}

func (r *run) to(next State, err error) {
	t := Transition{Op: r.op, ID: r.id, From: r.state, To: next, Err: err}
	r.state = next

	if next.Terminal() {
		fields := []zap.Field{
			zap.String("op", string(r.op)),
			zap.Int("id", r.id),
			zap.Stringer("state", next),
		}
		if err != nil {
			r.m.log.Warn("product mutation failed", append(fields, zap.Error(err))...)
		} else {
			r.m.log.Info("product mutation done", fields...)
		}
	}
	if r.m.observe != nil {
		r.m.observe(t)
	}
}

func (r *run) validate(id int, d Draft, needID bool) (Payload, error) {
	r.to(StateValidating, nil)

	payload, err := d.Payload()
	if needID {
		if idErr := checkID(id); idErr != nil {
			err = mergeValidation(idErr, err)
		}
	}
	if err != nil {
		r.to(StateValidationFailed, err)
		return Payload{}, err
	}

	r.to(StateSubmitting, nil)
	return payload, nil
}

func (r *run) finish(err error) error {
	if err != nil {
		r.to(StateRemoteFailed, err)
		return err
	}
	r.to(StateSucceeded, nil)
	return nil
}

func checkID(id int) error {
	if id <= 0 {
		return &ValidationError{Fields: []FieldError{{Field: "id", Description: "id must be positive"}}}
	}
	return nil
}

func mergeValidation(idErr, draftErr error) error {
	out := idErr.(*ValidationError)
	var ve *ValidationError
	if errors.As(draftErr, &ve) {
		out.Fields = append(out.Fields, ve.Fields...)
	}
	return out
}
