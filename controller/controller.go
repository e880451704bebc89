// Package controller - Reconciles recognised plates against the vehicle registry.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nvr-ai/go-anpr/registry"
)

var (
	// ErrEmptyPlate is returned when the recognised text normalises to nothing.
	ErrEmptyPlate = errors.New("controller: empty plate text")
	// ErrEmptyOwner is returned when a registration is confirmed without an owner name.
	ErrEmptyOwner = errors.New("controller: owner name is required")
)

// State is a step of the reconciliation state machine.
type State int

const (
	Start State = iota
	Lookup
	Found
	Miss
	DecisionPending
	Registered
	Skipped
)

func (s State) String() string {
	switch s {
	case Start:
		return "start"
	case Lookup:
		return "lookup"
	case Found:
		return "found"
	case Miss:
		return "miss"
	case DecisionPending:
		return "decision_pending"
	case Registered:
		return "registered"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether the workflow ends in s.
func (s State) Terminal() bool {
	return s == Found || s == Registered || s == Skipped
}

// Decision is the operator's answer to a registration prompt.
type Decision struct {
	Register  bool
	OwnerName string
	Phone     string
}

// Prompter asks the operator whether, and how, to register an unknown plate.
type Prompter interface {
	Decide(ctx context.Context, plate string) (Decision, error)
}

// Outcome is the result of reconciling one plate.
type Outcome struct {
	Plate string
	// Path lists every state visited, Start first.
	Path []State
	// Record is set on Found and Registered.
	Record *registry.VehicleRecord
}

// State returns the last state reached.
func (o Outcome) State() State {
	if len(o.Path) == 0 {
		return Start
	}
	return o.Path[len(o.Path)-1]
}

// Message returns the operator-facing description of the terminal state.
func (o Outcome) Message() string {
	switch o.State() {
	case Found:
		return fmt.Sprintf("Vehicle found: plate %s, owner %s, phone %s", o.Record.Plate, o.Record.OwnerName, o.Record.Phone)
	case Registered:
		return fmt.Sprintf("Vehicle registered successfully: %s (owner %s)", o.Record.Plate, o.Record.OwnerName)
	case Skipped:
		return fmt.Sprintf("Vehicle %s was not registered", o.Plate)
	default:
		return fmt.Sprintf("Reconciliation of %s stopped at %s", o.Plate, o.State())
	}
}

// Reconciler drives the lookup-or-register workflow.
type Reconciler struct {
	Registry registry.Registry
	Prompter Prompter
}

// NewReconciler creates a reconciler over a registry and an operator prompt.
func NewReconciler(reg registry.Registry, prompter Prompter) *Reconciler {
	return &Reconciler{Registry: reg, Prompter: prompter}
}

// Reconcile looks up the recognised plate and, on a miss, asks the operator
// whether to register it.
//
// A registration that loses a race against another registrar of the same
// plate is resolved by a single re-lookup and ends in Found. Registry and
// prompt failures end the workflow with an error and the path reached so far.
//
// Arguments:
//   - ctx: Context for registry and prompt calls.
//   - text: The recognised plate text.
//
// Returns:
//   - Outcome: The visited states and the resulting record.
//   - error: ErrEmptyPlate, ErrEmptyOwner, or a registry or prompt failure.
func (r *Reconciler) Reconcile(ctx context.Context, text string) (Outcome, error) {
	out := Outcome{Plate: registry.NormalizePlate(text), Path: []State{Start}}
	if out.Plate == "" {
		return out, ErrEmptyPlate
	}

	rec, ok, err := r.lookup(ctx, &out)
	if err != nil {
		return out, err
	}
	if ok {
		return r.found(out, rec), nil
	}

	out.Path = append(out.Path, Miss, DecisionPending)
	decision, err := r.Prompter.Decide(ctx, out.Plate)
	if err != nil {
		return out, fmt.Errorf("registration prompt: %w", err)
	}
	if !decision.Register {
		out.Path = append(out.Path, Skipped)
		return out, nil
	}

	owner := strings.TrimSpace(decision.OwnerName)
	if owner == "" {
		return out, ErrEmptyOwner
	}

	created, err := r.Registry.Register(ctx, out.Plate, owner, strings.TrimSpace(decision.Phone))
	switch {
	case err == nil:
		out.Path = append(out.Path, Registered)
		out.Record = &created
		return out, nil
	case errors.Is(err, registry.ErrDuplicateKey):
		rec, ok, err := r.lookup(ctx, &out)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, fmt.Errorf("plate %s reported duplicate but not found: %w", out.Plate, registry.ErrNotFound)
		}
		return r.found(out, rec), nil
	default:
		return out, fmt.Errorf("register %s: %w", out.Plate, err)
	}
}

func (r *Reconciler) lookup(ctx context.Context, out *Outcome) (registry.VehicleRecord, bool, error) {
	out.Path = append(out.Path, Lookup)
	rec, err := r.Registry.Lookup(ctx, out.Plate)
	switch {
	case err == nil:
		return rec, true, nil
	case errors.Is(err, registry.ErrNotFound):
		return registry.VehicleRecord{}, false, nil
	default:
		return registry.VehicleRecord{}, false, fmt.Errorf("lookup %s: %w", out.Plate, err)
	}
}

func (r *Reconciler) found(out Outcome, rec registry.VehicleRecord) Outcome {
	out.Path = append(out.Path, Found)
	out.Record = &rec
	return out
}
