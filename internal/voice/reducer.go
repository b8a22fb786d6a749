package voice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"moneta/internal/core"
)

// Outcome reports what one reduction step did.
type Outcome int

const (
	// Pending means the utterance continues; the draft may have changed.
	Pending Outcome = iota
	// Emitted means the draft was finalized into a transaction and reset.
	Emitted
	// Cancelled means the draft was discarded and reset.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Emitted:
		return "emitted"
	case Cancelled:
		return "cancelled"
	default:
		return "pending"
	}
}

// Result carries the outcome of one step plus the emitted transaction
// when Outcome is Emitted.
type Result struct {
	Outcome     Outcome
	Transaction *core.Transaction
}

// Reducer folds segments into a draft and decides when to submit or cancel
// it. A reducer owns exactly one active utterance at a time; it is not safe
// for concurrent use.
type Reducer struct {
	draft core.Draft
	now   func() time.Time
}

func NewReducer(now func() time.Time) *Reducer {
	if now == nil {
		now = time.Now
	}
	return &Reducer{draft: core.NewDraft(now()), now: now}
}

// Draft returns a snapshot of the in-progress draft.
func (r *Reducer) Draft() core.Draft {
	return r.draft
}

// transition is one row of the intent table. Rows are matched in order;
// the first match wins.
type transition struct {
	intent    string
	finalOnly bool
	apply     func(r *Reducer, seg Segment) Result
}

var transitions = []transition{
	{intent: IntentAddExpense, apply: func(r *Reducer, _ Segment) Result {
		r.draft.Type = core.Expense
		return Result{Outcome: Pending}
	}},
	{intent: IntentAddIncome, apply: func(r *Reducer, _ Segment) Result {
		r.draft.Type = core.Income
		return Result{Outcome: Pending}
	}},
	{intent: IntentCreateTransaction, finalOnly: true, apply: func(r *Reducer, _ Segment) Result {
		return r.finalize()
	}},
	{intent: IntentCancelTransaction, finalOnly: true, apply: func(r *Reducer, _ Segment) Result {
		r.reset()
		return Result{Outcome: Cancelled}
	}},
}

// Reduce applies one segment to the draft.
//
// Intent rows run first in table order. A row that emits or cancels ends
// the step; anything else falls through to entity folding, where later
// entities override earlier ones targeting the same field. A final segment
// that leaves the draft complete auto-submits without an explicit create
// intent; this is also how a failed final create succeeds once the
// segment's own entities complete the draft.
func (r *Reducer) Reduce(seg Segment) Result {
	for _, t := range transitions {
		if t.intent != seg.Intent.Intent {
			continue
		}
		if t.finalOnly && !seg.IsFinal {
			break
		}
		if res := t.apply(r, seg); res.Outcome != Pending {
			return res
		}
		break
	}

	for _, e := range seg.Entities {
		r.foldEntity(e)
	}

	if seg.IsFinal && r.draft.Complete() {
		return r.finalize()
	}
	return Result{Outcome: Pending}
}

// foldEntity applies a single entity; later entities targeting the same
// field override earlier ones within a segment.
func (r *Reducer) foldEntity(e Entity) {
	switch e.Type {
	case EntityAmount:
		r.draft.Amount = e.Value
	case EntityCategory:
		name := core.TitleCase(e.Value)
		if ref, ok := core.LookupCategory(name); ok {
			r.draft.Category = name
			r.draft.Type = ref.Type
		}
		// Unknown names are a lookup miss: the single field update is
		// dropped, the rest of the segment still applies.
	case EntityDate:
		r.draft.Date = e.Value
	}
}

// finalize attempts to turn the draft into a transaction. Validation
// failure is a no-op: the draft survives for correction and no error is
// surfaced in-band.
func (r *Reducer) finalize() Result {
	amount, err := core.ParseAmount(r.draft.Amount)
	if err != nil {
		return Result{Outcome: Pending}
	}
	if r.draft.Category == "" || !strings.Contains(r.draft.Date, "-") {
		return Result{Outcome: Pending}
	}

	tx := core.Transaction{
		ID:       uuid.NewString(),
		Category: core.CategoryRef{Type: r.draft.Type, Name: r.draft.Category},
		Date:     r.draft.Date,
		Amount:   amount,
	}
	r.reset()
	return Result{Outcome: Emitted, Transaction: &tx}
}

func (r *Reducer) reset() {
	r.draft = core.NewDraft(r.now())
}
