// Package voice folds recognized-speech segments into transaction drafts.
//
// Segments come from the speech collaborator one utterance chunk at a time;
// the reducer keeps only the accumulated draft, never past segments.
package voice

import "strings"

// Entity types the reducer understands.
const (
	EntityAmount   = "amount"
	EntityCategory = "category"
	EntityDate     = "date"
)

// Intents the reducer understands.
const (
	IntentAddExpense        = "add_expense"
	IntentAddIncome         = "add_income"
	IntentCreateTransaction = "create_transaction"
	IntentCancelTransaction = "cancel_transaction"
)

type (
	// Segment is one incremental unit of recognized speech.
	Segment struct {
		Intent   Intent   `json:"intent"`
		Entities []Entity `json:"entities"`
		IsFinal  bool     `json:"isFinal"`
		Words    []Word   `json:"words"`
	}

	Intent struct {
		Intent string `json:"intent"`
	}

	Entity struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}

	Word struct {
		Value string `json:"value"`
	}
)

// Transcript joins the segment's words for echoing back to the user.
func (s Segment) Transcript() string {
	parts := make([]string, len(s.Words))
	for i, w := range s.Words {
		parts[i] = w.Value
	}
	return strings.Join(parts, " ")
}
