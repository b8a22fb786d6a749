package core

// BreakdownEntry is one per-category subtotal paired with its display color.
type BreakdownEntry struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Color  string  `json:"color"`
}

// Summary is the result of one aggregation pass.
type Summary struct {
	Total     float64          `json:"total"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// ChartData is the rendering-collaborator shape: parallel labels, amounts
// and colors in breakdown order.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

// Aggregate computes the total amount and per-category breakdown for
// transactions of the given type.
//
// Recurrence-rule records contribute their nominal amount once per record,
// exactly like plain instances; see the transaction service for where rules
// and occurrences are created. Transactions whose category name is not in
// the catalog count toward the total but are dropped from the breakdown.
func (r *Registry) Aggregate(txs []Transaction, t TransactionType) Summary {
	r.Reset()

	var total float64
	cats := r.CategoriesFor(t)
	for _, tx := range txs {
		if tx.Category.Type != t {
			continue
		}
		total += tx.Amount
		for i := range cats {
			if cats[i].Type == tx.Category.Name {
				cats[i].Amount += tx.Amount
				break
			}
		}
	}

	var breakdown []BreakdownEntry
	for _, c := range cats {
		if c.Amount > 0 {
			breakdown = append(breakdown, BreakdownEntry{
				Label:  c.Type,
				Amount: c.Amount,
				Color:  c.Color,
			})
		}
	}

	return Summary{Total: total, Breakdown: breakdown}
}

// Aggregate runs one pass against a fresh registry. Building the registry
// per call keeps concurrent passes from sharing accumulators.
func Aggregate(txs []Transaction, t TransactionType) Summary {
	return NewRegistry().Aggregate(txs, t)
}

// Chart converts the summary into the shape the chart renderer consumes.
func (s Summary) Chart() ChartData {
	labels := make([]string, len(s.Breakdown))
	data := make([]float64, len(s.Breakdown))
	colors := make([]string, len(s.Breakdown))
	for i, e := range s.Breakdown {
		labels[i] = e.Label
		data[i] = e.Amount
		colors[i] = e.Color
	}
	return ChartData{
		Labels:   labels,
		Datasets: []Dataset{{Data: data, BackgroundColor: colors}},
	}
}
