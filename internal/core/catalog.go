package core

import "strings"

// Category is one catalog entry with its mutable running total. The Amount
// accumulator is only meaningful between a Reset and the end of the
// aggregation pass that follows it.
type Category struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Color  string  `json:"color"`
}

type categoryDef struct {
	name  string
	color string
}

var incomeDefs = []categoryDef{
	{"Business", "#123123"},
	{"Investments", "#2a9d8f"},
	{"Extra income", "#264653"},
	{"Deposits", "#1b4332"},
	{"Lottery", "#40916c"},
	{"Gifts", "#52b788"},
	{"Salary", "#74c69d"},
	{"Savings", "#95d5b2"},
	{"Rental income", "#b7e4c7"},
}

var expenseDefs = []categoryDef{
	{"Bills", "#641220"},
	{"Car", "#6e1423"},
	{"Clothes", "#85182a"},
	{"Travel", "#a11d33"},
	{"Food", "#a71e34"},
	{"Shopping", "#b21e35"},
	{"House", "#bd1f36"},
	{"Entertainment", "#c71f37"},
	{"Phone", "#da1e37"},
	{"Pets", "#e01e37"},
	{"Other", "#f21e37"},
}

// Registry holds the income and expense category lists with their
// accumulators. Build one per aggregation pass via NewRegistry; sharing a
// registry across concurrent passes would corrupt totals.
type Registry struct {
	income  []Category
	expense []Category
}

func NewRegistry() *Registry {
	return &Registry{
		income:  fromDefs(incomeDefs),
		expense: fromDefs(expenseDefs),
	}
}

func fromDefs(defs []categoryDef) []Category {
	out := make([]Category, len(defs))
	for i, d := range defs {
		out[i] = Category{Type: d.name, Color: d.color}
	}
	return out
}

// CategoriesFor returns the category list for the given transaction type,
// in catalog order. The returned slice shares backing storage with the
// registry: accumulator writes through it are visible until the next Reset.
func (r *Registry) CategoriesFor(t TransactionType) []Category {
	if t == Income {
		return r.income
	}
	return r.expense
}

// Reset zeroes every accumulator across both lists. Callers must reset
// before starting an aggregation pass.
func (r *Registry) Reset() {
	for i := range r.income {
		r.income[i].Amount = 0
	}
	for i := range r.expense {
		r.expense[i].Amount = 0
	}
}

// TitleCase normalizes a spoken category value: first rune uppercased,
// remainder lowercased.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}

// LookupCategory tests a normalized name against the income list first,
// then the expense list. The first list containing it wins.
func LookupCategory(name string) (CategoryRef, bool) {
	for _, d := range incomeDefs {
		if d.name == name {
			return CategoryRef{Type: Income, Name: name}, true
		}
	}
	for _, d := range expenseDefs {
		if d.name == name {
			return CategoryRef{Type: Expense, Name: name}, true
		}
	}
	return CategoryRef{}, false
}
