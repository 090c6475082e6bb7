package core

import "github.com/shopspring/decimal"

// Summary holds the derived totals of a transaction sequence.
type Summary struct {
	Gains    decimal.Decimal
	Expenses decimal.Decimal // absolute value of negative amounts
	Net      decimal.Decimal
}

// SummaryDisplay is Summary formatted for the UI.
type SummaryDisplay struct {
	Gains    string `json:"gains"`
	Expenses string `json:"expenses"`
	Net      string `json:"net"`
}

// Summarize aggregates gains, expenses and net over ts. Zero amounts count
// toward neither total.
func Summarize(ts []Transaction) Summary {
	gains := decimal.Zero
	expenses := decimal.Zero
	for _, t := range ts {
		switch {
		case t.IsGain():
			gains = gains.Add(decimal.NewFromFloat(t.Amount))
		case t.IsExpense():
			expenses = expenses.Add(decimal.NewFromFloat(t.Amount).Abs())
		}
	}
	return Summary{
		Gains:    gains,
		Expenses: expenses,
		Net:      gains.Sub(expenses),
	}
}

// Display formats every total with FormatMoney.
func (s Summary) Display() SummaryDisplay {
	return SummaryDisplay{
		Gains:    FormatMoney(s.Gains),
		Expenses: FormatMoney(s.Expenses),
		Net:      FormatMoney(s.Net),
	}
}
