// Package render projects a transaction sequence into what the UI shows:
// list rows and a bar-chart configuration. Every function is pure and
// rebuilds its output from scratch.
package render

import (
	"net/url"

	"budget/internal/core"
)

// Row is one displayed transaction with its actions.
type Row struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Gain      bool   `json:"gain"`
	EditURL   string `json:"edit_url"`
	DeleteURL string `json:"delete_url"`
}

// List returns one row per transaction in store order.
func List(ts []core.Transaction) []Row {
	rows := make([]Row, 0, len(ts))
	for _, t := range ts {
		base := "/transactions/" + url.PathEscape(t.ID)
		rows = append(rows, Row{
			ID:        t.ID,
			Name:      t.Name,
			Amount:    core.FormatAmount(t.Amount),
			Date:      t.Date,
			Gain:      t.IsGain(),
			EditURL:   base + "/edit",
			DeleteURL: base + "/delete",
		})
	}
	return rows
}
