package render

import (
	"encoding/json"

	"budget/internal/core"
)

const (
	GainColor    = "#4caf50"
	ExpenseColor = "#f44336"
	borderColor  = "#333"
)

// ChartConfig mirrors the Chart.js configuration object for a bar chart.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

type ChartOptions struct {
	Responsive bool         `json:"responsive"`
	Plugins    ChartPlugins `json:"plugins"`
	Scales     ChartScales  `json:"scales"`
}

type ChartPlugins struct {
	Legend Toggle `json:"legend"`
}

type ChartScales struct {
	Y Axis `json:"y"`
	X Axis `json:"x"`
}

type Axis struct {
	BeginAtZero bool      `json:"beginAtZero,omitempty"`
	Title       AxisTitle `json:"title"`
}

type AxisTitle struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Toggle struct {
	Display bool `json:"display"`
}

// Chart builds a bar chart with one bar per transaction, labeled
// "<name> (<date>)", green for gains and red otherwise.
func Chart(ts []core.Transaction) ChartConfig {
	labels := make([]string, 0, len(ts))
	amounts := make([]float64, 0, len(ts))
	colors := make([]string, 0, len(ts))
	for _, t := range ts {
		labels = append(labels, t.Label())
		amounts = append(amounts, t.Amount)
		if t.Amount > 0 {
			colors = append(colors, GainColor)
		} else {
			colors = append(colors, ExpenseColor)
		}
	}

	return ChartConfig{
		Type: "bar",
		Data: ChartData{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Transactions",
				Data:            amounts,
				BackgroundColor: colors,
				BorderColor:     borderColor,
				BorderWidth:     1,
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins:    ChartPlugins{Legend: Toggle{Display: false}},
			Scales: ChartScales{
				Y: Axis{BeginAtZero: true, Title: AxisTitle{Display: true, Text: "Amount ($)"}},
				X: Axis{Title: AxisTitle{Display: true, Text: "Transaction"}},
			},
		},
	}
}

// JSON encodes the config for embedding in a page.
func (c ChartConfig) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
