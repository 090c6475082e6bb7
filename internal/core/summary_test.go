package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeScenarios(t *testing.T) {
	salary := Transaction{Name: "Salary", Amount: 1500, Date: "2024-01-01"}
	rent := Transaction{Name: "Rent", Amount: -800, Date: "2024-01-02"}

	tests := []struct {
		name string
		txs  []Transaction
		want SummaryDisplay
	}{
		{"empty", nil, SummaryDisplay{"$0.00", "$0.00", "$0.00"}},
		{"salary only", []Transaction{salary}, SummaryDisplay{"$1500.00", "$0.00", "$1500.00"}},
		{"salary and rent", []Transaction{salary, rent}, SummaryDisplay{"$1500.00", "$800.00", "$700.00"}},
		{"rent only", []Transaction{rent}, SummaryDisplay{"$0.00", "$800.00", "-$800.00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.txs).Display())
		})
	}
}

func TestSummarizeZeroCountsNowhere(t *testing.T) {
	s := Summarize([]Transaction{{Name: "z", Amount: 0, Date: "2024-01-01"}})
	assert.True(t, s.Gains.IsZero())
	assert.True(t, s.Expenses.IsZero())
	assert.True(t, s.Net.IsZero())
}

func TestSummarizeSumsFloatsExactly(t *testing.T) {
	s := Summarize([]Transaction{
		{Name: "a", Amount: 0.1, Date: "d"},
		{Name: "b", Amount: 0.2, Date: "d"},
		{Name: "c", Amount: -0.3, Date: "d"},
	})
	assert.Equal(t, "0.3", s.Gains.String())
	assert.Equal(t, "0.3", s.Expenses.String())
	assert.True(t, s.Net.IsZero())
}
