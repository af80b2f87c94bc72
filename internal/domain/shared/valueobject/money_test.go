package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), THB)
		require.NoError(t, err)
		assert.Equal(t, THB, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(100.50)))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromFloat(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyTHBFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyTHBFromString("5500.00")
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(5500)))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyTHBFromString("abc")
		assert.Error(t, err)
	})
}

func TestMoney_Add(t *testing.T) {
	a := NewMoneyTHB(decimal.RequireFromString("0.10"))
	b := NewMoneyTHB(decimal.RequireFromString("0.20"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.RequireFromString("0.30")))

	_, err = a.Add(Zero(USD))
	assert.Error(t, err)
}

func TestSum(t *testing.T) {
	t.Run("rent plus utilities is exact", func(t *testing.T) {
		total, err := Sum(
			NewMoneyTHB(decimal.NewFromInt(5500)),
			NewMoneyTHB(decimal.NewFromInt(180)),
			NewMoneyTHB(decimal.NewFromInt(620)),
			ZeroTHB(),
		)
		require.NoError(t, err)
		assert.True(t, total.Amount().Equal(decimal.NewFromInt(6300)))
	})

	t.Run("empty is zero", func(t *testing.T) {
		total, err := Sum()
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("mixed currencies fail", func(t *testing.T) {
		_, err := Sum(ZeroTHB(), Zero(USD))
		assert.Error(t, err)
	})
}

func TestMoney_RoundMinor(t *testing.T) {
	m := NewMoneyTHB(decimal.RequireFromString("10.125")).RoundMinor()
	assert.Equal(t, "10.13", m.Amount().StringFixed(2))
}

func TestMoney_Display(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"thousands", "6300", "฿6,300.00"},
		{"small", "180.5", "฿180.50"},
		{"millions", "1234567.891", "฿1,234,567.89"},
		{"negative", "-620", "-฿620.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewMoneyTHB(decimal.RequireFromString(tt.amount)).Display())
		})
	}
}

func TestMoney_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(NewMoneyTHB(decimal.NewFromInt(6300)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"6300.00","currency":"THB"}`, string(data))
}
