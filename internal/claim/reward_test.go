package claim

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRewardFixed(t *testing.T) {
	r := Reward{Fixed: decimal.NewFromInt(100)}
	if got := r.Amount(decimal.Zero); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("fixed reward = %s, want 100", got)
	}
}

func TestRewardPercentageTruncates(t *testing.T) {
	cases := []struct {
		rate   string
		amount string
		want   string
	}{
		{"0.03", "1000", "30"},
		{"0.03", "1001", "30"}, // 30.03 截断
		{"0.03", "33", "0"},    // 0.99 截断到 0
		{"0.03", "34", "1"},    // 1.02 截断到 1
		{"0.01", "199", "1"},
		{"0.01", "99", "0"},
		{"0.01", "12345678901234567890", "123456789012345678"},
	}
	for _, tc := range cases {
		r := Reward{Rate: decimal.RequireFromString(tc.rate)}
		got := r.Amount(decimal.RequireFromString(tc.amount))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("reward(%s * %s) = %s, want %s", tc.amount, tc.rate, got, tc.want)
		}
	}
}

func TestRewardDeterministic(t *testing.T) {
	r := Reward{Rate: decimal.RequireFromString("0.03")}
	amount := decimal.RequireFromString("987654321")
	first := r.Amount(amount)
	for i := 0; i < 100; i++ {
		if got := r.Amount(amount); !got.Equal(first) {
			t.Fatalf("reward not deterministic: %s vs %s", got, first)
		}
	}
}
