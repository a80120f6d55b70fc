package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// Format renders an amount in minor units, e.g. 2500 "usd" -> "$25.00".
func Format(cents int64, currency string) string {
	amount := decimal.New(cents, -2).StringFixed(2)

	code := strings.ToUpper(currency)
	if sym, ok := symbols[code]; ok {
		if strings.HasPrefix(amount, "-") {
			return "-" + sym + amount[1:]
		}
		return sym + amount
	}

	return amount + " " + code
}

// Sum multiplies unit prices by quantities in exact arithmetic.
func Sum(unitCents []int64, qty []int) int64 {
	total := decimal.Zero
	for i := range unitCents {
		total = total.Add(decimal.NewFromInt(unitCents[i]).Mul(decimal.NewFromInt(int64(qty[i]))))
	}
	return total.IntPart()
}
