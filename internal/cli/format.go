// Package cli provides the command-line interface for the trading journal.
package cli

import (
	"fmt"
	"math"
	"time"
)

// currencySymbols maps ISO currency codes to display symbols. Codes not
// listed here are printed as a prefix, e.g. "CHF 120.00".
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"AUD": "A$",
	"CAD": "C$",
}

// FormatMoney formats an amount in the given currency.
func FormatMoney(amount float64, currency string) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	symbol, ok := currencySymbols[currency]
	var result string
	if ok {
		result = fmt.Sprintf("%s%.2f", symbol, amount)
	} else if currency != "" {
		result = fmt.Sprintf("%s %.2f", currency, amount)
	} else {
		result = fmt.Sprintf("%.2f", amount)
	}

	if negative {
		result = "-" + result
	}
	return result
}

// FormatPrice formats a price with appropriate decimal places. Prices
// under 10 (forex pairs, small caps) get four decimals.
func FormatPrice(price float64) string {
	if math.Abs(price) >= 10 {
		return fmt.Sprintf("%.2f", price)
	}
	return fmt.Sprintf("%.4f", price)
}

// FormatQuantity formats a position size, dropping trailing zeros.
func FormatQuantity(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%g", qty)
}

// FormatProfitFactor renders a profit factor, showing the no-loss case
// as infinity.
func FormatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.2f", pf)
}

// FormatRiskReward formats a risk:reward ratio as "1:2.50".
func FormatRiskReward(rr float64) string {
	if rr == 0 {
		return "-"
	}
	return fmt.Sprintf("1:%.2f", rr)
}

// FormatDate formats a date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime formats a datetime.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

// FormatWinRate formats a 0..100 win rate percentage.
func FormatWinRate(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}

// TruncateString truncates a string to maxLen, appending "..." when cut.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
