// Package csvio converts trades to and from the journal's CSV file format.
//
// The format is UTF-8 comma-delimited text with a required header row.
// Column order is flexible on import: headers are matched case-insensitively
// by substring against canonical names. Import produces an in-memory preview
// list; persisting it is a separate confirm step.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tradejournal/internal/errors"
	"tradejournal/internal/models"
)

// ExportColumns is the fixed export column order.
var ExportColumns = []string{
	"Symbol", "Trade Type", "Entry Price", "Exit Price", "Quantity",
	"Entry Date", "Exit Date", "Stop Loss", "Take Profit", "PnL",
	"Status", "Commission", "Swap", "Risk Amount", "Risk Reward Ratio",
	"Notes",
}

// DateLayout is the date-only serialization format for trade dates.
const DateLayout = "2006-01-02"

// field keys used internally for header mapping.
const (
	colSymbol     = "symbol"
	colTradeType  = "trade type"
	colEntryPrice = "entry price"
	colExitPrice  = "exit price"
	colQuantity   = "quantity"
	colEntryDate  = "entry date"
	colExitDate   = "exit date"
	colStopLoss   = "stop loss"
	colTakeProfit = "take profit"
	colPnL        = "pnl"
	colStatus     = "status"
	colCommission = "commission"
	colSwap       = "swap"
	colRiskAmount = "risk amount"
	colRiskReward = "risk reward"
	colNotes      = "notes"
)

// headerCandidates maps canonical column keys to the substrings that
// identify them. Checked in order: more specific names first, so
// "exit price" never falls through to "entry price" or bare "price".
var headerCandidates = []struct {
	key     string
	matches []string
}{
	{colEntryPrice, []string{"entry price"}},
	{colExitPrice, []string{"exit price"}},
	{colEntryDate, []string{"entry date", "open date", "open time"}},
	{colExitDate, []string{"exit date", "close date", "close time"}},
	{colStopLoss, []string{"stop loss", "stop-loss", "sl price"}},
	{colTakeProfit, []string{"take profit", "take-profit", "tp price"}},
	{colRiskReward, []string{"risk reward", "risk/reward", "risk:reward", "rr ratio"}},
	{colRiskAmount, []string{"risk amount", "risk amt"}},
	{colTradeType, []string{"trade type", "type", "side", "direction"}},
	{colCommission, []string{"commission", "fee"}},
	{colSwap, []string{"swap"}},
	{colStatus, []string{"status"}},
	{colQuantity, []string{"quantity", "qty", "size", "lots", "volume"}},
	{colPnL, []string{"pnl", "p&l", "p/l", "profit"}},
	{colSymbol, []string{"symbol", "instrument", "ticker", "pair"}},
	{colNotes, []string{"notes", "comment"}},
}

// requiredColumns must all be present (after fuzzy matching) for an import
// to proceed. Absence of any is a hard parse failure naming the missing ones.
var requiredColumns = []struct {
	key  string
	name string
}{
	{colSymbol, "Symbol"},
	{colTradeType, "Trade Type"},
	{colEntryPrice, "Entry Price"},
	{colQuantity, "Quantity"},
	{colEntryDate, "Entry Date"},
}

// Export serializes trades in the fixed column order. Nullable numerics are
// written as empty strings, except commission/swap which default to 0.
// Quoting and quote-doubling follow RFC 4180 in both directions.
func Export(trades []models.Trade) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(ExportColumns); err != nil {
		return nil, errors.Wrap(err, "writing CSV header")
	}

	for _, t := range trades {
		record := []string{
			t.Symbol,
			string(t.Type),
			formatFloat(t.EntryPrice),
			formatFloatPtr(t.ExitPrice),
			formatFloat(t.Quantity),
			t.EntryDate.Format(DateLayout),
			formatDatePtr(t.ExitDate),
			formatFloatPtr(t.StopLoss),
			formatFloatPtr(t.TakeProfit),
			formatFloatPtr(t.PnL),
			string(t.Status),
			formatFloat(t.Commission),
			formatFloat(t.Swap),
			formatFloatPtr(t.RiskAmount),
			formatFloatPtr(t.RiskReward),
			t.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, errors.Wrap(err, "writing CSV row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.Wrap(err, "flushing CSV")
	}
	return buf.Bytes(), nil
}

// Preview is the result of parsing a CSV file: pending trade records not yet
// persisted, plus per-row coercion warnings surfaced before commit.
type Preview struct {
	Trades   []models.Trade
	Warnings []string
}

// Import parses CSV text into a preview of trade records.
//
// Required-field absence in any row aborts the whole import with an error
// naming the offending row (fail-fast, no partial skip). Permissive numeric
// coercions (zero or negative price/quantity) are accepted but tagged in
// the warnings list.
func Import(data []byte) (*Preview, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading CSV")
	}
	if len(records) == 0 {
		return nil, errors.NewMissingColumnsError(requiredNames())
	}

	columns, missing := matchHeader(records[0])
	if len(missing) > 0 {
		return nil, errors.NewMissingColumnsError(missing)
	}

	preview := &Preview{}
	for i, record := range records[1:] {
		line := i + 2 // 1-based, after the header
		trade, warnings, err := parseRow(record, columns, line)
		if err != nil {
			return nil, err
		}
		preview.Trades = append(preview.Trades, trade)
		preview.Warnings = append(preview.Warnings, warnings...)
	}

	return preview, nil
}

// matchHeader maps column keys to field indexes using case-insensitive
// substring matching, and reports required columns left unmatched.
func matchHeader(header []string) (map[string]int, []string) {
	columns := make(map[string]int)
	for idx, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, cand := range headerCandidates {
			if _, taken := columns[cand.key]; taken {
				continue
			}
			for _, m := range cand.matches {
				if strings.Contains(name, m) {
					columns[cand.key] = idx
					break
				}
			}
			if _, ok := columns[cand.key]; ok {
				break
			}
		}
	}

	var missing []string
	for _, req := range requiredColumns {
		if _, ok := columns[req.key]; !ok {
			missing = append(missing, req.name)
		}
	}
	return columns, missing
}

func requiredNames() []string {
	names := make([]string, len(requiredColumns))
	for i, req := range requiredColumns {
		names[i] = req.name
	}
	return names
}

func parseRow(record []string, columns map[string]int, line int) (models.Trade, []string, error) {
	rowText := strings.Join(record, ",")
	field := func(key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var trade models.Trade
	var warnings []string

	trade.Symbol = field(colSymbol)
	if trade.Symbol == "" {
		return trade, nil, errors.NewRowError(line, rowText, "missing symbol")
	}

	typeToken := field(colTradeType)
	if typeToken == "" {
		return trade, nil, errors.NewRowError(line, rowText, "missing trade type")
	}
	trade.Type = models.NormalizeTradeType(typeToken)

	entryPrice, err := parseFloat(field(colEntryPrice))
	if err != nil {
		return trade, nil, errors.NewRowError(line, rowText, "invalid entry price")
	}
	trade.EntryPrice = entryPrice
	if entryPrice <= 0 {
		warnings = append(warnings, fmt.Sprintf("line %d: entry price %g is not positive", line, entryPrice))
	}

	quantity, err := parseFloat(field(colQuantity))
	if err != nil {
		return trade, nil, errors.NewRowError(line, rowText, "invalid quantity")
	}
	trade.Quantity = quantity
	if quantity <= 0 {
		warnings = append(warnings, fmt.Sprintf("line %d: quantity %g is not positive", line, quantity))
	}

	entryDate, err := parseDate(field(colEntryDate))
	if err != nil {
		return trade, nil, errors.NewRowError(line, rowText, "invalid entry date")
	}
	trade.EntryDate = entryDate

	// Optional fields: blank or unparseable values stay nil.
	trade.ExitPrice = parseFloatPtr(field(colExitPrice))
	trade.StopLoss = parseFloatPtr(field(colStopLoss))
	trade.TakeProfit = parseFloatPtr(field(colTakeProfit))
	trade.RiskAmount = parseFloatPtr(field(colRiskAmount))
	trade.RiskReward = parseFloatPtr(field(colRiskReward))
	trade.PnL = parseFloatPtr(field(colPnL))
	trade.Notes = field(colNotes)

	if d, err := parseDate(field(colExitDate)); err == nil && field(colExitDate) != "" {
		trade.ExitDate = &d
	}
	if v := parseFloatPtr(field(colCommission)); v != nil {
		trade.Commission = *v
	}
	if v := parseFloatPtr(field(colSwap)); v != nil {
		trade.Swap = *v
	}

	// An explicit Status column wins over inference; otherwise presence of
	// any exit-related field means closed.
	if status := strings.ToLower(field(colStatus)); status != "" {
		trade.Status = models.TradeStatus(status)
	} else if trade.ExitPrice != nil || trade.ExitDate != nil || trade.PnL != nil {
		trade.Status = models.StatusClosed
	} else {
		trade.Status = models.StatusOpen
	}

	return trade, warnings, nil
}

// dateLayouts are accepted on import, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	DateLayout,
	"02/01/2006",
	"01/02/2006",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", s)
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := parseFloat(s)
	if err != nil {
		return nil
	}
	return &v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}
