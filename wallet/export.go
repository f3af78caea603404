package wallet

import (
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/getAlby/tapwallet/common"
	"github.com/getAlby/tapwallet/models"
)

// ExportRow is one line of a transaction CSV export.
type ExportRow struct {
	Date   string
	Type   string
	Amount string
	Asset  string
	Fee    string
	Status string
	Memo   string
}

var exportHeader = []string{"date", "type", "amount", "asset", "fee", "status", "memo"}

func (r ExportRow) fields() []string {
	return []string{r.Date, r.Type, r.Amount, r.Asset, r.Fee, r.Status, r.Memo}
}

// ExportCSV renders rows as CSV: a header line of the field names followed
// by one line per row. Fields containing a comma, quote or newline are
// quoted with internal quotes doubled.
func ExportCSV(rows []ExportRow) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(exportHeader); err != nil {
		return "", err
	}
	for _, row := range rows {
		if err := w.Write(row.fields()); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ExportTransactions converts the current filtered transaction view into
// CSV, resolving asset ids to display names.
func (svc *Service) ExportTransactions(filter models.TransactionFilter) (string, error) {
	txs := svc.Store.FilteredTransactions(filter)
	rows := make([]ExportRow, len(txs))
	for i, tx := range txs {
		kind := "RECEIVED"
		if tx.Direction == common.TransactionDirectionOutgoing {
			kind = "SENT"
		}
		rows[i] = ExportRow{
			Date:   FormatDate(tx.CreatedAt),
			Type:   kind,
			Amount: strconv.FormatInt(tx.AssetAmount, 10),
			Asset:  svc.assetName(tx.AssetID),
			Fee:    strconv.FormatInt(tx.FeeSats, 10),
			Status: tx.Status,
			Memo:   tx.Description,
		}
	}
	return ExportCSV(rows)
}

// FormatDate renders the calendar day of a timestamp for exports.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateTime renders a timestamp for display.
func FormatDateTime(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}
