package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

const (
	sheetName   = "Orders"
	dataRange   = sheetName + "!A2:J"
	headerRange = sheetName + "!A1:J1"
	// Status lives in column H; keep in sync with headerRow.
	statusColumn = "H"
)

var headerRow = []interface{}{
	"Order ID", "User ID", "Name", "Phone", "Address",
	"Items JSON", "Total", "Status", "Payment Method", "Date",
}

// SheetsLedger implements Ledger on top of a Google Sheet, one order per row.
// The sheet is treated as an opaque append-only tabular store; a service
// account authenticates all calls.
type SheetsLedger struct {
	svc           *sheets.Service
	spreadsheetID string

	mu     sync.Mutex
	lastTS time.Time
}

// NewSheets builds a Sheets-backed ledger from a service-account credentials
// file and verifies the header row exists.
func NewSheets(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsLedger, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheet credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheet credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("build sheets client: %w", err)
	}

	l := &SheetsLedger{svc: svc, spreadsheetID: spreadsheetID}
	if err := l.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Append writes one order row to the sheet.
func (l *SheetsLedger) Append(ctx context.Context, rec Record) (Ack, error) {
	l.mu.Lock()
	rec.Timestamp = l.clampLocked(rec.Timestamp)
	l.mu.Unlock()

	vr := &sheets.ValueRange{Values: [][]interface{}{recordToRow(rec)}}
	resp, err := l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, dataRange, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return Ack{}, classify(err)
	}

	row := 0
	if resp.Updates != nil {
		row = rowFromRange(resp.Updates.UpdatedRange)
	}
	return Ack{Row: row, AppendedAt: rec.Timestamp}, nil
}

// Rows reads back all order rows matching the filter. The read is restartable
// and idempotent; a record appended by this process is visible to a
// subsequent Rows call.
func (l *SheetsLedger) Rows(ctx context.Context, filter Filter) ([]Record, error) {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, dataRange).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify(err)
	}

	var out []Record
	for _, raw := range resp.Values {
		rec, ok := rowToRecord(raw)
		if !ok {
			continue
		}
		if filter.Matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// UpdateStatus rewrites the Status cell of the row holding the given order.
func (l *SheetsLedger) UpdateStatus(ctx context.Context, orderID, status string) error {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, dataRange).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}

	rowNum := 0
	for i, raw := range resp.Values {
		if len(raw) > 0 && fmt.Sprint(raw[0]) == orderID {
			rowNum = i + 2 // data starts on row 2, below the header
			break
		}
	}
	if rowNum == 0 {
		return ErrNotFound
	}

	cell := fmt.Sprintf("%s!%s%d", sheetName, statusColumn, rowNum)
	vr := &sheets.ValueRange{Values: [][]interface{}{{status}}}
	_, err = l.svc.Spreadsheets.Values.
		Update(l.spreadsheetID, cell, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return classify(err)
}

func (l *SheetsLedger) ensureHeader(ctx context.Context) error {
	resp, err := l.svc.Spreadsheets.Values.
		Get(l.spreadsheetID, headerRange).
		Context(ctx).
		Do()
	if err != nil {
		return classify(err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{headerRow}}
	_, err = l.svc.Spreadsheets.Values.
		Append(l.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return classify(err)
}

func (l *SheetsLedger) clampLocked(ts time.Time) time.Time {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if ts.Before(l.lastTS) {
		ts = l.lastTS
	}
	l.lastTS = ts
	return ts
}

func recordToRow(rec Record) []interface{} {
	return []interface{}{
		rec.OrderID,
		strconv.FormatInt(rec.UserID, 10),
		rec.Name,
		rec.Phone,
		rec.Address,
		rec.ItemsJSON,
		formatMinor(rec.Total),
		rec.Status,
		rec.PaymentMethod,
		rec.Timestamp.Format(TimeFormat),
	}
}

func rowToRecord(raw []interface{}) (Record, bool) {
	if len(raw) < 10 {
		return Record{}, false
	}
	cell := func(i int) string { return strings.TrimSpace(fmt.Sprint(raw[i])) }

	userID, _ := strconv.ParseInt(cell(1), 10, 64)
	ts, err := time.Parse(TimeFormat, cell(9))
	if err != nil {
		ts = time.Time{}
	}

	return Record{
		Timestamp:     ts,
		OrderID:       cell(0),
		UserID:        userID,
		Name:          cell(2),
		Phone:         cell(3),
		Address:       cell(4),
		ItemsJSON:     cell(5),
		Total:         parseMinor(cell(6)),
		Status:        cell(7),
		PaymentMethod: cell(8),
	}, true
}

// formatMinor renders cents as a plain decimal, e.g. 1999 -> "19.99", so the
// sheet stays readable for humans.
func formatMinor(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

func parseMinor(s string) int64 {
	whole, frac, _ := strings.Cut(s, ".")
	w, _ := strconv.ParseInt(whole, 10, 64)
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	f, _ := strconv.ParseInt(frac, 10, 64)
	if w < 0 {
		return w*100 - f
	}
	return w*100 + f
}

// rowFromRange extracts the row number from an A1 range like "Orders!A5:J5".
func rowFromRange(a1 string) int {
	_, cells, ok := strings.Cut(a1, "!")
	if !ok {
		return 0
	}
	start, _, _ := strings.Cut(cells, ":")
	digits := strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	n, _ := strconv.Atoi(digits)
	return n
}

// classify maps vendor SDK failures onto the ledger error taxonomy:
// credential rejections are permanent, everything transport-shaped is
// transient and therefore retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == 401 || gerr.Code == 403:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		case gerr.Code == 429 || gerr.Code >= 500:
			return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
		default:
			return err
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	// Anything else at this layer is a network-level failure.
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}
