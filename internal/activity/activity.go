// Package activity keeps an append-only CSV log of successful registry
// operations under <repoRoot>/logs/activity.csv.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Operations recorded in the log.
const (
	OpClientRegistered = "client.registered"
	OpAccountOpened    = "account.opened"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp     time.Time
	Operation     string
	NationalID    int64
	AccountNumber int64 // 0 when the operation has no account
	Details       string
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,operation,national_id,account_number,details"

const (
	numFields        = 5
	logDir           = "logs"
	logFile          = "logs/activity.csv"
	colTimestamp     = 0
	colOperation     = 1
	colNationalID    = 2
	colAccountNumber = 3
	colDetails       = 4
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colOperation] = e.Operation
	row[colNationalID] = strconv.FormatInt(e.NationalID, 10)
	if e.AccountNumber != 0 {
		row[colAccountNumber] = strconv.FormatInt(e.AccountNumber, 10)
	}
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	nid, err := strconv.ParseInt(record[colNationalID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing national_id %q: %w", record[colNationalID], err)
	}

	var acct int64
	if record[colAccountNumber] != "" {
		acct, err = strconv.ParseInt(record[colAccountNumber], 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("parsing account_number %q: %w", record[colAccountNumber], err)
		}
	}

	return Entry{
		Timestamp:     ts,
		Operation:     record[colOperation],
		NationalID:    nid,
		AccountNumber: acct,
		Details:       record[colDetails],
	}, nil
}

// Append writes entries to <repoRoot>/logs/activity.csv, creating the file and header if needed.
func Append(repoRoot string, entries ...Entry) error {
	dir := filepath.Join(repoRoot, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(repoRoot, logFile)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <repoRoot>/logs/activity.csv.
// Returns an empty slice if the file does not exist.
func Read(repoRoot string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(repoRoot, logFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
