package csvstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/teller/internal/model"
	"github.com/cleared-dev/teller/internal/store"
)

// ClientHeader is the CSV header for clients.csv.
const ClientHeader = "national_id,first_name,last_name,birth_date,person_type,accounts"

// AccountHeader is the CSV header for accounts.csv.
const AccountHeader = "account_number,account_type,currency,balance,opened_at,owner_id"

const (
	dateFormat = "2006-01-02"

	numClientFields = 6
	colNationalID   = 0
	colFirstName    = 1
	colLastName     = 2
	colBirthDate    = 3
	colPersonType   = 4
	colHoldings     = 5

	numAccountFields = 6
	colNumber        = 0
	colType          = 1
	colCurrency      = 2
	colBalance       = 3
	colOpenedAt      = 4
	colOwnerID       = 5
)

// ReadClients reads clients.csv. Account links are always decoded.
func ReadClients(r io.Reader) ([]*model.Client, error) {
	records, err := readRecords(r, numClientFields)
	if err != nil {
		return nil, fmt.Errorf("reading clients CSV: %w", err)
	}

	var clients []*model.Client
	for i, rec := range records {
		c, err := UnmarshalClient(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// WriteClients writes clients.csv.
func WriteClients(w io.Writer, clients []*model.Client) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(ClientHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, c := range clients {
		if err := cw.Write(MarshalClient(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadAccounts reads accounts.csv.
func ReadAccounts(r io.Reader) ([]*model.Account, error) {
	records, err := readRecords(r, numAccountFields)
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	var accounts []*model.Account
	for i, rec := range records {
		a, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, nil
}

// WriteAccounts writes accounts.csv.
func WriteAccounts(w io.Writer, accounts []*model.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(AccountHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range accounts {
		if err := cw.Write(MarshalAccount(a)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalClient converts a Client to a CSV row. The account collection is
// stored inline as semicolon-separated "number:TYPE:CURRENCY:balance" links
// so that a client and its links are written together.
func MarshalClient(c *model.Client) []string {
	links := make([]string, len(c.Accounts))
	for i, a := range c.Accounts {
		links[i] = fmt.Sprintf("%d:%s:%s:%s", a.Number, a.Type, a.Currency, a.Balance.String())
	}

	row := make([]string, numClientFields)
	row[colNationalID] = strconv.FormatInt(c.NationalID, 10)
	row[colFirstName] = c.FirstName
	row[colLastName] = c.LastName
	if !c.BirthDate.IsZero() {
		row[colBirthDate] = c.BirthDate.Format(dateFormat)
	}
	row[colPersonType] = string(c.PersonType)
	row[colHoldings] = strings.Join(links, ";")
	return row
}

// UnmarshalClient converts a CSV row to a Client with its account links.
func UnmarshalClient(record []string) (*model.Client, error) {
	if len(record) != numClientFields {
		return nil, fmt.Errorf("expected %d fields, got %d", numClientFields, len(record))
	}

	nid, err := strconv.ParseInt(record[colNationalID], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing national_id %q: %w", record[colNationalID], err)
	}

	var birth time.Time
	if record[colBirthDate] != "" {
		birth, err = time.Parse(dateFormat, record[colBirthDate])
		if err != nil {
			return nil, fmt.Errorf("parsing birth_date %q: %w", record[colBirthDate], err)
		}
	}

	c := &model.Client{
		NationalID: nid,
		FirstName:  record[colFirstName],
		LastName:   record[colLastName],
		BirthDate:  birth,
		PersonType: model.PersonType(record[colPersonType]),
	}

	if record[colHoldings] == "" {
		return c, nil
	}
	for _, link := range strings.Split(record[colHoldings], ";") {
		parts := strings.Split(link, ":")
		if len(parts) != 4 {
			return nil, fmt.Errorf("malformed account link %q", link)
		}
		num, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing account link number %q: %w", parts[0], err)
		}
		bal, err := decimal.NewFromString(parts[3])
		if err != nil {
			return nil, fmt.Errorf("parsing account link balance %q: %w", parts[3], err)
		}
		c.Accounts = append(c.Accounts, &model.Account{
			Number:   num,
			Type:     model.AccountType(parts[1]),
			Currency: model.Currency(parts[2]),
			Balance:  bal,
			Owner:    c,
		})
	}
	return c, nil
}

// MarshalAccount converts an Account to a CSV row.
func MarshalAccount(a *model.Account) []string {
	row := make([]string, numAccountFields)
	row[colNumber] = strconv.FormatInt(a.Number, 10)
	row[colType] = string(a.Type)
	row[colCurrency] = string(a.Currency)
	row[colBalance] = a.Balance.String()
	if !a.OpenedAt.IsZero() {
		row[colOpenedAt] = a.OpenedAt.UTC().Format(time.RFC3339)
	}
	if id := a.OwnerID(); id != 0 {
		row[colOwnerID] = strconv.FormatInt(id, 10)
	}
	return row
}

// UnmarshalAccount converts a CSV row to an Account.
func UnmarshalAccount(record []string) (*model.Account, error) {
	if len(record) != numAccountFields {
		return nil, fmt.Errorf("expected %d fields, got %d", numAccountFields, len(record))
	}

	num, err := strconv.ParseInt(record[colNumber], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing account_number %q: %w", record[colNumber], err)
	}

	bal, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return nil, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	var opened time.Time
	if record[colOpenedAt] != "" {
		opened, err = time.Parse(time.RFC3339, record[colOpenedAt])
		if err != nil {
			return nil, fmt.Errorf("parsing opened_at %q: %w", record[colOpenedAt], err)
		}
	}

	var owner int64
	if record[colOwnerID] != "" {
		owner, err = strconv.ParseInt(record[colOwnerID], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing owner_id %q: %w", record[colOwnerID], err)
		}
	}

	return &model.Account{
		Number:   num,
		Type:     model.AccountType(record[colType]),
		Currency: model.Currency(record[colCurrency]),
		Balance:  bal,
		OpenedAt: opened,
		Owner:    store.OwnerRef(owner),
	}, nil
}

// readRecords returns the data rows, skipping the header.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}
	return records[1:], nil
}
