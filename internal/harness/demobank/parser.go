package demobank

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const DateLayout = "2006-01-02"

// Summary is what the dashboard shows about the first personal account.
type Summary struct {
	Balance    int64 // grosze
	Currency   string
	Operations []Operation
}

// Operation is one row of the recent operations table.
type Operation struct {
	Date        time.Time
	Description string
	Amount      int64 // grosze, negative for debits
}

func (o Operation) IsDebit() bool { return o.Amount < 0 }

// ParseDashboard extracts the balance and recent operations. An empty
// operations table is not an error.
func ParseDashboard(html string) (*Summary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	amount := doc.Find(SelectorBalanceAmount).First()
	if amount.Length() == 0 {
		return nil, fmt.Errorf("%w: balance not found with selector: %s", ErrParsingFailed, SelectorBalanceAmount)
	}
	balance, err := ParsePolishAmount(amount.Text())
	if err != nil {
		return nil, fmt.Errorf("%w: balance %q: %v", ErrParsingFailed, amount.Text(), err)
	}

	table := doc.Find(SelectorOperationsTable).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: table not found with selector: %s", ErrParsingFailed, SelectorOperationsTable)
	}

	rows := table.Find(SelectorOperationRows)
	ops := make([]Operation, 0, rows.Length())
	var parseErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		op, err := parseOperationRow(row)
		if err != nil {
			parseErr = fmt.Errorf("%w: row %d: %v", ErrParsingFailed, i, err)
			return false
		}
		ops = append(ops, op)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return &Summary{
		Balance:    balance,
		Currency:   strings.TrimSpace(doc.Find(SelectorBalanceCurrency).First().Text()),
		Operations: ops,
	}, nil
}

func parseOperationRow(row *goquery.Selection) (Operation, error) {
	cells := row.Find("td")
	if cells.Length() < 3 {
		return Operation{}, fmt.Errorf("expected 3 cells, got %d", cells.Length())
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(cells.Eq(0).Text()))
	if err != nil {
		return Operation{}, fmt.Errorf("parse date: %w", err)
	}
	amount, err := ParsePolishAmount(cells.Eq(2).Text())
	if err != nil {
		return Operation{}, fmt.Errorf("parse amount %q: %w", cells.Eq(2).Text(), err)
	}

	return Operation{
		Date:        date,
		Description: strings.TrimSpace(cells.Eq(1).Text()),
		Amount:      amount,
	}, nil
}

// ParsePolishAmount turns "1 234,56" into 123456. Spaces (including the
// non-breaking kinds) group thousands and the comma is the decimal mark.
func ParsePolishAmount(s string) (int64, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	floatVal, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(floatVal * 100)), nil
}
