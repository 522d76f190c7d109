// Package export writes a session's records as a single CSV document.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// Header is the CSV header row. Columns a record kind does not have are
// left empty.
const Header = "kind,id,date,type,category,name,amount,spent,current,target,period,description"

const (
	numFields = 12

	colKind        = 0
	colID          = 1
	colDate        = 2
	colType        = 3
	colCategory    = 4
	colName        = 5
	colAmount      = 6
	colSpent       = 7
	colCurrent     = 8
	colTarget      = 9
	colPeriod      = 10
	colDescription = 11
)

// Row kinds.
const (
	KindTransaction = "transaction"
	KindBudget      = "budget"
	KindGoal        = "goal"
)

// Records is the data exported from one workspace.
type Records struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Goals        []core.SavingsGoal
}

// Filename returns the download name for an export taken at now.
func Filename(now time.Time) string {
	return "fintrack-export-" + now.Format("20060102-150405") + ".csv"
}

// Write writes the header followed by transactions, budgets and goals in
// collection order.
func Write(w io.Writer, recs Records) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 1
	write := func(rec []string) error {
		row++
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", row, err)
		}
		return nil
	}

	for _, t := range recs.Transactions {
		if err := write(MarshalTransaction(t)); err != nil {
			return err
		}
	}
	for _, b := range recs.Budgets {
		if err := write(MarshalBudget(b)); err != nil {
			return err
		}
	}
	for _, g := range recs.Goals {
		if err := write(MarshalGoal(g)); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func newRow(kind string, id int) []string {
	rec := make([]string, numFields)
	rec[colKind] = kind
	rec[colID] = strconv.Itoa(id)
	return rec
}

// textCell guards free text against spreadsheet formula evaluation by
// prefixing cells that start with a formula trigger with a quote.
func textCell(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}

func MarshalTransaction(t core.Transaction) []string {
	rec := newRow(KindTransaction, t.ID)
	rec[colDate] = t.Date.String()
	rec[colType] = string(t.Type)
	rec[colCategory] = textCell(t.Category)
	rec[colAmount] = t.Amount.String()
	rec[colDescription] = textCell(t.Description)
	return rec
}

func MarshalBudget(b core.Budget) []string {
	rec := newRow(KindBudget, b.ID)
	rec[colCategory] = textCell(b.Category)
	rec[colAmount] = b.Amount.String()
	rec[colSpent] = b.Spent.String()
	rec[colPeriod] = string(b.Period)
	return rec
}

func MarshalGoal(g core.SavingsGoal) []string {
	rec := newRow(KindGoal, g.ID)
	rec[colDate] = g.Deadline.String()
	rec[colName] = textCell(g.Name)
	rec[colCurrent] = g.Current.String()
	rec[colTarget] = g.Target.String()
	return rec
}
