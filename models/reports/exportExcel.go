package reports

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var cashFlowExcelHeadings = []string{
	"Month",
	"Income",
	"Expenses",
	"Operating",
	"Investing",
	"Financing",
	"Net Cash Flow",
	"Opening Balance",
	"Closing Balance",
}

// ExportCashFlowExcel writes the statement's monthly breakdown as a
// single-sheet workbook, one row per month in calendar order, with a totals
// row at the bottom.
func ExportCashFlowExcel(w io.Writer, statement *CashFlowStatement) error {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	col := 'A'
	for _, h := range cashFlowExcelHeadings {
		f.SetCellValue(sheetName, string(col)+"1", h)
		col++
	}

	keys := make([]string, 0, len(statement.MonthlyBreakdown))
	for key := range statement.MonthlyBreakdown {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	money := func(d decimal.Decimal) float64 {
		v, _ := d.Float64()
		return v
	}

	rowNo := 2
	for _, key := range keys {
		b := statement.MonthlyBreakdown[key]
		row := []any{
			key,
			money(b.Income.Total),
			money(b.Expenses.Total),
			money(b.Operating.Net),
			money(b.Investing.Net),
			money(b.Financing.Net),
			money(b.NetCashFlow),
			money(b.OpeningBalance),
			money(b.ClosingBalance),
		}
		col := 'A'
		for _, value := range row {
			f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value)
			col++
		}
		rowNo++
	}

	totals := statement.YearlyTotals
	totalRow := []any{
		"Total",
		money(totals.Income.Total),
		money(totals.Expenses.Total),
		money(totals.Operating.Net),
		money(totals.Investing.Net),
		money(totals.Financing.Net),
		money(totals.NetCashFlow),
		money(statement.Reconciliation.BeginningCash),
		money(statement.Reconciliation.ActualEndingCash),
	}
	col = 'A'
	for _, value := range totalRow {
		f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value)
		col++
	}

	return f.Write(w)
}

// SaveCashFlowExcel exports to a file on disk, for the operational harness.
func SaveCashFlowExcel(filename string, statement *CashFlowStatement) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	return ExportCashFlowExcel(file, statement)
}
