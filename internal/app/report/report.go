package report

import (
	"fmt"

	"renovation/internal/app/pricing"
	"renovation/internal/app/repository"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	SheetFFE      = "FFE"
	SheetOrders   = "Orders"
	SheetInvoices = "Invoices"

	moneyFormat = "#,##0.00"
)

type sheet struct {
	f       *excelize.File
	name    string
	headers []string
	row     int
	bold    int
	money   int
}

// ProjectWorkbook builds the project report: FFE schedule, purchase orders and invoices.
func ProjectWorkbook(s *repository.ProjectSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: ptr(moneyFormat)})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetFFE); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetOrders, SheetInvoices} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	ffe := newSheet(f, SheetFFE, bold, money,
		"Item", "Room", "Category", "Supplier", "Qty", "Cost", "Markup %", "Selling", "Line total", "Margin %", "Approved", "Status")
	totalCost, totalSelling := decimal.Zero, decimal.Zero
	for _, it := range s.Items {
		supplier := ""
		if it.Supplier != nil {
			supplier = it.Supplier.Name
		}
		approved := "no"
		if it.ClientApproved {
			approved = "yes"
		}
		ffe.add(it.Name, it.Room, it.Category, supplier, it.Quantity,
			it.CostPrice, it.EffectiveMarkup, it.SellingPrice, it.TotalPrice, it.Margin, approved, it.Status)
		totalCost = totalCost.Add(pricing.LineTotal(it.Quantity, it.CostPrice))
		totalSelling = totalSelling.Add(it.TotalPrice)
	}
	ffe.total("Total", "", "", "", "", totalCost, "", "", totalSelling)

	orders := newSheet(f, SheetOrders, bold, money, "Number", "Supplier", "Status", "Order date", "Subtotal", "Total")
	ordersTotal := decimal.Zero
	for _, o := range s.Orders {
		orders.add(o.Number, o.Supplier.Name, o.Status, o.OrderDate.Format("2006-01-02"), o.Subtotal, o.Total)
		ordersTotal = ordersTotal.Add(o.Total)
	}
	orders.total("Total", "", "", "", "", ordersTotal)

	invoices := newSheet(f, SheetInvoices, bold, money, "Number", "Title", "Status", "Total", "Paid", "Balance")
	billed, paid, balance := decimal.Zero, decimal.Zero, decimal.Zero
	for _, q := range s.Invoices {
		due := pricing.Balance(q.Total, q.AmountPaid)
		invoices.add(q.Number, q.Title, q.Status, q.Total, q.AmountPaid, due)
		billed = billed.Add(q.Total)
		paid = paid.Add(q.AmountPaid)
		balance = balance.Add(due)
	}
	invoices.total("Total", "", "", billed, paid, balance)

	for _, sh := range []*sheet{ffe, orders, invoices} {
		if err := sh.finish(); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newSheet(f *excelize.File, name string, bold, money int, headers ...string) *sheet {
	sh := &sheet{f: f, name: name, headers: headers, row: 1, bold: bold, money: money}
	for i, h := range headers {
		_ = f.SetCellValue(name, cellName(i+1, 1), h)
	}
	_ = f.SetCellStyle(name, "A1", cellName(len(headers), 1), bold)
	return sh
}

// add writes one row; decimals become numbers with the money format.
func (sh *sheet) add(values ...any) {
	sh.row++
	for i, v := range values {
		cell := cellName(i+1, sh.row)
		if d, ok := v.(decimal.Decimal); ok {
			_ = sh.f.SetCellValue(sh.name, cell, d.InexactFloat64())
			_ = sh.f.SetCellStyle(sh.name, cell, cell, sh.money)
			continue
		}
		_ = sh.f.SetCellValue(sh.name, cell, v)
	}
}

func (sh *sheet) total(values ...any) {
	sh.add(values...)
	for i, v := range values {
		if _, ok := v.(decimal.Decimal); ok {
			continue
		}
		cell := cellName(i+1, sh.row)
		_ = sh.f.SetCellStyle(sh.name, cell, cell, sh.bold)
	}
}

func (sh *sheet) finish() error {
	if err := sh.f.SetPanes(sh.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(sh.headers))
	return sh.f.SetColWidth(sh.name, "A", last, 16)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func ptr[T any](v T) *T {
	return &v
}
