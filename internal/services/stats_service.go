package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/franciscosanchezn/pizzeria-api/internal/models"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// StatusStat is the order count and revenue for one status
type StatusStat struct {
	Count   int64 `json:"count"`
	Revenue int64 `json:"revenue"`
}

// Totals sums StatusStat over every status. Revenue is the sum of order prices,
// Collected is what paid checkouts were charged including tax, delivery and discounts.
type Totals struct {
	Orders    int64 `json:"orders"`
	Revenue   int64 `json:"revenue"`
	Collected int64 `json:"collected"`
}

// Stats is the admin dashboard summary. Every status is present, absent ones are zero.
type Stats struct {
	StatusStats map[string]StatusStat `json:"statusStats"`
	Totals      Totals                `json:"totals"`
}

type StatsService interface {
	Summary(ctx context.Context) (*Stats, error)
	// ExportOrders writes every order and the summary as an xlsx workbook
	ExportOrders(ctx context.Context, w io.Writer) error
}

type statsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) StatsService {
	return &statsService{db: db}
}

func (s *statsService) Summary(ctx context.Context) (*Stats, error) {
	var rows []struct {
		Status  string
		Count   int64
		Revenue int64
	}
	err := s.db.WithContext(ctx).Model(&models.PizzaOrder{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS revenue").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{StatusStats: make(map[string]StatusStat, len(models.OrderStatuses))}
	for _, status := range models.OrderStatuses {
		stats.StatusStats[status] = StatusStat{}
	}
	for _, row := range rows {
		if _, ok := stats.StatusStats[row.Status]; ok {
			stats.StatusStats[row.Status] = StatusStat{Count: row.Count, Revenue: row.Revenue}
		}
		stats.Totals.Orders += row.Count
		stats.Totals.Revenue += row.Revenue
	}

	err = s.db.WithContext(ctx).Model(&models.PaymentIntent{}).
		Where("status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Totals.Collected).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

var exportHeaders = []interface{}{
	"Order ID", "Customer", "Email", "Crust", "Sauce", "Cheeses", "Toppings", "Size",
	"Quantity", "Unit Price", "Total Price", "Status", "Payment ID", "Verified", "Created At",
}

func (s *statsService) ExportOrders(ctx context.Context, w io.Writer) error {
	var orders []models.PizzaOrder
	if err := s.db.WithContext(ctx).Preload("User").Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return err
	}
	stats, err := s.Summary(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const ordersSheet, summarySheet = "Orders", "Summary"
	if err := f.SetSheetName("Sheet1", ordersSheet); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(ordersSheet, "A1", &exportHeaders); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(exportHeaders))
	if err := f.SetCellStyle(ordersSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, o := range orders {
		var name, email string
		if o.User != nil {
			name, email = o.User.Name, o.User.Email
		}
		row := []interface{}{
			o.ID, name, email, o.Crust, o.Sauce,
			strings.Join(o.Cheeses, ", "), strings.Join(o.Toppings, ", "), o.Size,
			o.Quantity, o.UnitPrice, o.TotalPrice, o.Status,
			o.Payment.GatewayPaymentID, o.Payment.Verified,
			o.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(ordersSheet, cell, &row); err != nil {
			return fmt.Errorf("write order %d: %w", o.ID, err)
		}
	}
	_ = f.SetColWidth(ordersSheet, "B", "G", 20)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	_ = f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Status", "Orders", "Revenue"})
	_ = f.SetCellStyle(summarySheet, "A1", "C1", bold)
	for i, status := range models.OrderStatuses {
		st := stats.StatusStats[status]
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(summarySheet, cell, &[]interface{}{status, st.Count, st.Revenue})
	}
	totalCell, _ := excelize.CoordinatesToCellName(1, len(models.OrderStatuses)+2)
	_ = f.SetSheetRow(summarySheet, totalCell, &[]interface{}{"total", stats.Totals.Orders, stats.Totals.Revenue})

	return f.Write(w)
}
