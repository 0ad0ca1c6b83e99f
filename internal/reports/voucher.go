package reports

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mwangaza-erp/approvalflow/internal/domain/entity"
)

// VoucherGenerator renders the payment voucher workbook downloaded by
// finance after an entity is settled.
type VoucherGenerator struct {
	companyName string
	logger      *zap.Logger
}

// NewVoucherGenerator creates a new voucher generator
func NewVoucherGenerator(companyName string, logger *zap.Logger) *VoucherGenerator {
	return &VoucherGenerator{
		companyName: companyName,
		logger:      logger,
	}
}

// ErrNotSettled is returned when a voucher is requested for an entity
// that has no payment record.
var ErrNotSettled = fmt.Errorf("entity has no payment record")

// Generate writes the voucher workbook for a settled entity to w.
func (g *VoucherGenerator) Generate(e *entity.WorkflowEntity, w io.Writer) error {
	if !e.HasPayment() {
		return ErrNotSettled
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create title style: %w", err)
	}
	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("failed to create label style: %w", err)
	}

	g.setCell(f, sheet, "A1", g.companyName)
	g.setCell(f, sheet, "A2", "Payment Voucher")
	if err := f.MergeCell(sheet, "A1", "D1"); err != nil {
		return fmt.Errorf("failed to merge header: %w", err)
	}
	if err := f.MergeCell(sheet, "A2", "D2"); err != nil {
		return fmt.Errorf("failed to merge header: %w", err)
	}
	g.setStyle(f, sheet, "A1", "D2", titleStyle)

	rows := [][2]interface{}{
		{"Reference", e.ID},
		{"Type", string(e.Type)},
		{"Title", e.Title},
		{"Department", e.Department},
		{"Originator", e.Originator},
		{"Amount", fmt.Sprintf("%.2f", e.Amount)},
		{"Status", e.Status},
		{"Payment Method", e.Payment.Method},
		{"Transaction ID", e.Payment.TransactionID},
		{"Payment Advice", e.Payment.PaymentAdviceURL},
		{"Paid By", e.Payment.PaidBy},
		{"Paid At", e.Payment.PaidAt.Format(time.RFC3339)},
	}
	rowIdx := 4
	for _, row := range rows {
		g.setCell(f, sheet, fmt.Sprintf("A%d", rowIdx), row[0])
		g.setCell(f, sheet, fmt.Sprintf("B%d", rowIdx), row[1])
		g.setStyle(f, sheet, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("A%d", rowIdx), labelStyle)
		rowIdx++
	}

	// Approval chain section, in approval-time order.
	rowIdx++
	g.setCell(f, sheet, fmt.Sprintf("A%d", rowIdx), "Approvals")
	g.setStyle(f, sheet, fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("A%d", rowIdx), labelStyle)
	rowIdx++
	headers := []string{"Role", "Approved By", "Approved At", "Comments"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
		g.setCell(f, sheet, cell, header)
		g.setStyle(f, sheet, cell, cell, labelStyle)
	}
	rowIdx++

	records := make([]entity.ApprovalRecord, 0, len(e.ApprovalRecords))
	for _, rec := range e.ApprovalRecords {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ApprovedAt.Before(records[j].ApprovedAt)
	})
	for _, rec := range records {
		values := []interface{}{rec.Role, rec.ApprovedBy, rec.ApprovedAt.Format(time.RFC3339), rec.Comments}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
			g.setCell(f, sheet, cell, v)
		}
		rowIdx++
	}

	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}
	if err := f.SetColWidth(sheet, "B", "D", 32); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write voucher: %w", err)
	}

	g.logger.Info("Payment voucher generated",
		zap.String("entity_id", e.ID),
		zap.String("transaction_id", e.Payment.TransactionID))
	return nil
}

// setCell sets a cell value, logging rather than failing on bad coordinates
func (g *VoucherGenerator) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		g.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (g *VoucherGenerator) setStyle(f *excelize.File, sheet, from, to string, style int) {
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		g.logger.Warn("Failed to set cell style",
			zap.String("sheet", sheet),
			zap.String("cell", from),
			zap.Error(err))
	}
}
