// Package export renders earning records for the downstream payroll office.
package export

import (
	"strings"
	"time"

	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/paycalc"
)

// Row is one exported record. Field order is the column order and must not
// change; the payroll office import depends on it.
type Row struct {
	RecordID           string `csv:"Record ID"`
	RecordType         string `csv:"Record Type"`
	EmployeeName       string `csv:"Employee Name"`
	EmployeeID         string `csv:"Employee ID"`
	Email              string `csv:"Email"`
	PayPeriod          string `csv:"Pay Period"`
	ItemDate           string `csv:"Item Date"`
	ItemTitle          string `csv:"Item Title"`
	EmployerName       string `csv:"Employer Name"`
	EmployerID         string `csv:"Employer ID"`
	HoursWorked        string `csv:"Hours Worked"`
	BaseRate           string `csv:"Base Rate"`
	AgreedCompensation string `csv:"Agreed Compensation"`
	OBPremiumTotal     string `csv:"OB Premium Total"`
	OBDetails          string `csv:"OB Details"`
	NetAdjustments     string `csv:"Net Adjustments"`
	AdjustmentDetails  string `csv:"Adjustment Details"`
	TotalPay           string `csv:"Total Pay"`
	Status             string `csv:"Status"`
	ProcessedAt        string `csv:"Processed At"`
}

// Columns lists the header in export order.
var Columns = []string{
	"Record ID", "Record Type", "Employee Name", "Employee ID", "Email",
	"Pay Period", "Item Date", "Item Title", "Employer Name", "Employer ID",
	"Hours Worked", "Base Rate", "Agreed Compensation", "OB Premium Total", "OB Details",
	"Net Adjustments", "Adjustment Details", "Total Pay", "Status", "Processed At",
}

// NewRow formats r. Money and hours carry exactly two decimals; totals are
// recomputed from source fields. Absent engagement hours stay empty.
func NewRow(r earningdomain.EarningRecord) Row {
	fresh := paycalc.Recompute(r)
	row := Row{
		RecordID:           r.ID.String(),
		RecordType:         string(r.Kind),
		EmployeeName:       r.EmployeeName,
		EmployeeID:         r.EmployeeID,
		Email:              r.EmployeeEmail,
		PayPeriod:          r.PayPeriod,
		ItemDate:           r.ItemDate.UTC().Format("2006-01-02"),
		ItemTitle:          r.ItemTitle,
		EmployerName:       r.EmployerName,
		EmployerID:         r.EmployerID,
		AgreedCompensation: paycalc.FormatAmount(r.AgreedCompensation),
		OBPremiumTotal:     paycalc.FormatAmount(paycalc.OBPremium(r)),
		OBDetails:          paycalc.OBDetails(r.OBBreakdown.Data()),
		NetAdjustments:     paycalc.FormatAmount(fresh.NetAdjustments),
		AdjustmentDetails:  adjustmentDetails(r.Adjustments),
		TotalPay:           paycalc.FormatAmount(fresh.TotalPay),
		Status:             string(r.Status),
	}
	if r.HoursWorked.Valid {
		row.HoursWorked = paycalc.FormatAmount(r.HoursWorked.Decimal)
	}
	if r.Kind == earningdomain.KindShift {
		row.BaseRate = paycalc.FormatAmount(r.HourlyRate)
	}
	if r.ProcessedAt != nil {
		row.ProcessedAt = r.ProcessedAt.UTC().Format(time.RFC3339)
	}
	return row
}

// Values returns the row cells in column order.
func (r Row) Values() []string {
	return []string{
		r.RecordID, r.RecordType, r.EmployeeName, r.EmployeeID, r.Email,
		r.PayPeriod, r.ItemDate, r.ItemTitle, r.EmployerName, r.EmployerID,
		r.HoursWorked, r.BaseRate, r.AgreedCompensation, r.OBPremiumTotal, r.OBDetails,
		r.NetAdjustments, r.AdjustmentDetails, r.TotalPay, r.Status, r.ProcessedAt,
	}
}

func adjustmentDetails(adjustments []earningdomain.Adjustment) string {
	parts := make([]string, 0, len(adjustments))
	for _, adj := range adjustments {
		parts = append(parts, adj.Reason+": "+paycalc.FormatAmount(adj.Amount))
	}
	return strings.Join(parts, "; ")
}

func Rows(records []earningdomain.EarningRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewRow(r))
	}
	return rows
}
