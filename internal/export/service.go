package export

import (
	"bytes"
	"context"
	"errors"
	"strings"

	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
	"github.com/smallbiznis/payroll/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var ErrUnsupportedFormat = errors.New("unsupported_export_format")

type Request struct {
	EmployeeID string `form:"employee_id"`
	PayPeriod  string `form:"pay_period"`
	Status     string `form:"status"`
	Search     string `form:"search"`
}

type File struct {
	Name        string
	ContentType string
	Body        []byte
}

type Service interface {
	Export(ctx context.Context, format Format, req Request) (*File, error)
}

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	RecordRepo earningdomain.Repository
	Metrics    *metrics.PayrollMetrics `optional:"true"`
}

type exporter struct {
	db         *gorm.DB
	log        *zap.Logger
	recordRepo earningdomain.Repository
	metrics    *metrics.PayrollMetrics
}

func NewService(p Params) Service {
	return &exporter{
		db:         p.DB,
		log:        p.Log.Named("export.service"),
		recordRepo: p.RecordRepo,
		metrics:    p.Metrics,
	}
}

// Export renders every matching record, unpaginated, ordered by record id.
func (e *exporter) Export(ctx context.Context, format Format, req Request) (*File, error) {
	if format != FormatCSV && format != FormatXLSX {
		return nil, ErrUnsupportedFormat
	}

	filter := earningdomain.ListFilter{
		EmployeeID: strings.TrimSpace(req.EmployeeID),
		Search:     req.Search,
	}
	employerID, scoped := employercontext.EmployerIDFromContext(ctx)
	if scoped {
		filter.EmployerID = employerID
	}
	if strings.TrimSpace(req.PayPeriod) != "" {
		period, err := earningdomain.ParsePayPeriod(req.PayPeriod)
		if err != nil {
			return nil, err
		}
		filter.PayPeriod = period
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		parsed := earningdomain.Status(strings.ToLower(status))
		if !parsed.Valid() {
			return nil, earningdomain.ErrInvalidStatus
		}
		filter.Status = parsed
	}

	items, err := e.recordRepo.List(ctx, e.db, filter)
	if err != nil {
		return nil, err
	}
	records := make([]earningdomain.EarningRecord, 0, len(items))
	for _, item := range items {
		records = append(records, *item)
	}
	rows := Rows(records)

	employerName := employerID
	if len(records) > 0 && records[0].EmployerName != "" {
		employerName = records[0].EmployerName
	}

	var buf bytes.Buffer
	file := &File{Name: FileName(employerName, filter.PayPeriod, string(format))}
	switch format {
	case FormatCSV:
		err = WriteCSV(&buf, rows)
		file.ContentType = "text/csv; charset=utf-8"
	case FormatXLSX:
		err = WriteXLSX(&buf, rows)
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return nil, err
	}
	file.Body = buf.Bytes()

	e.metrics.IncExport(string(format))
	e.log.Debug("records exported",
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)),
	)
	return file, nil
}
