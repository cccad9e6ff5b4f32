package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/payroll/internal/adjustment"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	"github.com/smallbiznis/payroll/internal/audit"
	auditdomain "github.com/smallbiznis/payroll/internal/audit/domain"
	"github.com/smallbiznis/payroll/internal/config"
	"github.com/smallbiznis/payroll/internal/consolidation"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
	"github.com/smallbiznis/payroll/internal/earning"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	"github.com/smallbiznis/payroll/internal/employee"
	employeedomain "github.com/smallbiznis/payroll/internal/employee/domain"
	"github.com/smallbiznis/payroll/internal/export"
	"github.com/smallbiznis/payroll/internal/lifecycle"
	lifecycledomain "github.com/smallbiznis/payroll/internal/lifecycle/domain"
	obsmiddleware "github.com/smallbiznis/payroll/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/payroll/internal/observability/metrics"
	obstracing "github.com/smallbiznis/payroll/internal/observability/tracing"
	"github.com/smallbiznis/payroll/internal/payslip"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
	"github.com/smallbiznis/payroll/internal/preset"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	audit.Module,
	earning.Module,
	adjustment.Module,
	consolidation.Module,
	payslip.Module,
	preset.Module,
	employee.Module,
	lifecycle.Module,
	export.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if httpMetrics != nil {
		r.Use(httpMetrics.GinMiddleware())
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine           *gin.Engine
	cfg              config.Config
	recordSvc        earningdomain.Service
	adjustmentSvc    adjustmentdomain.Service
	consolidationSvc consolidationdomain.Service
	lifecycleSvc     lifecycledomain.Service
	payslipSvc       payslipdomain.Service
	presetSvc        presetdomain.Service
	employeeSvc      employeedomain.Service
	exportSvc        export.Service
	auditSvc         auditdomain.Service
}

type ServerParams struct {
	fx.In

	Gin              *gin.Engine
	Cfg              config.Config
	RecordSvc        earningdomain.Service
	AdjustmentSvc    adjustmentdomain.Service
	ConsolidationSvc consolidationdomain.Service
	LifecycleSvc     lifecycledomain.Service
	PayslipSvc       payslipdomain.Service
	PresetSvc        presetdomain.Service
	EmployeeSvc      employeedomain.Service
	ExportSvc        export.Service
	AuditSvc         auditdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:           p.Gin,
		cfg:              p.Cfg,
		recordSvc:        p.RecordSvc,
		adjustmentSvc:    p.AdjustmentSvc,
		consolidationSvc: p.ConsolidationSvc,
		lifecycleSvc:     p.LifecycleSvc,
		payslipSvc:       p.PayslipSvc,
		presetSvc:        p.PresetSvc,
		employeeSvc:      p.EmployeeSvc,
		exportSvc:        p.ExportSvc,
		auditSvc:         p.AuditSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")
	api.Use(EmployerContext())

	// -------- Earning records --------
	api.POST("/records", s.CreateRecord)
	api.GET("/records", s.ListRecords)
	api.GET("/records/:id", s.GetRecordByID)

	// -------- Record adjustments --------
	api.POST("/records/:id/adjustments", s.AddRecordAdjustment)
	api.PUT("/records/:id/adjustments", s.ReplaceRecordAdjustments)
	api.DELETE("/records/:id/adjustments/:adjustment_id", s.RemoveRecordAdjustment)

	// -------- Status lifecycle --------
	api.POST("/records/process", s.ProcessRecords)
	api.POST("/records/pay", s.PayRecords)
	api.POST("/records/revert", s.RevertRecords)

	// -------- Employee periods --------
	api.GET("/employees/:employee_id/periods/:period/adjustments", s.ListPeriodAdjustments)
	api.PUT("/employees/:employee_id/periods/:period/adjustments", s.UpsertPeriodAdjustments)
	api.GET("/employees/:employee_id/periods/:period/summary", s.GetPeriodSummary)
	api.GET("/employees/:employee_id/bank-details", s.GetBankDetails)

	// -------- Payslips --------
	api.GET("/payslips", s.ListPayslips)
	api.GET("/payslips/:id", s.GetPayslipByID)

	// -------- Presets --------
	api.GET("/presets", s.ListPresets)
	api.POST("/presets", s.CreatePreset)
	api.PATCH("/presets/:id", s.UpdatePreset)
	api.DELETE("/presets/:id", s.DeletePreset)

	// -------- Exports --------
	api.GET("/exports/records.csv", s.ExportRecords(export.FormatCSV))
	api.GET("/exports/records.xlsx", s.ExportRecords(export.FormatXLSX))

	// -------- Audit --------
	api.GET("/audit-logs", s.ListAuditLogs)
}
