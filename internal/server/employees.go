package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	consolidationdomain "github.com/smallbiznis/payroll/internal/consolidation/domain"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
)

// GetPeriodSummary consolidates an employee's period. An optional status
// query restricts the summary to records in that status.
func (s *Server) GetPeriodSummary(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.Param("employee_id")
	period := c.Param("period")

	var (
		summary *consolidationdomain.Summary
		err     error
	)
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		summary, err = s.consolidationSvc.SummarizeStatus(ctx, employeeID, period, earningdomain.Status(strings.ToLower(status)))
	} else {
		summary, err = s.consolidationSvc.Summarize(ctx, employeeID, period)
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) GetBankDetails(c *gin.Context) {
	details, err := s.employeeSvc.BankDetails(c.Request.Context(), c.Param("employee_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": details})
}
