package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	payslipdomain "github.com/smallbiznis/payroll/internal/payslip/domain"
)

func (s *Server) ListPayslips(c *gin.Context) {
	var query payslipdomain.ListPayslipsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query.EmployeeID = strings.TrimSpace(query.EmployeeID)

	resp, err := s.payslipSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Payslips, "page_info": resp.PageInfo})
}

func (s *Server) GetPayslipByID(c *gin.Context) {
	id, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	payslip, err := s.payslipSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payslip})
}
