package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
	lifecycledomain "github.com/smallbiznis/payroll/internal/lifecycle/domain"
)

func (s *Server) ProcessRecords(c *gin.Context) {
	var req lifecycledomain.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if actor := actorID(c); actor != "" {
		req.ActorID = actor
	}

	payslip, err := s.lifecycleSvc.ProcessBulk(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payslip})
}

func (s *Server) PayRecords(c *gin.Context) {
	var req lifecycledomain.BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if actor := actorID(c); actor != "" {
		req.ActorID = actor
	}

	payslips, err := s.lifecycleSvc.PayBulk(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payslips})
}

func (s *Server) RevertRecords(c *gin.Context) {
	var req lifecycledomain.RevertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.FromStatus = earningdomain.Status(strings.ToLower(strings.TrimSpace(string(req.FromStatus))))
	if actor := actorID(c); actor != "" {
		req.ActorID = actor
	}

	payslips, err := s.lifecycleSvc.RevertBulk(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payslips})
}
