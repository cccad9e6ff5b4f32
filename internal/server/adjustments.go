package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	adjustmentdomain "github.com/smallbiznis/payroll/internal/adjustment/domain"
	"github.com/smallbiznis/payroll/internal/employercontext"
)

type replaceAdjustmentsRequest struct {
	Adjustments []adjustmentdomain.AdjustmentInput `json:"adjustments"`
}

// AddRecordAdjustment appends an entry, or edits it in place when the body
// carries an existing id.
func (s *Server) AddRecordAdjustment(c *gin.Context) {
	recordID, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req adjustmentdomain.AdjustmentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.adjustmentSvc.AddOrUpdateRecordAdjustment(c.Request.Context(), recordID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ReplaceRecordAdjustments(c *gin.Context) {
	recordID, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req replaceAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.adjustmentSvc.ReplaceRecordAdjustments(c.Request.Context(), recordID, req.Adjustments)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) RemoveRecordAdjustment(c *gin.Context) {
	recordID, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	adjustmentID, err := pathID(c.Param("adjustment_id"), "adjustment_id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.adjustmentSvc.RemoveRecordAdjustment(c.Request.Context(), recordID, adjustmentID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}

func (s *Server) ListPeriodAdjustments(c *gin.Context) {
	adjustments, err := s.adjustmentSvc.ListPeriodLevelAdjustments(c.Request.Context(), c.Param("employee_id"), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": adjustments})
}

// UpsertPeriodAdjustments replaces the employee's period adjustments with
// the submitted list.
func (s *Server) UpsertPeriodAdjustments(c *gin.Context) {
	var req replaceAdjustmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	employerID, _ := employercontext.EmployerIDFromContext(c.Request.Context())
	adjustments, err := s.adjustmentSvc.UpsertPeriodLevelAdjustments(c.Request.Context(), adjustmentdomain.UpsertPeriodAdjustmentsRequest{
		EmployeeID:      c.Param("employee_id"),
		PayPeriod:       c.Param("period"),
		Adjustments:     req.Adjustments,
		ActorEmployerID: employerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": adjustments})
}
