package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	earningdomain "github.com/smallbiznis/payroll/internal/earning/domain"
)

func (s *Server) CreateRecord(c *gin.Context) {
	var req earningdomain.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, created, err := s.recordSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": record})
}

func (s *Server) ListRecords(c *gin.Context) {
	var query earningdomain.ListRecordsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	query.EmployeeID = strings.TrimSpace(query.EmployeeID)
	query.Search = strings.TrimSpace(query.Search)

	resp, err := s.recordSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Records, "page_info": resp.PageInfo})
}

func (s *Server) GetRecordByID(c *gin.Context) {
	id, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	record, err := s.recordSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": record})
}
