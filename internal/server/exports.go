package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/payroll/internal/export"
)

// ExportRecords streams the filtered records as a download in format.
func (s *Server) ExportRecords(format export.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query export.Request
		if err := c.ShouldBindQuery(&query); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}

		file, err := s.exportSvc.Export(c.Request.Context(), format, query)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
		c.Data(http.StatusOK, file.ContentType, file.Body)
	}
}
