package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	presetdomain "github.com/smallbiznis/payroll/internal/preset/domain"
)

func (s *Server) ListPresets(c *gin.Context) {
	presets, err := s.presetSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": presets})
}

func (s *Server) CreatePreset(c *gin.Context) {
	var req presetdomain.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	preset, err := s.presetSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": preset})
}

func (s *Server) UpdatePreset(c *gin.Context) {
	id, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req presetdomain.UpdatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	preset, err := s.presetSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": preset})
}

func (s *Server) DeletePreset(c *gin.Context) {
	id, err := pathID(c.Param("id"), "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.presetSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
