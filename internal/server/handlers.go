package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khrees2412/cvbuilder/internal/export"
	"github.com/khrees2412/cvbuilder/internal/gateway"
	"github.com/khrees2412/cvbuilder/internal/stats"
	"github.com/khrees2412/cvbuilder/pkg/models"
)

type saveRequest struct {
	Title    string            `json:"title"`
	Document models.CVDocument `json:"document"`
}

func (s *Server) bindSave(c *gin.Context) (saveRequest, bool) {
	req := saveRequest{Document: models.NewDocument()}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	if err := gateway.ValidateTitle(req.Title); err != nil {
		s.writeError(c, err)
		return req, false
	}
	return req, true
}

func (s *Server) listCVs(c *gin.Context) {
	cvs, err := s.gateway.List(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cvs)
}

func (s *Server) createCV(c *gin.Context) {
	req, ok := s.bindSave(c)
	if !ok {
		return
	}
	req.Document.ID = ""

	saved, err := s.gateway.Save(c.Request.Context(), req.Title, req.Document)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) getCV(c *gin.Context) {
	cv, err := s.gateway.LoadByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cv)
}

func (s *Server) updateCV(c *gin.Context) {
	req, ok := s.bindSave(c)
	if !ok {
		return
	}
	req.Document.ID = c.Param("id")

	saved, err := s.gateway.Save(c.Request.Context(), req.Title, req.Document)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (s *Server) deleteCV(c *gin.Context) {
	if err := s.gateway.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listHistory(c *gin.Context) {
	entries, err := s.history.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) getStats(c *gin.Context) {
	st, err := stats.Collect(c.Request.Context(), s.store, s.gateway, s.now())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) render(c *gin.Context) {
	doc := models.NewDocument()
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	html, err := export.Render(doc)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}
