package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

func (s *Server) createProject(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}
	req.TenantID = c.Param("tenant")

	project, md, err := s.projects.Create(c.Request.Context(), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusCreated, ok(project, md))
}

// getProject returns 200 with a null data field for a missing project;
// "doesn't exist" is distinguishable from "failed to check".
func (s *Server) getProject(c *gin.Context) {
	project, md, err := s.projects.Get(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(project, md))
}

func (s *Server) listProjects(c *gin.Context) {
	page, md, err := s.projects.List(c.Request.Context(), c.Param("tenant"), listOptions(c))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(page, md))
}

func (s *Server) updateProject(c *gin.Context) {
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}

	project, md, err := s.projects.Update(c.Request.Context(), c.Param("tenant"), c.Param("project"), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(project, md))
}

// archiveProject soft-deletes; projects are never hard-deleted.
func (s *Server) archiveProject(c *gin.Context) {
	project, md, err := s.projects.Archive(c.Request.Context(), c.Param("tenant"), c.Param("project"))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(project, md))
}
