package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

func (s *Server) createDocument(c *gin.Context) {
	var req models.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}
	req.TenantID = c.Param("tenant")
	req.ProjectID = c.Param("project")

	doc, md, err := s.documents.Create(c.Request.Context(), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusCreated, ok(doc, md))
}

func (s *Server) getDocument(c *gin.Context) {
	doc, md, err := s.documents.Get(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("document"))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(doc, md))
}

func (s *Server) listDocuments(c *gin.Context) {
	page, md, err := s.documents.List(c.Request.Context(), c.Param("tenant"), c.Param("project"), listOptions(c))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(page, md))
}

// updateDocumentStatus is the processing pipeline's callback; illegal
// state-machine jumps are rejected with a validation error.
func (s *Server) updateDocumentStatus(c *gin.Context) {
	var req models.UpdateDocumentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}

	doc, md, err := s.documents.UpdateStatus(c.Request.Context(),
		c.Param("tenant"), c.Param("project"), c.Param("document"), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(doc, md))
}
