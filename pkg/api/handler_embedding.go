package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

func (s *Server) createEmbedding(c *gin.Context) {
	var req models.CreateEmbeddingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}
	req.TenantID = c.Param("tenant")
	req.ProjectID = c.Param("project")

	embedding, md, err := s.embeddings.Create(c.Request.Context(), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusCreated, ok(embedding, md))
}

func (s *Server) createEmbeddingBatch(c *gin.Context) {
	var reqs []models.CreateEmbeddingRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}
	for i := range reqs {
		reqs[i].TenantID = c.Param("tenant")
		reqs[i].ProjectID = c.Param("project")
	}

	written, md, err := s.embeddings.CreateBatch(c.Request.Context(), reqs)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusCreated, ok(written, md))
}

func (s *Server) getEmbedding(c *gin.Context) {
	embedding, md, err := s.embeddings.Get(c.Request.Context(), c.Param("tenant"), c.Param("project"), c.Param("chunk"))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(embedding, md))
}

func (s *Server) listEmbeddings(c *gin.Context) {
	page, md, err := s.embeddings.List(c.Request.Context(), c.Param("tenant"), c.Param("project"), listOptions(c))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(page, md))
}
