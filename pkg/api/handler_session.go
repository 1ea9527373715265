package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/store"
)

func (s *Server) createSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}
	req.TenantID = c.Param("tenant")
	req.UserID = c.Param("user")

	session, md, err := s.sessions.Create(c.Request.Context(), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusCreated, ok(session, md))
}

func (s *Server) getSession(c *gin.Context) {
	session, md, err := s.sessions.Get(c.Request.Context(), c.Param("tenant"), c.Param("user"), c.Param("session"))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(session, md))
}

func (s *Server) listSessions(c *gin.Context) {
	page, md, err := s.sessions.List(c.Request.Context(), c.Param("tenant"), c.Param("user"), listOptions(c))
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(page, md))
}

func (s *Server) appendMessage(c *gin.Context) {
	var req models.AppendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, fail(codeValidation, "invalid request body: "+err.Error(), store.Metadata{}))
		return
	}

	session, md, err := s.sessions.AppendMessage(c.Request.Context(),
		c.Param("tenant"), c.Param("user"), c.Param("session"), req)
	if err != nil {
		status, code, msg := mapServiceError(err)
		c.JSON(status, fail(code, msg, md))
		return
	}
	c.JSON(http.StatusOK, ok(session, md))
}
