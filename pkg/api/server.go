// Package api exposes the repository operations and health reporting over
// HTTP. Handlers translate between transport concerns and the service
// layer; every endpoint returns the uniform success/error envelope.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codeready-toolchain/ragstore/pkg/database"
	"github.com/codeready-toolchain/ragstore/pkg/models"
	"github.com/codeready-toolchain/ragstore/pkg/services"
)

// Server wires the entity services to the HTTP router.
type Server struct {
	client     *database.Client
	projects   *services.ProjectService
	sessions   *services.SessionService
	documents  *services.DocumentService
	embeddings *services.EmbeddingService
	router     *gin.Engine
}

// NewServer creates the API server and its routes.
func NewServer(client *database.Client) *Server {
	s := &Server{
		client:     client,
		projects:   services.NewProjectService(client),
		sessions:   services.NewSessionService(client),
		documents:  services.NewDocumentService(client),
		embeddings: services.NewEmbeddingService(client),
	}

	router := gin.New()
	router.Use(gin.Recovery(), securityHeaders(), correlationID(), requestLogger())

	router.GET("/health", s.healthHandler)

	v1 := router.Group("/api/v1")
	tenant := v1.Group("/tenants/:tenant")

	tenant.POST("/projects", s.createProject)
	tenant.GET("/projects", s.listProjects)
	tenant.GET("/projects/:project", s.getProject)
	tenant.PATCH("/projects/:project", s.updateProject)
	tenant.DELETE("/projects/:project", s.archiveProject)

	tenant.POST("/users/:user/sessions", s.createSession)
	tenant.GET("/users/:user/sessions", s.listSessions)
	tenant.GET("/users/:user/sessions/:session", s.getSession)
	tenant.POST("/users/:user/sessions/:session/messages", s.appendMessage)

	tenant.POST("/projects/:project/documents", s.createDocument)
	tenant.GET("/projects/:project/documents", s.listDocuments)
	tenant.GET("/projects/:project/documents/:document", s.getDocument)
	tenant.PUT("/projects/:project/documents/:document/status", s.updateDocumentStatus)

	tenant.POST("/projects/:project/embeddings", s.createEmbedding)
	tenant.POST("/projects/:project/embeddings/batch", s.createEmbeddingBatch)
	tenant.GET("/projects/:project/embeddings", s.listEmbeddings)
	tenant.GET("/projects/:project/embeddings/:chunk", s.getEmbedding)

	s.router = router
	return s
}

// Router returns the HTTP handler for serving.
func (s *Server) Router() http.Handler { return s.router }

// listOptions reads pagination controls from the query string. Page size
// is clamped downstream, never rejected here.
func listOptions(c *gin.Context) models.ListOptions {
	pageSize, _ := strconv.Atoi(c.Query("pageSize"))
	return models.ListOptions{
		PageSize:          pageSize,
		ContinuationToken: c.Query("continuationToken"),
	}
}
