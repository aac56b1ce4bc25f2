package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Query     *QueryHandler
	Ingest    *IngestHandler
	Documents *DocumentHandler
	Files     *FileHandler
	Health    *HealthHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Health.Check)

	api.GET("/presign", deps.Ingest.PresignGet)
	api.POST("/presign", deps.Ingest.PresignPost)
	api.POST("/upload", deps.Ingest.Upload)
	api.POST("/ingest", deps.Ingest.Ingest)

	api.POST("/ask", deps.Query.Ask)
	api.GET("/search", deps.Query.Search)
	api.POST("/quiz", deps.Query.Quiz)
	api.POST("/cram-plan", deps.Query.CramPlan)

	api.GET("/docs", deps.Documents.List)
	api.GET("/docs/:id", deps.Documents.Get)

	api.GET("/files/:key", deps.Files.Get)
}
