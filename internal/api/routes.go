package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"atsResume/internal/analysis"
	"atsResume/internal/resume"
	"atsResume/internal/store"
)

// Dependencies 汇总路由所需的组件。Queue/Storage 为 nil 时不注册归档接口，Redis 为 nil 时不注册 /ws。
type Dependencies struct {
	Store          *store.Store
	Catalog        *resume.Catalog
	Dictionary     resume.Dictionary
	Analyzer       *analysis.Analyzer
	Queue          taskEnqueuer
	Storage        archiveStorage
	RateCounter    redisRateCounter
	Redis          pubsubSubscriber
	StoreKey       string
	MaxRetry       int
	AllowedOrigins []string
	Logger         *slog.Logger
}

// RegisterRoutes 注册 /v1 下的业务路由。
func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	resumeHandler := NewResumeHandler(deps.Store)
	templateHandler := NewTemplateHandler(deps.Catalog)
	analysisHandler := NewAnalysisHandler(deps.Analyzer)
	suggestionHandler := NewSuggestionHandler(deps.Store, deps.Dictionary)

	v1 := router.Group("/v1")
	{
		resumeGroup := v1.Group("/resume")
		{
			resumeGroup.GET("", resumeHandler.GetResume)
			resumeGroup.PATCH("", resumeHandler.PatchResume)
			resumeGroup.POST("/reset", resumeHandler.Reset)
			resumeGroup.GET("/score", resumeHandler.GetScore)
			resumeGroup.PUT("/template", resumeHandler.ChangeTemplate)

			resumeGroup.POST("/sections/move", resumeHandler.MoveSection)
			resumeGroup.PATCH("/sections/:id", resumeHandler.PatchSection)
			resumeGroup.POST("/sections/:id/items", resumeHandler.AddItem)
			resumeGroup.POST("/sections/:id/items/move", resumeHandler.MoveItem)
			resumeGroup.DELETE("/sections/:id/items/:index", resumeHandler.RemoveItem)
			resumeGroup.POST("/sections/:id/items/:index/improve", resumeHandler.ImproveItem)

			if deps.Queue != nil && deps.Storage != nil {
				archiveHandler := NewArchiveHandler(deps.Store, deps.Queue, deps.Storage, deps.RateCounter, deps.StoreKey, deps.MaxRetry)
				resumeGroup.POST("/archive", archiveHandler.CreateArchive)
				resumeGroup.GET("/archives", archiveHandler.ListArchives)
			}
		}

		v1.GET("/templates", templateHandler.ListTemplates)
		v1.GET("/templates/:id", templateHandler.GetTemplate)

		v1.POST("/analysis", analysisHandler.Analyze)
		v1.GET("/analysis/latest", analysisHandler.Latest)

		v1.GET("/suggestions/summary", suggestionHandler.Summary)
		v1.GET("/suggestions/skills", suggestionHandler.Skills)

		if deps.Redis != nil {
			wsHandler := NewWsHandler(deps.Redis, deps.Store, deps.StoreKey, deps.Logger, deps.AllowedOrigins)
			v1.GET("/ws", wsHandler.HandleConnection)
		}
	}
}
