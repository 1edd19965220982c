package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat        *ChatHandler
	Search      *SearchHandler
	Diagnostics *DiagnosticHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	llm := api.Group("/llm")
	llm.POST("/chat", deps.Chat.Chat)
	llm.POST("/debug", deps.Chat.Debug)

	api.POST("/search", deps.Search.Search)
	api.POST("/search/advanced", deps.Search.Advanced)
	api.POST("/search/structured", deps.Search.Structured)
	api.GET("/search/last-context", deps.Search.LastContext)
	api.GET("/search/raw-results", deps.Search.RawResults)

	debug := api.Group("/debug")
	debug.POST("/search", deps.Diagnostics.DebugSearch)
	debug.GET("/heartbeat", deps.Diagnostics.Heartbeat)
	debug.GET("/collections", deps.Diagnostics.Collections)
}
