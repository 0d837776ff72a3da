package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由，aiLimit 只挂在调用模型的路由上
func RegisterV1Routes(v1 *gin.RouterGroup, h Handlers, aiLimit gin.HandlerFunc) {
	// 项目
	projects := v1.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:pid", h.Project.GetProject)
		projects.PUT("/:pid", h.Project.UpdateProject)
		projects.DELETE("/:pid", h.Project.DeleteProject)

		projects.GET("/:pid/volumes", h.Volume.ListVolumes)
		projects.POST("/:pid/volumes", h.Volume.CreateVolume)

		projects.GET("/:pid/chapters", h.Chapter.ListChapters)
		projects.POST("/:pid/chapters", h.Chapter.CreateChapter)

		projects.GET("/:pid/characters", h.Character.ListCharacters)
		projects.POST("/:pid/characters", h.Character.CreateCharacter)

		projects.GET("/:pid/world-elements", h.WorldElement.ListWorldElements)
		projects.POST("/:pid/world-elements", h.WorldElement.CreateWorldElement)

		projects.GET("/:pid/clues", h.Clue.ListClues)
		projects.POST("/:pid/clues", h.Clue.CreateClue)

		projects.POST("/:pid/ai/world-skeleton", aiLimit, h.AI.WorldSkeleton)
	}

	// 卷
	volumes := v1.Group("/volumes")
	{
		volumes.PUT("/:vid", h.Volume.UpdateVolume)
		volumes.DELETE("/:vid", h.Volume.DeleteVolume)
	}

	// 章节
	chapters := v1.Group("/chapters")
	{
		chapters.GET("/:cid", h.Chapter.GetChapter)
		chapters.PUT("/:cid", h.Chapter.UpdateChapter)
		chapters.DELETE("/:cid", h.Chapter.DeleteChapter)
		chapters.GET("/:cid/characters", h.Chapter.ListChapterCharacters)

		chapters.POST("/:cid/ai/:action", aiLimit, h.AI.ChapterAction)
		chapters.POST("/:cid/analyze", aiLimit, h.AI.AnalyzeChapter)
	}

	// 角色
	characters := v1.Group("/characters")
	{
		characters.PUT("/:id", h.Character.UpdateCharacter)
		characters.DELETE("/:id", h.Character.DeleteCharacter)
		characters.POST("/:id/ai/improve", aiLimit, h.Character.ImproveCharacter)
	}

	// 世界观设定
	worldElements := v1.Group("/world-elements")
	{
		worldElements.PUT("/:id", h.WorldElement.UpdateWorldElement)
		worldElements.DELETE("/:id", h.WorldElement.DeleteWorldElement)
	}

	// 伏笔
	clues := v1.Group("/clues")
	{
		clues.PUT("/:id", h.Clue.UpdateClue)
		clues.DELETE("/:id", h.Clue.DeleteClue)
	}

	// 生成与检索
	ai := v1.Group("/ai")
	{
		ai.POST("/generate", aiLimit, h.AI.Generate)
		ai.GET("/models", h.AI.ListModels)
		ai.POST("/search", aiLimit, h.AI.Search)
	}
}
