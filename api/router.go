package api

import (
	"github.com/guessthegame/guess-the-game-backend/internal/moderation"
	"github.com/guessthegame/guess-the-game-backend/internal/rating"
	"github.com/guessthegame/guess-the-game-backend/internal/screenshot"
	"github.com/guessthegame/guess-the-game-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(user.LoadIdentityMiddleware())
	{
		// 截图相关的路由组 /api/screenshots
		screenshotRoutes := api.Group("/screenshots")
		{
			screenshotRoutes.GET("/last-added", screenshot.GetLastAddedHandler)
			screenshotRoutes.GET("/:id", screenshot.GetScreenshotHandler)
			screenshotRoutes.POST("/unsolved", screenshot.GetUnsolvedHandler)
			screenshotRoutes.POST("/prev-next", screenshot.PrevNextHandler)
			screenshotRoutes.POST("/proposal", screenshot.ProposalHandler)
			screenshotRoutes.POST("/rate", rating.RateHandler)
			screenshotRoutes.POST("", screenshot.AddScreenshotHandler)
			screenshotRoutes.POST("/edit", screenshot.EditScreenshotHandler)
			screenshotRoutes.POST("/remove", screenshot.RemoveScreenshotHandler)
		}

		// 审核相关的路由组 /api/moderation
		moderationRoutes := api.Group("/moderation")
		{
			moderationRoutes.GET("/pending", moderation.ListPendingHandler)
			moderationRoutes.POST("/approve", moderation.ApproveHandler)
			moderationRoutes.POST("/reject", moderation.RejectHandler)
		}

		// 用户相关的路由组 /api/user
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("", user.GetProfileHandler)
			userRoutes.POST("/update", user.UpdateHandler)
			userRoutes.POST("/unsubscribe", user.UnsubscribeHandler)
		}
	}
}
