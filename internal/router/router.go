package router

import (
	"github.com/blues/trs/internal/handler"
	"github.com/blues/trs/internal/logic"
	"github.com/gin-gonic/gin"
)

func Setup(claimLogic *logic.ClaimLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "task-reward-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 用户领取路由
		claimHandler := handler.NewClaimHandler(claimLogic)
		claims := v1.Group("/claims")
		{
			claims.POST("/:kind", claimHandler.SubmitClaim)
			claims.GET("/:kind/status", claimHandler.GetClaimStatus)
		}

		// 管理端路由
		adminHandler := handler.NewAdminHandler(claimLogic)
		admin := v1.Group("/admin/claims")
		{
			admin.POST("/:kind", adminHandler.AddClaim)
			admin.POST("/:kind/:id/advance", adminHandler.AdvanceClaim)
			admin.GET("/:kind", adminHandler.ListClaims)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Admin-Address")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
