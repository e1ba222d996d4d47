package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/cart-backend/config"
	"github.com/ikkim/cart-backend/internal/app/controller"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
	"github.com/ikkim/cart-backend/internal/middleware"
)

type Router struct {
	cartController *controller.CartController
	config         *config.Config
}

func NewRouter(cartController *controller.CartController, cfg *config.Config) *Router {
	return &Router{
		cartController: cartController,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORS(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Cart API is running",
			"storage": r.config.Storage.Driver,
		})
	})

	carts := router.Group("/carts")
	{
		carts.POST("", r.cartController.CreateCart)
		carts.GET("/:cid", r.cartController.GetCart)
		carts.GET("/:cid/product/:pid", r.cartController.AddProduct)
		carts.PUT("/:cid", r.cartController.AppendProducts)
		carts.PUT("/:cid/products/:pid", r.cartController.SetProductQuantity)
		carts.DELETE("/:cid/products/:pid", r.cartController.RemoveProduct)
		carts.DELETE("/:cid", r.cartController.ClearProducts)
	}

	router.GET("/stats/carts", r.cartController.GetStats)

	router.NoRoute(func(c *gin.Context) {
		apperrors.RespondWithError(c, http.StatusNotFound, apperrors.RouteNotFound, "route not found")
	})

	return router
}
