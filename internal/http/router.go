package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/fire-triage/backend/internal/config"
	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/geocode"
	"github.com/fire-triage/backend/internal/http/handlers"
	"github.com/fire-triage/backend/internal/http/middleware"
	"github.com/fire-triage/backend/internal/queue"

	_ "github.com/fire-triage/backend/docs"
)

func Router(cfg config.Config, store *db.Store, publisher queue.Publisher, resolver *geocode.Resolver, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Store:     store,
		Queue:     publisher,
		Resolver:  resolver,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	{
		api.GET("/tickets", h.TicketsList)
		api.GET("/tickets/:id", h.TicketDetail)
		api.GET("/managers", h.ManagersList)
		api.GET("/offices", h.OfficesList)
		api.GET("/stats", h.Stats)
		api.POST("/nearest-office", h.NearestOffice)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/upload-csv", h.UploadTickets)
		admin.POST("/import/managers", h.ImportManagers)
		admin.POST("/tickets/:id/retry", h.RetryTicket)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
