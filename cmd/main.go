package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Polemos/config"
	"github.com/lshigami/Polemos/database"
	_ "github.com/lshigami/Polemos/docs" // Swagger docs
	"github.com/lshigami/Polemos/internal/catalog"
	"github.com/lshigami/Polemos/internal/controller"
	"github.com/lshigami/Polemos/internal/logger"
	"github.com/lshigami/Polemos/internal/model"
	"github.com/lshigami/Polemos/internal/repository"
	"github.com/lshigami/Polemos/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Polemos Debate Practice API
// @version 1.0
// @description Gamified debate practice: argue a position, get AI-scored rubric feedback, earn XP, level up, unlock achievements.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			NewCatalog,
			NewEvaluator,
			NewProgression,
		),

		fx.Provide(
			repository.NewUserRepository,
			repository.NewAnswerRepository,
			repository.NewAchievementRepository,
			repository.NewVisitRepository,
		),

		fx.Provide(
			service.NewGuardService,
			service.NewAchievementService,
			service.NewMergeService,
			service.NewAuthService,
			service.NewSubmissionService,
			service.NewProfileService,
			service.NewUnavailableTranscriber,
			service.NewTranscriptionService,
		),

		fx.Provide(controller.NewController),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", controller.HeaderAnonymousID},
		ExposeHeaders:    []string{"Content-Length", controller.HeaderAnonymousID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func NewCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Load(cfg.CatalogPath)
}

// NewEvaluator selects the scoring backend: the Gemini-backed evaluator by
// default, the deterministic offline one when configured for it.
func NewEvaluator(cfg *config.Config) (service.Evaluator, error) {
	if cfg.Evaluation.UseDummy {
		log.Info().Msg("Using offline dummy evaluator")
		return service.NewDummyEvaluator(), nil
	}
	return service.NewGeminiEvaluator(cfg)
}

func NewProgression(cfg *config.Config) service.ProgressionService {
	return service.NewProgressionService(service.DefaultLevels(), cfg.Evaluation.RelevanceMinScore)
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	ctrl *controller.Controller,
) {
	ctrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Polemos API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB, achievementRepo repository.AchievementRepository) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Answer{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.Visit{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}

	if err := achievementRepo.UpsertCatalog(service.AchievementCatalog()); err != nil {
		log.Error().Err(err).Msg("Failed to seed achievement catalog")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
