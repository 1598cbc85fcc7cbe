package main

import (
	"context"
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jyush98/jason-co-ecom/config"
	"github.com/jyush98/jason-co-ecom/logger"
	"github.com/jyush98/jason-co-ecom/middleware"
	"github.com/jyush98/jason-co-ecom/models"
	"github.com/jyush98/jason-co-ecom/notifications"
	"github.com/jyush98/jason-co-ecom/payments"
	"github.com/jyush98/jason-co-ecom/routes"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	log := logger.Get()
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Collection{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.WishlistItem{},
		&models.NotificationPreference{},
		&models.CustomOrder{},
		&models.CustomOrderImage{},
		&models.CustomOrderMilestone{},
		&models.UserAddress{},
		&models.UserSetting{},
		&models.ContactInquiry{},
		&models.ConsultationBooking{},
	); err != nil {
		log.Fatal("auto-migration failed", zap.Error(err))
	}

	gateway := payments.NewStripeClient(cfg.StripeSecretKey, cfg.StripeAPIBase)
	mailer := notifications.NewResendClient(cfg.ResendAPIKey, cfg.ResendAPIBase, cfg.EmailFrom)

	queue, err := buildQueue(cfg, log)
	if err != nil {
		log.Fatal("failed to set up notification queue", zap.Error(err))
	}
	defer queue.Close()

	dispatcher := notifications.NewDispatcher(db, mailer, log)
	worker := notifications.NewWorker(db, queue, dispatcher, log)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	go func() {
		if err := worker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("notification worker stopped", zap.Error(err))
		}
	}()

	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.Metrics())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadDir)

	routes.SetupRoutes(r, routes.Deps{
		DB:      db,
		Cfg:     cfg,
		Gateway: gateway,
		Mailer:  mailer,
		Queue:   queue,
		Log:     log,
	})

	log.Info("server starting", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

// buildQueue picks the broker-backed queue when one is configured and falls
// back to the in-process channel queue otherwise.
func buildQueue(cfg *config.Config, log *zap.Logger) (notifications.Queue, error) {
	if cfg.RabbitMQURL == "" {
		log.Info("using in-process notification queue")
		return notifications.NewChannelQueue(256), nil
	}
	log.Info("using RabbitMQ notification queue", zap.String("queue", cfg.NotificationQueue))
	return notifications.NewRabbitQueue(cfg.RabbitMQURL, cfg.NotificationQueue)
}
