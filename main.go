package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alibukhari13/slack-attendance/config"
	"github.com/alibukhari13/slack-attendance/controller"
	"github.com/alibukhari13/slack-attendance/entity"
	"github.com/alibukhari13/slack-attendance/ingest"
	"github.com/alibukhari13/slack-attendance/middleware"
	"github.com/alibukhari13/slack-attendance/platform"
	"github.com/alibukhari13/slack-attendance/service"
	"github.com/alibukhari13/slack-attendance/utils"
	"github.com/alibukhari13/slack-attendance/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	utils.SetSecret(cfg.JWTSecret)

	r := gin.Default()

	// init DB (SQLite via GORM)
	log.Printf("Opening SQLite database file %s", cfg.DBFile)
	db, err := gorm.Open(sqlite.Open(cfg.DBFile), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to open sqlite db: %v", err)
	}

	if err := db.AutoMigrate(
		&entity.Operator{},
		&entity.Identity{},
		&entity.AttendanceRecord{},
		&entity.WatchedChannel{},
	); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	// init redis
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	// services
	opSvc := service.NewOperatorService(db)
	identSvc := service.NewIdentityService(db)
	attSvc := service.NewAttendanceService(db)
	watchSvc := service.NewWatchService(db)

	// ws hub (init before controllers needing it)
	hub := ws.NewHub(rdb)

	// controllers
	authCtrl := controller.NewAuthController(opSvc)
	identCtrl := controller.NewIdentityController(identSvc)
	relayCtrl := controller.NewRelayController(identSvc, hub, cfg, nil)
	attCtrl := controller.NewAttendanceController(attSvc)
	watchCtrl := controller.NewWatchController(watchSvc)

	r.POST("/signup", authCtrl.SignUp)
	r.POST("/login", authCtrl.Login)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware())

	protected.POST("/identities", identCtrl.Enroll)
	protected.GET("/identities", identCtrl.List)
	protected.DELETE("/identities/:id", identCtrl.Remove)

	protected.POST("/relay/chats", relayCtrl.ListChats)
	protected.POST("/relay/open", relayCtrl.OpenChat)
	protected.GET("/relay/messages", relayCtrl.GetMessages)
	protected.POST("/relay/send", relayCtrl.Send)
	protected.POST("/relay/edit", relayCtrl.Edit)
	protected.POST("/relay/delete", relayCtrl.Delete)
	protected.POST("/relay/close", relayCtrl.Close)

	protected.GET("/attendance/date/:date", attCtrl.ByDate)
	protected.GET("/attendance/user/:userID", attCtrl.ByUser)
	protected.POST("/watches", watchCtrl.Create)
	protected.GET("/watches", watchCtrl.List)
	protected.DELETE("/watches/:id", watchCtrl.Remove)

	// ws endpoint
	r.GET("/ws", func(c *gin.Context) {
		ws.ServeWS(hub, c)
	})

	// attendance ingestion off the watched channels
	if cfg.BotToken != "" {
		poller := ingest.NewPoller(platform.NewSlack(cfg.BotToken), watchSvc, attSvc, cfg.IngestInterval)
		go poller.Run(context.Background())
	} else {
		log.Println("SLACK_BOT_TOKEN not set; attendance ingestion disabled")
	}

	log.Printf("Starting server on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
