package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messaging-service/internal/config"
	"messaging-service/internal/db"
	"messaging-service/internal/fanout"
	"messaging-service/internal/handlers"
	"messaging-service/internal/identity"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
	"messaging-service/internal/repositories"
	"messaging-service/internal/telemetry"
)

const serviceName = "messaging-service"

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	if err := db.ProvisionDefaultRooms(database); err != nil {
		log.Fatalf("failed to provision rooms: %v", err)
	}

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Env)
		if err != nil {
			log.Fatalf("failed to init tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	var audit *telemetry.AuditEmitter
	if cfg.AMQPURL != "" {
		publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("amqp disabled: %v", err)
		} else {
			defer publisher.Close()
			observability.SetPublisher(publisher)
			audit = telemetry.NewAuditEmitter(publisher, observability.AuditRoutingKey, serviceName, cfg.Env)
			log.Printf("amqp connected exchange=%s", cfg.AMQPExchange)
		}
	}

	resolver := identity.NewJWTResolver(cfg.AuthJWTSecret)

	roomRepo := repositories.NewRoomRepo(database)
	roomMessageRepo := repositories.NewRoomMessageRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	conversationMessageRepo := repositories.NewConversationMessageRepo(database)

	hub := fanout.NewHub()
	defer hub.Close()

	roomsHandler := handlers.NewRoomsHandler(roomRepo, audit)
	roomMessagesHandler := handlers.NewRoomMessagesHandler(roomRepo, roomMessageRepo, hub, audit)
	conversationsHandler := handlers.NewConversationsHandler(conversationRepo, conversationMessageRepo, audit)
	roomStream := fanout.NewRoomStreamHandler(hub, roomRepo, resolver)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	requireIdentity := middleware.RequireIdentity(resolver)
	optionalIdentity := middleware.OptionalIdentity(resolver)

	router.GET("/chat/rooms", optionalIdentity, roomsHandler.ListRooms)
	router.POST("/chat/rooms/pin", requireIdentity, roomsHandler.SetPin)
	router.GET("/chat/rooms/:slug/messages", optionalIdentity, roomMessagesHandler.History)
	router.POST("/chat/rooms/:slug/messages", requireIdentity, roomMessagesHandler.Send)
	router.GET("/ws/chat/rooms/:slug", roomStream.Handle)

	router.GET("/marketplace/conversations/:id", requireIdentity, conversationsHandler.Get)
	router.GET("/marketplace/conversations/:id/messages", requireIdentity, conversationsHandler.History)
	router.POST("/marketplace/conversations/:id/messages", requireIdentity, conversationsHandler.Send)

	// Called by the order-placement workflow; deployments keep this route
	// off the public ingress.
	router.POST("/internal/marketplace/conversations", conversationsHandler.CreateForOrder)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	handlers.RegisterDebugRoutes(router, audit, hub, cfg.DebugRoutes)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
