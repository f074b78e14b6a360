package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"socialfeed/config"
	"socialfeed/database"
	"socialfeed/feed"
	"socialfeed/handlers"
	"socialfeed/images"
	"socialfeed/middleware"
	"socialfeed/notifier"
	"socialfeed/push"
	"socialfeed/routes"
	"socialfeed/store"
	"socialfeed/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("🚀 Starting social feed server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Invalid configuration: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("🔌 Connecting to MongoDB...")
	db, err := database.ConnectWithRetry(ctx, cfg.MongoURI, cfg.MongoDatabase, 3)
	if err != nil {
		log.Fatal("❌ Failed to connect to MongoDB: ", err)
	}
	defer db.Disconnect()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal("❌ Failed to create indexes: ", err)
	}
	log.Println("✅ MongoDB ready")

	// ===== GIN MODE =====
	if cfg.Release() {
		gin.SetMode(gin.ReleaseMode)
		log.Println("⚙️ Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("⚙️ Running in DEBUG mode")
	}

	// ===== FEED =====
	events := notifier.New(64)
	posts := store.NewPosts(db.Posts)

	h := &handlers.Handler{
		Users:     store.NewUsers(db.Users),
		JWTSecret: cfg.JWTSecret,
	}

	if google := handlers.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL); google != nil {
		h.Google = google
		log.Println("✅ Google sign-in configured")
	} else {
		log.Println("⚠️ Google sign-in not configured, set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
	}

	var remover feed.ImageRemover
	if host, err := images.NewFromURL(cfg.CloudinaryURL, cfg.CloudinaryFolder); err != nil {
		log.Printf("⚠️ Image uploads disabled: %v", err)
	} else {
		h.Images = host
		remover = host
	}
	h.Feed = feed.New(posts, events, remover, cfg.FeedPageSize)

	// ===== PUSH =====
	if !cfg.PushEnabled() && !cfg.Release() {
		pub, priv, err := push.GenerateKeys()
		if err == nil {
			cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey = pub, priv
			log.Println("⚠️ Generated temporary VAPID keys, run cmd/vapidkeys and set them in .env for stable subscriptions")
		}
	}
	if cfg.PushEnabled() {
		subs := store.NewPushSubscriptions(db.PushSubs)
		h.Push = subs
		h.VAPIDPublicKey = cfg.VAPIDPublicKey
		sink := push.NewSink(subs, events, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber)
		go sink.Run(ctx)
		log.Println("✅ Push notifications enabled")
	}

	// ===== WEBSOCKET =====
	log.Println("🔌 Initializing WebSocket manager...")
	wsManager := websocket.NewManager(events, middleware.VerifyToken(cfg.JWTSecret))
	go wsManager.Start(ctx)

	// ===== ROUTER =====
	router := routes.SetupRouter(h, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute),
		WebSocket:   wsManager.Handler(),
		Ping:        db.Ping,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("🌐 Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Server error: ", err)
		}
	}()

	log.Println("✅ Server is ready and accepting connections")

	// ===== GRACEFUL SHUTDOWN =====
	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("❌ Forced shutdown:", err)
	}

	log.Println("👋 Server stopped gracefully")
}
