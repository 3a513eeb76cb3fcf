package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/catalog"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/checkout"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/gateway"
	h "github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/http"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/lock"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/publisher"
	"github.com/aravind-ask/NewLearn-MERN-LMS-sub000/internal/repository"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	HTTPPort        string
	MongoURI        string
	MongoDBName     string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	GatewayURL      string
	GatewayKeyID    string
	GatewaySecret   string
	Currency        string
	LockTTL         time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "learndb"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    splitCSV(getEnv("KAFKA_BROKERS", "localhost:9092")),
		GatewayURL:      getEnv("GATEWAY_URL", "https://api.razorpay.com"),
		GatewayKeyID:    getEnv("GATEWAY_KEY_ID", ""),
		GatewaySecret:   getEnv("GATEWAY_KEY_SECRET", ""),
		Currency:        getEnv("CURRENCY", "INR"),
		LockTTL:         getDuration("LOCK_TTL", 15*time.Second),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("invalid duration for %s, using default %v", key, defaultValue)
	}
	return defaultValue
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func main() {
	cfg := loadConfig()

	// Set up MongoDB connection
	ctx := context.Background()
	mongoDB, err := repository.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	if err := repository.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create storage indexes: %v", err)
	}
	if err := lock.EnsureIndexes(ctx, mongoDB); err != nil {
		log.Fatalf("Failed to create reservation indexes: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	paymentRepo := repository.NewMongoPaymentRepository(mongoDB)
	enrollmentRepo := repository.NewMongoEnrollmentRepository(mongoDB)
	txRunner := repository.NewTxRunner(mongoDB)
	lockManager := lock.NewMongoManager(mongoDB)

	courseCatalog := catalog.NewCachedCatalog(
		catalog.NewMongoCatalog(mongoDB),
		catalog.NewRedisCache(redisClient),
	)

	gatewayClient := gateway.NewRazorpayClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewaySecret)

	enrollmentPublisher := publisher.NewEnrollmentPublisher(cfg.KafkaBrokers...)
	defer enrollmentPublisher.Close()

	service := checkout.NewService(
		lockManager,
		paymentRepo,
		enrollmentRepo,
		courseCatalog,
		gatewayClient,
		txRunner,
		cfg.LockTTL,
		cfg.Currency,
	).WithNotifier(enrollmentPublisher)

	paymentsHandler := h.NewPaymentsHandler(service, courseCatalog, cfg.RequestTimeout)
	router := h.NewRouter(paymentsHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Checkout API starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
		log.Printf("failed to disconnect MongoDB: %v", err)
	}
	log.Println("server exited")
}
