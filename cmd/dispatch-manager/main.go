// cmd/dispatch-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"card-dispatch/internal/common/config"
	"card-dispatch/internal/common/database"
	"card-dispatch/internal/common/logger"
	"card-dispatch/internal/common/observability"
	"card-dispatch/internal/dispatch"
	"card-dispatch/internal/gallery"
	"card-dispatch/internal/guests"
	"card-dispatch/internal/server"
	"card-dispatch/internal/transport"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dispatch manager...")

	obs := observability.New("dispatch-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Transports ---
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Transports.AWS.Region))
	if err != nil {
		zapLog.Fatal("aws config load failed", zap.Error(err))
	}

	registry := transport.NewRegistry()
	if cfg.Transports.AWS.SES.Enabled {
		sesTransport := transport.NewSESTransport(
			ses.NewFromConfig(awsCfg), cfg.Transports.AWS.SES.FromEmail, log)
		registry.Register(guests.ChannelEmail, sesTransport)
		zapLog.Info("SES email transport registered")
	}
	if cfg.Transports.AWS.SNS.Enabled {
		snsTransport := transport.NewSNSTransport(
			sns.NewFromConfig(awsCfg), cfg.Transports.AWS.SNS.DefaultSenderID, log)
		registry.Register(guests.ChannelChat, snsTransport)
		registry.Register(guests.ChannelMMS, snsTransport)
		zapLog.Info("SNS chat/mms transport registered")
	}

	// --- Supporting stores ---
	guestStore := guests.NewStore(pg.DB, log)
	galleryStore := gallery.NewStore(redis.Client, log)

	mirror := dispatch.NewRedisMirror(redis.Client,
		time.Duration(cfg.Dispatch.SnapshotTTL)*time.Second, log)
	deliveryLog := dispatch.NewDeliveryLog(esClient.Client,
		cfg.Database.Elasticsearch.DeliveryLogIndex, log)

	// --- Orchestrator ---
	orch := dispatch.NewOrchestrator(registry, log, obs, dispatch.Options{
		Workers:     cfg.Dispatch.Workers,
		QueueSize:   cfg.Dispatch.QueueSize,
		SendTimeout: time.Duration(cfg.Dispatch.SendTimeout) * time.Millisecond,
		Mirror:      mirror,
		Log:         deliveryLog,
	})
	orch.Start()

	// --- HTTP Server ---
	api := server.New(orch, guestStore, galleryStore, log)
	mux := api.Routes()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: mux,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping dispatch workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	orch.Stop()

	zapLog.Info("Dispatch manager stopped gracefully")
}
