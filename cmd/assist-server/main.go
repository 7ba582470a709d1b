// cmd/assist-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	commonaws "campus-assist/internal/common/aws"
	"campus-assist/internal/common/config"
	"campus-assist/internal/common/database"
	"campus-assist/internal/common/logger"
	"campus-assist/internal/common/observability"

	"campus-assist/internal/clients/genai"
	"campus-assist/internal/notify"
	"campus-assist/internal/pipeline"
	"campus-assist/internal/pipeline/admission"
	"campus-assist/internal/pipeline/classify"
	"campus-assist/internal/pipeline/enhance"
	"campus-assist/internal/pipeline/generation"
	"campus-assist/internal/pipeline/promptbuild"
	"campus-assist/internal/pipeline/recorder"
	"campus-assist/internal/pipeline/retrieval"
	"campus-assist/internal/server"
	"campus-assist/internal/session"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assist server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
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

	// --- Init rate limit store ---
	var admissionStore admission.Store
	if cfg.RateLimit.Store == "redis" {
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

		admissionStore = admission.NewRedisStore(redis.Client)
	} else {
		admissionStore = admission.NewMemoryStore(nil)
		zapLog.Info("Using in-memory rate limit store")
	}

	// --- Init model gateway clients ---
	generationClient := genai.NewClient(&genai.Config{
		BaseURL:     cfg.Generation.BaseURL,
		APIKey:      cfg.Generation.APIKey,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		Timeout:     config.GetDuration(cfg.Generation.Timeout),
	}, log)

	embeddingClient := genai.NewClient(&genai.Config{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		Timeout: config.GetDuration(cfg.Embedding.Timeout),
	}, log)

	// --- Init escalation notifier ---
	var notifier *notify.Notifier
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		var email notify.EmailSender
		var sms notify.SMSSender

		if cfg.Notifications.Email.Enabled {
			sesClient, err := commonaws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("ses client init failed", zap.Error(err))
			}
			email = sesClient
		}
		if cfg.Notifications.SMS.Enabled {
			snsClient, err := commonaws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				zapLog.Fatal("sns client init failed", zap.Error(err))
			}
			sms = snsClient
		}

		notifier = notify.NewNotifier(&notify.Config{
			EmailEnabled: cfg.Notifications.Email.Enabled,
			EmailFrom:    cfg.Notifications.Email.FromEmail,
			EmailTo:      cfg.Notifications.Email.ToEmail,
			SMSEnabled:   cfg.Notifications.SMS.Enabled,
			SMSToPhone:   cfg.Notifications.SMS.ToPhone,
		}, email, sms, log)
		zapLog.Info("Escalation notifier initialized")
	}

	// --- Assemble pipeline stages ---
	admissionCtrl := admission.NewController(&admission.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	}, admissionStore, log)

	retriever := retrieval.NewRetriever(&retrieval.Config{
		TopK:           cfg.Retrieval.TopK,
		ScoreThreshold: cfg.Retrieval.ScoreThreshold,
		Timeout:        config.GetDuration(cfg.Retrieval.Timeout),
	}, embeddingClient, retrieval.NewElasticsearchIndex(esClient, cfg.Retrieval.Index), log)

	assembler := promptbuild.NewAssembler(&promptbuild.Config{
		Budget:      cfg.Prompt.Budget,
		Institution: cfg.Prompt.Institution,
	}, log)

	invoker := generation.NewInvoker(&generation.Config{
		Timeout:     config.GetDuration(cfg.Generation.Timeout),
		MaxAttempts: cfg.Generation.MaxAttempts,
		MaxTokens:   cfg.Generation.MaxTokens,
	}, generationClient, log)

	enhancer := enhance.NewEnhancer(&enhance.Config{
		Threshold:         cfg.Quality.Threshold,
		MaxReplyChars:     cfg.Quality.MaxReplyChars,
		EscalationContact: cfg.Quality.EscalationContact,
	}, enhance.NewHeuristicScorer(), log)

	rec := recorder.NewRecorder(&recorder.Config{
		QueueSize: cfg.Recorder.QueueSize,
	}, recorder.NewPostgresStore(pg.DB, cfg.Recorder.Table), log)
	defer rec.Close()

	history := session.NewMemoryStore(cfg.History.MaxTurns)

	var escalations pipeline.EscalationNotifier
	if notifier != nil {
		escalations = notifier
	}

	processor := pipeline.NewProcessor(
		&pipeline.Config{MessageDeadline: config.GetDuration(cfg.Server.MessageDeadline)},
		admissionCtrl,
		classify.NewKeywordClassifier(),
		retriever,
		assembler,
		invoker,
		enhancer,
		rec,
		history,
		escalations,
		log,
	)

	// --- Start HTTP server ---
	srv := server.New(&server.Config{
		AppName:       cfg.App.Name,
		ListenAddress: cfg.Server.ListenAddress,
		ShutdownGrace: config.GetDuration(cfg.Server.ShutdownGrace),
	}, processor, obs, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Assist server stopped")
}
