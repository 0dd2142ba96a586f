package bootstrap

import (
	"context"
	"log"
	"time"

	"whatsapp-tracking-be/internal/config"
	"whatsapp-tracking-be/internal/controller"
	"whatsapp-tracking-be/internal/pkg/logger"
	"whatsapp-tracking-be/internal/pkg/mailer"
	"whatsapp-tracking-be/internal/repository/contract"
	"whatsapp-tracking-be/internal/repository/implementation"
	"whatsapp-tracking-be/internal/service"
	"whatsapp-tracking-be/internal/websocket"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/extract"
	pktNats "whatsapp-tracking-be/pkg/nats"
	"whatsapp-tracking-be/pkg/queue"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ConnectorController controller.IConnectorController
	PipelineController  controller.IPipelineController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Core pipeline pieces main.go needs for shutdown
	Correlator   *correlate.Correlator
	Queue        *queue.Queue
	WebSocketHub *websocket.Hub
	Logger       logger.ILogger
}

// NewContainer wires the whole pipeline once, explicitly. db may be nil:
// persistence is then disabled and results only flow through the queue and
// the live feed.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Loggers
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := logger.NewIsolatedLogger(cfg.App.PipelineLogFilePath)

	// 2. Queue
	q := queue.New(cfg.Pipeline.QueuePartitions, pipelineLogger)

	// 3. Publisher + Correlator (finalized sessions go straight to the queue)
	publisher := service.NewPipelinePublisher(
		q,
		cfg.Pipeline.SessionTopicName,
		cfg.Pipeline.ResultTopicName,
		cfg.Pipeline.DeadLetterTopicName,
		pipelineLogger,
	)

	correlator := correlate.NewCorrelator(correlate.Config{
		DefaultTimeout:        time.Duration(cfg.Pipeline.CorrelationTimeoutSeconds) * time.Second,
		MaxMessagesPerSession: cfg.Pipeline.MaxMessagesPerSession,
		OnSessionFinalized: func(record *correlate.FinalizedSession) {
			if err := publisher.PublishSession(record); err != nil {
				sysLogger.Error("Bootstrap", "Failed to enqueue finalized session", map[string]interface{}{
					"session_id": record.SessionId,
					"error":      err.Error(),
				})
			}
		},
	}, pipelineLogger)

	// 4. Extractor
	extractor, err := extract.NewLeadExtractor(
		cfg.Extractor.Provider,
		cfg.Extractor.OllamaModel,
		cfg.Extractor.OllamaBaseURL,
		cfg.Extractor.GeminiAPIKey,
		time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize extractor: %v", err)
	}
	log.Printf("[INFO] Using extractor provider: %s", cfg.Extractor.Provider)

	// 5. Repositories (nil when persistence is disabled)
	var resultRepo contract.ProcessingResultRepository
	var deadLetterRepo contract.DeadLetterRepository
	if db != nil {
		resultRepo = implementation.NewProcessingResultRepository(db)
		deadLetterRepo = implementation.NewDeadLetterRepository(db)
	} else {
		log.Println("[WARN] DB_CONNECTION_STRING not set, persistence disabled")
	}

	// 6. NATS (optional)
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// 7. Redis (optional, hub fanout)
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (hub fanout disabled)", err)
			rdb = nil
		}
	}

	// 8. WebSocket Hub
	wsHub := websocket.NewHub(rdb, pipelineLogger)
	go wsHub.Run()

	// 9. Mailer (optional)
	var alertMailer mailer.IAlertMailer
	if cfg.SMTP.Host != "" && cfg.SMTP.AlertEmail != "" {
		alertMailer = mailer.NewAlertMailer(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.Email,
			cfg.SMTP.SenderName,
			cfg.SMTP.AlertEmail,
		)
	}

	// 10. Services
	intakeService := service.NewIntakeService(correlator, cfg.Pipeline.AllowedSender, pipelineLogger)
	processingService := service.NewProcessingService(extractor, resultRepo, publisher, pipelineLogger)
	consumerService := service.NewConsumerService(
		q,
		cfg.Pipeline.SessionTopicName,
		cfg.Pipeline.ResultTopicName,
		cfg.Pipeline.DeadLetterTopicName,
		processingService,
		publisher,
		wsHub,
		natsPub,
		deadLetterRepo,
		alertMailer,
		pipelineLogger,
	)

	// 11. Controllers
	connectorController := controller.NewConnectorController(intakeService)
	pipelineController := controller.NewPipelineController(correlator, resultRepo, deadLetterRepo, wsHub)

	return &Container{
		ConnectorController: connectorController,
		PipelineController:  pipelineController,
		ConsumerService:     consumerService,
		Correlator:          correlator,
		Queue:               q,
		WebSocketHub:        wsHub,
		Logger:              sysLogger,
	}
}
