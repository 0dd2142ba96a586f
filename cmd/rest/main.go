package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"whatsapp-tracking-be/internal/bootstrap"
	"whatsapp-tracking-be/internal/config"
	"whatsapp-tracking-be/internal/server"
	"whatsapp-tracking-be/internal/tracer"
	"whatsapp-tracking-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database (optional; pipeline runs without persistence)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Queue Consumers
	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()
	if err := container.ConsumerService.Start(consumerCtx); err != nil {
		log.Panicf("Unable to start queue consumers: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server, shut down in order on SIGINT/SIGTERM: stop accepting
	// messages, flush open sessions into the queue, let consumers drain,
	// then close the queue.
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}

		flushed := container.Correlator.FlushAll()
		log.Printf("Flushed %d active sessions", flushed)

		if !container.Queue.Drain(10 * time.Second) {
			log.Println("Queue did not drain fully before close")
		}
		if err := container.Queue.Close(); err != nil {
			log.Printf("Queue close error: %v", err)
		}
		container.Logger.Sync()
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
