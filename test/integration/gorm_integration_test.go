package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"whatsapp-tracking-be/internal/entity"
	"whatsapp-tracking-be/internal/repository/implementation"
	"whatsapp-tracking-be/pkg/correlate"
	"whatsapp-tracking-be/pkg/database"
	"whatsapp-tracking-be/pkg/extract"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	resultRepo := implementation.NewProcessingResultRepository(gormDB)
	deadLetterRepo := implementation.NewDeadLetterRepository(gormDB)
	ctx := context.Background()

	t.Run("Check Processing Result Repository", func(t *testing.T) {
		name := "Integration Test"
		mobile := "919876543210"
		sessionId := "integration-" + uuid.NewString()

		result := &entity.ProcessingResult{
			Id:           uuid.New(),
			SessionId:    sessionId,
			SenderNumber: "919876543210",
			PushName:     "Tester",
			Extracted: extract.Lead{
				Name:       &name,
				Mobile:     &mobile,
				Confidence: 0.91,
			},
			RawMessages: []correlate.Message{
				{Id: uuid.NewString(), SenderId: "919876543210@s.whatsapp.net", Text: "hello", Timestamp: time.Now().UnixMilli()},
			},
			CombinedText: "hello",
			ProcessedAt:  time.Now(),
			Status:       entity.StatusProcessed,
		}

		require.NoError(t, resultRepo.Create(ctx, result))

		found, err := resultRepo.FindBySessionId(ctx, sessionId)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, entity.StatusProcessed, found.Status)
		require.NotNil(t, found.Extracted.Mobile)
		assert.Equal(t, mobile, *found.Extracted.Mobile)
		assert.Len(t, found.RawMessages, 1)

		count, err := resultRepo.CountByStatus(ctx, entity.StatusProcessed)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(1))

		// Cleanup
		gormDB.Exec("DELETE FROM processing_results WHERE session_id = ?", sessionId)
	})

	t.Run("Check Dead Letter Repository", func(t *testing.T) {
		sessionId := "integration-" + uuid.NewString()

		dl := &entity.DeadLetter{
			Id:              uuid.New(),
			SessionId:       sessionId,
			OriginalPayload: []byte(`{"session_id":"` + sessionId + `"}`),
			ErrorMessage:    "extractor unavailable",
			Timestamp:       time.Now(),
		}

		require.NoError(t, deadLetterRepo.Create(ctx, dl))

		recent, err := deadLetterRepo.FindRecent(ctx, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, recent)

		count, err := deadLetterRepo.Count(ctx)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, count, int64(1))

		// Cleanup
		gormDB.Exec("DELETE FROM pipeline_dead_letters WHERE session_id = ?", sessionId)
	})
}
