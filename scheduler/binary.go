package scheduler

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pliqo-backend/models"
	"pliqo-backend/store"
)

// BinarySimTask builds the tick function of the educational binary
// options simulation: one random CALL/PUT per tick, logged to the
// store. It never touches a real exchange.
func BinarySimTask(st store.Store, log *zap.Logger, userID, symbol string) func(ctx context.Context) {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context) {
		direction := "CALL"
		var b [1]byte
		if _, err := rand.Read(b[:]); err == nil && b[0]&1 == 1 {
			direction = "PUT"
		}

		err := st.Update(ctx, func(d *store.Data) error {
			d.BotLogs = append(d.BotLogs, models.BotLog{
				ID:        uuid.NewString(),
				Bot:       models.BotKindBinary,
				UserID:    userID,
				Symbol:    symbol,
				Direction: direction,
				Reason:    "Simulado (educativo)",
				CreatedAt: time.Now().UTC(),
			})
			return nil
		})
		if err != nil {
			log.Warn("binary bot tick failed",
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
}
