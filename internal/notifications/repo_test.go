package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/dbtest"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

func TestDeleteOlderThanKeepsUnreadAndRecent(t *testing.T) {
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	now := time.Now().UTC()
	old := now.Add(-45 * 24 * time.Hour)
	userID := uuid.New()

	seed := func(createdAt time.Time, readAt *time.Time) uuid.UUID {
		n := models.Notification{
			UserID:    userID,
			Type:      enums.NotificationTypeOrder,
			Title:     "Order update",
			Message:   "Your order changed",
			ReadAt:    readAt,
			CreatedAt: createdAt,
		}
		require.NoError(t, conn.Create(&n).Error)
		return n.ID
	}
	seed(old, &old)
	unread := seed(old, nil)
	recent := seed(now, &now)

	deleted, err := repo.DeleteOlderThan(context.Background(), nil, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	var remaining []uuid.UUID
	require.NoError(t, conn.Model(&models.Notification{}).Order("created_at ASC").Pluck("id", &remaining).Error)
	require.ElementsMatch(t, []uuid.UUID{unread, recent}, remaining)
}
