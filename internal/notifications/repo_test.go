package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/enums"
)

func setupNotificationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS notifications (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  type TEXT NOT NULL,
  title TEXT NOT NULL,
  message TEXT NOT NULL,
  data TEXT,
  read_at DATETIME,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time, read bool) *models.Notification {
	t.Helper()

	notification := &models.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      enums.NotificationTypeOrderStatusChanged,
		Title:     "Order update",
		Message:   "Your order is being processed.",
		CreatedAt: created,
	}
	if read {
		readAt := created.Add(time.Minute)
		notification.ReadAt = &readAt
	}
	require.NoError(t, db.Create(notification).Error)
	return notification
}

func TestNotificationsListPagination(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	base := time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		seedNotification(t, db, userID, base.Add(time.Duration(i)*time.Minute), false)
	}
	// someone else's notification never leaks in
	seedNotification(t, db, uuid.New(), base, false)

	rows, next, err := repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	rows, next, err = repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 2, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, next)
}

func TestNotificationsListUnreadOnly(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	unread := seedNotification(t, db, userID, now, false)
	seedNotification(t, db, userID, now.Add(time.Minute), true)

	rows, _, err := repo.List(context.Background(), ListNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, unread.ID, rows[0].ID)

	count, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestNotificationsMarkRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	notification := seedNotification(t, db, userID, time.Now().UTC(), false)

	mark, err := repo.MarkRead(context.Background(), userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, mark.Updated)
	assert.True(t, mark.Found)

	// marking again finds the row but changes nothing
	mark, err = repo.MarkRead(context.Background(), userID, notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, mark.Updated)
	assert.True(t, mark.Found)

	// a different user cannot touch it
	mark, err = repo.MarkRead(context.Background(), uuid.New(), notification.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, mark.Found)
}

func TestNotificationsMarkAllRead(t *testing.T) {
	db := setupNotificationsTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	now := time.Now().UTC()
	seedNotification(t, db, userID, now, false)
	seedNotification(t, db, userID, now.Add(time.Second), false)
	seedNotification(t, db, userID, now.Add(2*time.Second), true)

	updated, err := repo.MarkAllRead(context.Background(), userID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	count, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
