package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/willowmarket/willow-backend/internal/notifications"
	"github.com/willowmarket/willow-backend/pkg/config"
	"github.com/willowmarket/willow-backend/pkg/db/models"
	"github.com/willowmarket/willow-backend/pkg/email"
	"github.com/willowmarket/willow-backend/pkg/enums"
	"github.com/willowmarket/willow-backend/pkg/logger"
	"github.com/willowmarket/willow-backend/pkg/outbox"
	"github.com/willowmarket/willow-backend/pkg/outbox/payloads"
	"github.com/willowmarket/willow-backend/pkg/pagination"
)

type fakeDB struct{}

func (fakeDB) Ping(context.Context) error { return nil }

func (fakeDB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForDispatch(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if len(f.events) > limit {
		return f.events[:limit], nil
	}
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotificationsRepo struct {
	created   []models.Notification
	createErr error
}

func (f *fakeNotificationsRepo) WithTx(tx *gorm.DB) notifications.Repository {
	return f
}

func (f *fakeNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *notification)
	return nil
}

func (f *fakeNotificationsRepo) List(ctx context.Context, params notifications.ListNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeNotificationsRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notifications.MarkResult, error) {
	return notifications.MarkResult{}, nil
}

func (f *fakeNotificationsRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return 0, nil
}

type fakeEmailSender struct {
	requests []email.OrderUpdateRequest
	err      error
}

func (f *fakeEmailSender) SendOrderUpdate(ctx context.Context, req email.OrderUpdateRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

func mustEnvelope(t *testing.T, payload any) json.RawMessage {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return raw
}

func orderStatusEvent(t *testing.T, buyerID uuid.UUID) models.OutboxEvent {
	t.Helper()

	orderID := uuid.New()
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload: mustEnvelope(t, payloads.OrderStatusChangedEvent{
			OrderID:   orderID,
			BuyerID:   buyerID,
			OldStatus: enums.OrderStatusPending,
			NewStatus: enums.OrderStatusProcessing,
		}),
	}
}

func newTestService(t *testing.T, repo *fakeRepo, dlq *fakeDLQRepo, notifs *fakeNotificationsRepo, sender *fakeEmailSender) *Service {
	t.Helper()

	service, err := NewService(ServiceParams{
		Config:        &config.Config{},
		Logger:        logger.New(logger.Options{ServiceName: "test"}),
		DB:            fakeDB{},
		Repository:    repo,
		DLQRepository: dlq,
		Notifications: notifs,
		Email:         sender,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestProcessBatchDispatchesNotificationsAndEmail(t *testing.T) {
	buyerID := uuid.New()
	repo := &fakeRepo{events: []models.OutboxEvent{orderStatusEvent(t, buyerID)}}
	dlq := &fakeDLQRepo{}
	notifs := &fakeNotificationsRepo{}
	sender := &fakeEmailSender{}
	service := newTestService(t, repo, dlq, notifs, sender)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if !processed {
		t.Fatal("expected batch to report processed")
	}
	if len(repo.published) != 1 {
		t.Fatalf("published %d rows, want 1", len(repo.published))
	}
	if len(notifs.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(notifs.created))
	}
	if notifs.created[0].UserID != buyerID {
		t.Fatal("notification must target the buyer")
	}
	if len(sender.requests) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.requests))
	}
	if sender.requests[0].UpdateType != email.UpdateTypeOrderStatus {
		t.Fatalf("email update type = %s", sender.requests[0].UpdateType)
	}
	if len(dlq.entries) != 0 {
		t.Fatal("nothing should be dead-lettered")
	}
}

func TestProcessBatchDeadLettersMalformedPayload(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{"version":`),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	service := newTestService(t, repo, dlq, &fakeNotificationsRepo{}, &fakeEmailSender{})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("dead-lettered %d rows, want 1", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("reason = %s", dlq.entries[0].ErrorReason)
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatal("event must be marked terminal")
	}
	if len(repo.published) != 0 {
		t.Fatal("a dead-lettered event must not be marked published")
	}
}

func TestProcessBatchDeadLettersUnknownEventType(t *testing.T) {
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.OutboxEventType("order_archived"),
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       mustEnvelope(t, map[string]string{"order_id": uuid.NewString()}),
	}
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	service := newTestService(t, repo, dlq, &fakeNotificationsRepo{}, &fakeEmailSender{})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(dlq.entries) != 1 || dlq.entries[0].ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatal("unknown event types must be dead-lettered as non-retryable")
	}
}

func TestProcessBatchRetriesTransientFailure(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{orderStatusEvent(t, uuid.New())}}
	dlq := &fakeDLQRepo{}
	notifs := &fakeNotificationsRepo{createErr: errors.New("connection reset")}
	service := newTestService(t, repo, dlq, notifs, &fakeEmailSender{})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(repo.failed) != 1 {
		t.Fatalf("marked failed %d rows, want 1", len(repo.failed))
	}
	if len(dlq.entries) != 0 {
		t.Fatal("a first transient failure must not dead-letter")
	}
	if len(repo.published) != 0 {
		t.Fatal("a failed event must not be marked published")
	}
}

func TestProcessBatchDeadLettersAtMaxAttempts(t *testing.T) {
	event := orderStatusEvent(t, uuid.New())
	event.AttemptCount = defaultMaxAttempts - 1
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	dlq := &fakeDLQRepo{}
	notifs := &fakeNotificationsRepo{createErr: errors.New("connection reset")}
	service := newTestService(t, repo, dlq, notifs, &fakeEmailSender{})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("dead-lettered %d rows, want 1", len(dlq.entries))
	}
	if dlq.entries[0].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("reason = %s", dlq.entries[0].ErrorReason)
	}
}

func TestProcessBatchContinuesAfterDeadLetter(t *testing.T) {
	bad := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`not-json`),
	}
	good := orderStatusEvent(t, uuid.New())
	repo := &fakeRepo{events: []models.OutboxEvent{bad, good}}
	dlq := &fakeDLQRepo{}
	notifs := &fakeNotificationsRepo{}
	service := newTestService(t, repo, dlq, notifs, &fakeEmailSender{})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if len(dlq.entries) != 1 {
		t.Fatalf("dead-lettered %d rows, want 1", len(dlq.entries))
	}
	if len(repo.published) != 1 || repo.published[0] != good.ID {
		t.Fatal("the healthy event must still be dispatched")
	}
}

func TestProcessBatchEmailFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepo{events: []models.OutboxEvent{orderStatusEvent(t, uuid.New())}}
	sender := &fakeEmailSender{err: errors.New("collaborator down")}
	service := newTestService(t, repo, &fakeDLQRepo{}, &fakeNotificationsRepo{}, sender)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("an email failure must not fail the batch: %v", err)
	}
	if len(repo.published) != 1 {
		t.Fatal("the event stays published even when the email fails")
	}
}

func TestProcessBatchEmptyQueue(t *testing.T) {
	repo := &fakeRepo{}
	service := newTestService(t, repo, &fakeDLQRepo{}, &fakeNotificationsRepo{}, &fakeEmailSender{})

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("processBatch: %v", err)
	}
	if processed {
		t.Fatal("an empty queue must not report processed")
	}
}
