package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{NowFunc: func() time.Time { return time.Now().UTC() }})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}, &models.OutboxDLQ{}))
	return conn
}

func TestEmitWritesEnvelope(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	svc := NewService(repo, nil)
	orderID := uuid.New()
	actor := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, DomainEvent{
			EventType:     enums.EventOrderCanceled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   orderID,
			Actor:         &ActorRef{UserID: actor, Role: "ADMIN"},
			Data:          map[string]string{"reason": "expired"},
		})
	})
	require.NoError(t, err)

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, orderID, rows[0].AggregateID)

	envelope, err := ParseEnvelope(rows[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Version)
	assert.NotEqual(t, uuid.Nil, envelope.ID())
	require.NotNil(t, envelope.Actor)
	assert.Equal(t, actor, envelope.Actor.UserID)
	assert.JSONEq(t, `{"reason":"expired"}`, string(envelope.Data))
}

func TestParseEnvelopeRejectsIncompleteEnvelopes(t *testing.T) {
	eventID := uuid.NewString()
	cases := map[string]struct {
		raw  string
		want error
	}{
		"zero version": {raw: `{"version":0,"eventId":"` + eventID + `","data":{}}`, want: ErrEnvelopeVersion},
		"bad event id": {raw: `{"version":1,"eventId":"evt-1","data":{}}`, want: ErrEnvelopeEventID},
		"null data":    {raw: `{"version":1,"eventId":"` + eventID + `","data":null}`, want: ErrEnvelopeData},
		"missing data": {raw: `{"version":1,"eventId":"` + eventID + `"}`, want: ErrEnvelopeData},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseEnvelope([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := ParseEnvelope([]byte(`{`))
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, PayloadEnvelope{EventID: "nope"}.ID())
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(nil), nil)
	err := svc.Emit(context.Background(), nil, DomainEvent{})
	assert.Error(t, err)
}

func TestRepositoryPublishLifecycle(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)

	first := models.OutboxEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	second := first
	second.AggregateID = uuid.New()
	require.NoError(t, repo.Insert(conn, first))
	require.NoError(t, repo.Insert(conn, second))

	rows, err := repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.NoError(t, repo.MarkPublishedTx(conn, rows[0].ID))
	require.NoError(t, repo.MarkTerminalTx(conn, rows[1].ID, errors.New("bad payload"), 3))

	rows, err = repo.FetchUnpublishedForPublish(conn, 10, 3)
	require.NoError(t, err)
	assert.Empty(t, rows, "published and terminal rows are not refetched")

	deleted, err := repo.DeletePublishedBefore(context.Background(), conn, time.Now().UTC().Add(time.Hour), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestMarkFailedIncrementsAttempts(t *testing.T) {
	conn := newTestDB(t)
	repo := NewRepository(conn)
	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventBillIssued,
		AggregateType: enums.AggregateBill,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
	}
	require.NoError(t, repo.Insert(conn, event))
	require.NoError(t, repo.MarkFailedTx(conn, event.ID, errors.New("timeout")))

	var stored models.OutboxEvent
	require.NoError(t, conn.First(&stored, "id = ?", event.ID).Error)
	assert.Equal(t, 1, stored.AttemptCount)
	require.NotNil(t, stored.LastError)
	assert.Equal(t, "timeout", *stored.LastError)
}

func TestDLQRepositoryTruncatesMessages(t *testing.T) {
	conn := newTestDB(t)
	repo := NewDLQRepository(conn)
	long := make([]byte, maxLastErrorLen+50)
	for i := range long {
		long[i] = 'x'
	}
	msg := string(long)
	eventID := uuid.New()

	require.NoError(t, repo.InsertTx(conn, models.OutboxDLQ{
		EventID:       eventID,
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       json.RawMessage(`{}`),
		ErrorReason:   enums.OutboxDLQReasonNonRetryable,
		ErrorMessage:  &msg,
	}))

	found, err := repo.FindByEventID(context.Background(), eventID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, *found.ErrorMessage, maxLastErrorLen)

	missing, err := repo.FindByEventID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	rows, err := repo.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = repo.List(context.Background(), enums.OutboxDLQReasonMaxAttempts, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = repo.InsertTx(conn, models.OutboxDLQ{EventID: uuid.New(), ErrorReason: "bogus"})
	require.Error(t, err)
}
