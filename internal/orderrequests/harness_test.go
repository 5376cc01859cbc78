package orderrequests

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/billing"
	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/internal/shipping"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/dbtest"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

type fakeLinker struct{}

func (fakeLinker) PaymentURL(order *models.Order, _, _ string) (string, error) {
	return "https://pay.test/" + order.ID.String(), nil
}

type capturedPush struct {
	msgs []push.Message
}

func (c *capturedPush) PublishAll(_ context.Context, msgs []push.Message) {
	c.msgs = append(c.msgs, msgs...)
}

// stack wires the real order engine against an in-memory database.
type stack struct {
	db       *gorm.DB
	orders   orders.Service
	workflow *Workflow
	engine   *shipping.Engine
	push     *capturedPush
	store    models.Store
	customer models.User
	staff    models.User
	courier  models.User
	a, b     models.ProductStore
}

func newStack(t *testing.T, withCourier bool) *stack {
	t.Helper()
	conn := dbtest.Open(t)
	s := &stack{db: conn, push: &capturedPush{}}

	s.store = models.Store{Name: "Main", Address: "1 Le Loi"}
	require.NoError(t, conn.Create(&s.store).Error)
	s.customer = models.User{Email: "an@example.com", FirstName: "Nguyen", LastName: "An", Role: enums.UserRoleUser}
	require.NoError(t, conn.Create(&s.customer).Error)
	s.staff = models.User{Email: "staff@example.com", Role: enums.UserRoleStaff, StoreID: &s.store.ID}
	require.NoError(t, conn.Create(&s.staff).Error)
	if withCourier {
		s.courier = models.User{Email: "courier@example.com", Role: enums.UserRoleShipper, StoreID: &s.store.ID}
		require.NoError(t, conn.Create(&s.courier).Error)
	}
	s.a = s.seedProduct(t, "A", 50000, 10)
	s.b = s.seedProduct(t, "B", 100000, 1)

	cfg := config.OrdersConfig{CancelWindow: 4 * time.Hour}
	tx := db.NewFromConn(conn)
	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), nil)
	require.NoError(t, err)
	tracker, err := vouchers.NewTracker(vouchers.NewRepository(conn), nil)
	require.NoError(t, err)
	requester, err := notifications.NewRequester(emitter)
	require.NoError(t, err)

	orderRepo := orders.NewRepository(conn)
	canceler, err := orders.NewCanceler(orders.CancelerParams{
		Repo:     orderRepo,
		Stock:    ledger,
		Vouchers: tracker,
		Outbox:   emitter,
		Notifier: requester,
	})
	require.NoError(t, err)
	lifecycle, err := orders.NewLifecycle(orderRepo, emitter, nil, nil)
	require.NoError(t, err)
	s.engine, err = shipping.NewEngine(shipping.EngineParams{
		Repo:     shipping.NewRepository(conn),
		Tx:       tx,
		Canceler: canceler,
		Outbox:   emitter,
		Notifier: requester,
		Push:     s.push,
	})
	require.NoError(t, err)
	bills, err := billing.NewService(billing.ServiceParams{Repo: billing.NewRepository(conn), Outbox: emitter})
	require.NoError(t, err)

	s.workflow, err = NewWorkflow(WorkflowParams{
		Repo:      NewRepository(conn),
		Tx:        tx,
		Lifecycle: lifecycle,
		Canceler:  canceler,
		Bills:     bills,
		Shipping:  s.engine,
		Notifier:  requester,
		Push:      s.push,
		Outbox:    emitter,
		Config:    cfg,
	})
	require.NoError(t, err)

	s.orders, err = orders.NewService(orders.ServiceParams{
		Repo:     orderRepo,
		Tx:       tx,
		Stock:    ledger,
		Vouchers: tracker,
		Requests: s.workflow,
		Shipping: s.engine,
		Bills:    bills,
		Payments: fakeLinker{},
		Push:     s.push,
		Outbox:   emitter,
		Notifier: requester,
		Config:   cfg,
	})
	require.NoError(t, err)
	return s
}

func (s *stack) seedProduct(t *testing.T, name string, price int64, qty int) models.ProductStore {
	t.Helper()
	product := models.Product{Name: name, Price: price, Quantity: qty}
	require.NoError(t, s.db.Create(&product).Error)
	ps := models.ProductStore{ProductID: product.ID, StoreID: s.store.ID, Quantity: qty}
	require.NoError(t, s.db.Create(&ps).Error)
	return ps
}

func (s *stack) place(t *testing.T, actor models.User) *orders.OrderView {
	t.Helper()
	view, err := s.orders.Place(context.Background(), orders.PlaceInput{
		ActorID:       actor.ID,
		ActorRole:     actor.Role,
		PaymentMethod: enums.PaymentMethodCOD,
		Items: []orders.LineInput{
			{ProductStoreID: s.a.ID, Quantity: 3},
			{ProductStoreID: s.b.ID, Quantity: 1},
		},
		Contact: models.OrderContact{FirstName: "Nguyen", LastName: "An", Address: "12 Hai Ba Trung"},
	})
	require.NoError(t, err)
	return view
}

func (s *stack) pendingRequest(t *testing.T, orderID uuid.UUID, requestType enums.OrderRequestType) models.OrderRequest {
	t.Helper()
	var req models.OrderRequest
	require.NoError(t, s.db.
		Where("order_id = ? AND type = ? AND status = ?", orderID, requestType, enums.RequestStatusPending).
		First(&req).Error)
	return req
}

func (s *stack) orderStatus(t *testing.T, orderID uuid.UUID) enums.OrderStatus {
	t.Helper()
	var order models.Order
	require.NoError(t, s.db.First(&order, "id = ?", orderID).Error)
	return order.Status
}

func (s *stack) storeQuantity(t *testing.T, ps models.ProductStore) int {
	t.Helper()
	var row models.ProductStore
	require.NoError(t, s.db.First(&row, "id = ?", ps.ID).Error)
	return row.Quantity
}

// notificationCount counts queued notification requests for an order by
// template.
func (s *stack) notificationCount(t *testing.T, orderID uuid.UUID, template enums.NotificationTemplate) int64 {
	t.Helper()
	var events []models.OutboxEvent
	require.NoError(t, s.db.
		Where("event_type = ? AND aggregate_id = ?", enums.EventNotificationRequested, orderID).
		Find(&events).Error)

	var count int64
	for _, event := range events {
		envelope, err := outbox.ParseEnvelope(event.Payload)
		require.NoError(t, err)
		var payload payloads.NotificationRequestedEvent
		require.NoError(t, json.Unmarshal(envelope.Data, &payload))
		if payload.Template == template {
			count++
		}
	}
	return count
}
