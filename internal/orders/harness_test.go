package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/LeDucTai-11/MyStore-BE/internal/inventory"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/push"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/dbtest"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox"
)

type stubRequester struct {
	orders []uuid.UUID
	err    error
}

func (s *stubRequester) RequestCreate(_ context.Context, _ *gorm.DB, order *models.Order) error {
	s.orders = append(s.orders, order.ID)
	return s.err
}

type stubAssigner struct {
	orders []uuid.UUID
	msgs   []push.Message
	err    error
}

func (s *stubAssigner) Assign(_ context.Context, _ *gorm.DB, order *models.Order) ([]push.Message, error) {
	s.orders = append(s.orders, order.ID)
	return s.msgs, s.err
}

type stubBills struct {
	amounts []int64
	issuers []*uuid.UUID
}

func (s *stubBills) Issue(_ context.Context, _ *gorm.DB, orderID uuid.UUID, issuer *uuid.UUID, amount int64) (*models.Bill, error) {
	s.amounts = append(s.amounts, amount)
	s.issuers = append(s.issuers, issuer)
	return &models.Bill{ID: uuid.New(), OrderID: orderID, CreatedBy: issuer, Amount: amount}, nil
}

type stubLinker struct {
	amounts []int64
}

func (s *stubLinker) PaymentURL(order *models.Order, _, _ string) (string, error) {
	total := ComputeTotals(order).Total
	s.amounts = append(s.amounts, total)
	return "https://pay.test/?vnp_TxnRef=" + order.ID.String(), nil
}

type stubPush struct {
	published []push.Message
}

func (s *stubPush) PublishAll(_ context.Context, msgs []push.Message) {
	s.published = append(s.published, msgs...)
}

type harness struct {
	db       *gorm.DB
	svc      Service
	canceler *Canceler
	requests *stubRequester
	assigner *stubAssigner
	bills    *stubBills
	linker   *stubLinker
	push     *stubPush
	store    models.Store
	customer models.User
	staff    models.User
	a, b     models.ProductStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := dbtest.Open(t)

	h := &harness{
		db:       conn,
		requests: &stubRequester{},
		assigner: &stubAssigner{},
		bills:    &stubBills{},
		linker:   &stubLinker{},
		push:     &stubPush{},
	}
	h.store = models.Store{Name: "Main", Address: "1 Le Loi"}
	require.NoError(t, conn.Create(&h.store).Error)
	h.customer = models.User{Email: "an@example.com", FirstName: "Nguyen", LastName: "An", Role: enums.UserRoleUser}
	require.NoError(t, conn.Create(&h.customer).Error)
	h.staff = models.User{Email: "staff@example.com", FirstName: "Tran", LastName: "Binh", Role: enums.UserRoleStaff, StoreID: &h.store.ID}
	require.NoError(t, conn.Create(&h.staff).Error)
	h.a = h.seedProduct(t, "A", 50000, 10)
	h.b = h.seedProduct(t, "B", 100000, 1)

	emitter := outbox.NewService(outbox.NewRepository(conn), nil)
	ledger, err := inventory.NewLedger(inventory.NewRepository(conn), nil)
	require.NoError(t, err)
	tracker, err := vouchers.NewTracker(vouchers.NewRepository(conn), nil)
	require.NoError(t, err)
	requester, err := notifications.NewRequester(emitter)
	require.NoError(t, err)

	h.canceler, err = NewCanceler(CancelerParams{
		Repo:     NewRepository(conn),
		Stock:    ledger,
		Vouchers: tracker,
		Outbox:   emitter,
		Notifier: requester,
	})
	require.NoError(t, err)

	h.svc, err = NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       db.NewFromConn(conn),
		Stock:    ledger,
		Vouchers: tracker,
		Requests: h.requests,
		Shipping: h.assigner,
		Bills:    h.bills,
		Payments: h.linker,
		Push:     h.push,
		Outbox:   emitter,
		Notifier: requester,
		Config:   config.OrdersConfig{CancelWindow: 4 * time.Hour},
	})
	require.NoError(t, err)
	return h
}

func (h *harness) seedProduct(t *testing.T, name string, price int64, qty int) models.ProductStore {
	t.Helper()
	product := models.Product{Name: name, Price: price, Quantity: qty}
	require.NoError(t, h.db.Create(&product).Error)
	ps := models.ProductStore{ProductID: product.ID, StoreID: h.store.ID, Quantity: qty}
	require.NoError(t, h.db.Create(&ps).Error)
	return ps
}

func (h *harness) seedVoucher(t *testing.T, voucher models.Voucher) models.Voucher {
	t.Helper()
	require.NoError(t, h.db.Create(&voucher).Error)
	return voucher
}

func (h *harness) quantities(t *testing.T, ps models.ProductStore) (int, int) {
	t.Helper()
	var row models.ProductStore
	require.NoError(t, h.db.Preload("Product").First(&row, "id = ?", ps.ID).Error)
	return row.Quantity, row.Product.Quantity
}

func (h *harness) order(t *testing.T, id uuid.UUID) models.Order {
	t.Helper()
	var order models.Order
	require.NoError(t, h.db.First(&order, "id = ?", id).Error)
	return order
}

func (h *harness) cancel(t *testing.T, orderID uuid.UUID, reason string) error {
	t.Helper()
	return h.db.Transaction(func(tx *gorm.DB) error {
		return h.canceler.Cancel(context.Background(), tx, orderID, reason)
	})
}

func (h *harness) customerCOD() PlaceInput {
	return PlaceInput{
		ActorID:       h.customer.ID,
		ActorRole:     enums.UserRoleUser,
		PaymentMethod: enums.PaymentMethodCOD,
		Items: []LineInput{
			{ProductStoreID: h.a.ID, Quantity: 3},
			{ProductStoreID: h.b.ID, Quantity: 1},
		},
		Contact: models.OrderContact{FirstName: "Nguyen", LastName: "An", PhoneNumber: "0900000000", Address: "12 Hai Ba Trung"},
	}
}
