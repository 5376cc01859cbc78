package orders

import (
	"strings"

	"github.com/google/uuid"

	internalorders "github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/payments"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
)

type placeOrderItem struct {
	ProductStoreID uuid.UUID `json:"productStoreId" validate:"required"`
	Quantity       int       `json:"quantity" validate:"required,gt=0"`
}

type placeOrderContact struct {
	FirstName   string `json:"firstName" validate:"required,max=100"`
	LastName    string `json:"lastName" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20,vnphone"`
	Address     string `json:"address" validate:"required,max=500"`
}

type placeOrderRequest struct {
	Items         []placeOrderItem  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string            `json:"paymentMethod" validate:"required,oneof=COD BANKING"`
	VoucherID     *uuid.UUID        `json:"voucherId,omitempty"`
	ShippingFee   int64             `json:"shippingFee" validate:"gte=0"`
	Contact       placeOrderContact `json:"contact"`
}

func (p placeOrderRequest) toInput(actorID uuid.UUID, role enums.UserRole, clientIP, origin string) internalorders.PlaceInput {
	items := make([]internalorders.LineInput, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, internalorders.LineInput{
			ProductStoreID: item.ProductStoreID,
			Quantity:       item.Quantity,
		})
	}
	return internalorders.PlaceInput{
		ActorID:       actorID,
		ActorRole:     role,
		Items:         items,
		PaymentMethod: enums.PaymentMethod(p.PaymentMethod),
		VoucherID:     p.VoucherID,
		ShippingFee:   p.ShippingFee,
		Contact: models.OrderContact{
			FirstName:   strings.TrimSpace(p.Contact.FirstName),
			LastName:    strings.TrimSpace(p.Contact.LastName),
			PhoneNumber: strings.TrimSpace(p.Contact.PhoneNumber),
			Address:     strings.TrimSpace(p.Contact.Address),
		},
		ClientIP: clientIP,
		Origin:   origin,
	}
}

// paymentConfirmRequest mirrors what the storefront relays from the gateway redirect.
type paymentConfirmRequest struct {
	Amount            int64             `json:"amount" validate:"gt=0"`
	BankCode          *string           `json:"bankCode,omitempty"`
	TransactionNumber string            `json:"transactionNumber" validate:"required"`
	CardType          *string           `json:"cardType,omitempty"`
	OrderInfo         string            `json:"orderInfo"`
	VNPParams         map[string]string `json:"vnpParam" validate:"required"`
}

func (p paymentConfirmRequest) toInput(orderID, actorID uuid.UUID, clientIP string) payments.ConfirmInput {
	return payments.ConfirmInput{
		OrderID:           orderID,
		ActorID:           actorID,
		Amount:            p.Amount,
		BankCode:          p.BankCode,
		TransactionNumber: strings.TrimSpace(p.TransactionNumber),
		CardType:          p.CardType,
		OrderInfo:         p.OrderInfo,
		VNPParams:         p.VNPParams,
		ClientIP:          clientIP,
	}
}
