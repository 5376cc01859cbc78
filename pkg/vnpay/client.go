package vnpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
)

const (
	apiVersion            = "2.1.0"
	commandPay            = "pay"
	commandQuery          = "querydr"
	defaultLocale         = "vn"
	defaultCurrency       = "VND"
	defaultOrderType      = "other"
	defaultBankCode       = "NCB"
	orderInfoPrefix       = "Thanh toan giao dich cho don hang:"
	dateLayout            = "20060102150405"
	responseBodyReadLimit = 1024

	// amountScale converts VND to the gateway's vnp_Amount unit.
	amountScale = 100

	// CodeSuccess is the response and transaction status the gateway uses for a settled payment.
	CodeSuccess = "00"
)

// gatewayZone is Asia/Ho_Chi_Minh, which has no daylight saving.
var gatewayZone = time.FixedZone("ICT", 7*60*60)

var (
	errTmnCodeRequired    = errors.New("vnpay tmn code is required")
	errHashSecretRequired = errors.New("vnpay hash secret is required")
)

// Client signs payment URLs and queries transaction results.
type Client struct {
	cfg        config.VNPayConfig
	httpClient *http.Client
	now        func() time.Time
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the clock used for vnp_CreateDate.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient builds a gateway client from config.
func NewClient(cfg config.VNPayConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return nil, errTmnCodeRequired
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return nil, errHashSecretRequired
	}
	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// PaymentParams describes a checkout redirect.
type PaymentParams struct {
	OrderID uuid.UUID
	Amount  int64
	IPAddr  string
	Origin  string
}

// OrderInfo is the description the gateway shows for an order.
func OrderInfo(orderID uuid.UUID) string {
	return orderInfoPrefix + orderID.String()
}

// BuildPaymentURL returns the signed redirect URL. Output depends only on
// the params, the config and the clock.
func (c *Client) BuildPaymentURL(params PaymentParams) (string, error) {
	if params.OrderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if params.Amount < 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	query := map[string]string{
		"vnp_Version":    apiVersion,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    c.cfg.TmnCode,
		"vnp_Locale":     defaultLocale,
		"vnp_CurrCode":   defaultCurrency,
		"vnp_TxnRef":     params.OrderID.String(),
		"vnp_OrderInfo":  OrderInfo(params.OrderID),
		"vnp_OrderType":  defaultOrderType,
		"vnp_Amount":     strconv.FormatInt(params.Amount*amountScale, 10),
		"vnp_IpAddr":     params.IPAddr,
		"vnp_CreateDate": c.now().In(gatewayZone).Format(dateLayout),
		"vnp_ReturnUrl":  strings.TrimRight(params.Origin, "/") + "/payment/result",
		"vnp_BankCode":   defaultBankCode,
	}
	signData := canonicalQuery(query)
	signature := Sign(c.cfg.HashSecret, signData)
	return fmt.Sprintf("%s?%s&%s=%s", c.cfg.PayURL, signData, paramSecureHash, signature), nil
}

// ParseAmount converts a vnp_Amount value back to VND. Values that are not
// a whole number of VND are rejected.
func ParseAmount(raw string) (int64, error) {
	minor, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || minor < 0 || minor%amountScale != 0 {
		return 0, fmt.Errorf("invalid vnp_Amount %q", raw)
	}
	return minor / amountScale, nil
}

// VerifySignature checks a callback parameter set against the shared secret.
func (c *Client) VerifySignature(params map[string]string) error {
	return VerifySignature(c.cfg.HashSecret, params)
}

// QueryInput identifies the transaction to look up.
type QueryInput struct {
	TxnRef          string
	OrderInfo       string
	TransactionDate string
	IPAddr          string
}

// QueryResult is the subset of the querydr response the engine reads.
type QueryResult struct {
	ResponseCode      string `json:"vnp_ResponseCode"`
	Message           string `json:"vnp_Message"`
	TxnRef            string `json:"vnp_TxnRef"`
	Amount            string `json:"vnp_Amount"`
	TransactionNo     string `json:"vnp_TransactionNo"`
	TransactionStatus string `json:"vnp_TransactionStatus"`
	BankCode          string `json:"vnp_BankCode"`
}

// Successful reports whether the gateway settled the transaction.
func (r QueryResult) Successful() bool {
	return r.ResponseCode == CodeSuccess && r.TransactionStatus == CodeSuccess
}

type queryRequest struct {
	RequestID       string `json:"vnp_RequestId"`
	Version         string `json:"vnp_Version"`
	Command         string `json:"vnp_Command"`
	TmnCode         string `json:"vnp_TmnCode"`
	TxnRef          string `json:"vnp_TxnRef"`
	OrderInfo       string `json:"vnp_OrderInfo"`
	TransactionDate string `json:"vnp_TransactionDate"`
	CreateDate      string `json:"vnp_CreateDate"`
	IPAddr          string `json:"vnp_IpAddr"`
	SecureHash      string `json:"vnp_SecureHash"`
}

// Query asks the gateway for the result of a transaction. Every transport
// or decoding failure is a dependency error.
func (c *Client) Query(ctx context.Context, input QueryInput) (*QueryResult, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vnpay client not configured")
	}
	if strings.TrimSpace(input.TxnRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction reference is required")
	}

	req := queryRequest{
		RequestID:       uuid.NewString(),
		Version:         apiVersion,
		Command:         commandQuery,
		TmnCode:         c.cfg.TmnCode,
		TxnRef:          input.TxnRef,
		OrderInfo:       input.OrderInfo,
		TransactionDate: input.TransactionDate,
		CreateDate:      c.now().In(gatewayZone).Format(dateLayout),
		IPAddr:          input.IPAddr,
	}
	req.SecureHash = Sign(c.cfg.HashSecret, strings.Join([]string{
		req.RequestID,
		req.Version,
		req.Command,
		req.TmnCode,
		req.TxnRef,
		req.TransactionDate,
		req.CreateDate,
		req.IPAddr,
		req.OrderInfo,
	}, "|"))

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal vnpay query")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build vnpay query")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute vnpay query")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "vnpay query failed")
	}

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode vnpay query response")
	}
	return &result, nil
}
