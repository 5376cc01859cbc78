package vnpay

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func testConfig() config.VNPayConfig {
	return config.VNPayConfig{
		TmnCode:    "TESTCODE",
		HashSecret: "secret",
		PayURL:     "https://pay.test/vpcpay.html",
		APIURL:     "https://api.test/transaction",
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 3, 4, 5, 0, time.UTC)
}

func TestEncodeValueMatchesURIComponent(t *testing.T) {
	require.Equal(t, "a+b%3Ac", encodeValue("a b:c"))
	require.Equal(t, "it's(ok)!*", encodeValue("it's(ok)!*"))
	require.Equal(t, "https%3A%2F%2Fshop.test%2Fpayment%2Fresult", encodeValue("https://shop.test/payment/result"))
}

func TestBuildPaymentURLIsDeterministicAndVerifiable(t *testing.T) {
	client, err := NewClient(testConfig(), WithClock(fixedClock))
	require.NoError(t, err)

	orderID := uuid.New()
	params := PaymentParams{OrderID: orderID, Amount: 230000, IPAddr: "10.0.0.1", Origin: "https://shop.test/"}
	first, err := client.BuildPaymentURL(params)
	require.NoError(t, err)
	second, err := client.BuildPaymentURL(params)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.True(t, strings.HasPrefix(first, "https://pay.test/vpcpay.html?vnp_Amount=23000000&"))

	parsed, err := url.Parse(first)
	require.NoError(t, err)
	values := parsed.Query()
	require.Equal(t, "20240301100405", values.Get("vnp_CreateDate"))
	require.Equal(t, orderID.String(), values.Get("vnp_TxnRef"))
	require.Equal(t, OrderInfo(orderID), values.Get("vnp_OrderInfo"))
	require.Equal(t, "https://shop.test/payment/result", values.Get("vnp_ReturnUrl"))

	callback := map[string]string{}
	for key := range values {
		callback[key] = values.Get(key)
	}
	require.NoError(t, client.VerifySignature(callback))

	callback["vnp_Amount"] = "9000000"
	err = client.VerifySignature(callback)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestVerifySignatureIgnoresHashTypeAndForeignKeys(t *testing.T) {
	params := map[string]string{"vnp_TxnRef": "abc", "vnp_ResponseCode": "00"}
	params[paramSecureHash] = strings.ToUpper(Sign("secret", canonicalQuery(params)))
	params[paramSecureHashType] = "HmacSHA512"
	params["utm_source"] = "mail"

	require.NoError(t, VerifySignature("secret", params))
	require.Error(t, VerifySignature("other", params))
}

func TestQuerySignsRequest(t *testing.T) {
	var captured queryRequest
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, "https://api.test/transaction", req.URL.String())
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`{"vnp_ResponseCode":"00","vnp_TransactionStatus":"00","vnp_Amount":"23000000"}`)),
			Header:     http.Header{},
		}, nil
	})
	client, err := NewClient(testConfig(), WithClock(fixedClock), WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)

	result, err := client.Query(context.Background(), QueryInput{
		TxnRef:          "ref-1",
		OrderInfo:       "info",
		TransactionDate: "20240301100000",
		IPAddr:          "10.0.0.1",
	})
	require.NoError(t, err)
	require.True(t, result.Successful())

	require.Equal(t, commandQuery, captured.Command)
	require.Equal(t, "20240301100405", captured.CreateDate)
	expected := Sign("secret", strings.Join([]string{
		captured.RequestID, apiVersion, commandQuery, "TESTCODE", "ref-1",
		"20240301100000", "20240301100405", "10.0.0.1", "info",
	}, "|"))
	require.Equal(t, expected, captured.SecureHash)
}

func TestQueryUpstreamFailures(t *testing.T) {
	cases := map[string]roundTripFunc{
		"status": func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader("down")), Header: http.Header{}}, nil
		},
		"malformed": func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{")), Header: http.Header{}}, nil
		},
		"transport": func(*http.Request) (*http.Response, error) {
			return nil, context.DeadlineExceeded
		},
	}
	for name, rt := range cases {
		t.Run(name, func(t *testing.T) {
			client, err := NewClient(testConfig(), WithHTTPClient(&http.Client{Transport: rt}))
			require.NoError(t, err)
			_, err = client.Query(context.Background(), QueryInput{TxnRef: "ref"})
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
		})
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.VNPayConfig{HashSecret: "s"})
	require.ErrorIs(t, err, errTmnCodeRequired)
	_, err = NewClient(config.VNPayConfig{TmnCode: "t"})
	require.ErrorIs(t, err, errHashSecretRequired)
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount("10000000")
	require.NoError(t, err)
	require.Equal(t, int64(100000), amount)

	for _, raw := range []string{"", "abc", "-100", "10050"} {
		_, err := ParseAmount(raw)
		require.Error(t, err, raw)
	}
}
