package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	pkgerrors "github.com/LeDucTai-11/MyStore-BE/pkg/errors"
)

const (
	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
)

// componentEscaper undoes the extra escapes url.QueryEscape applies compared
// to the gateway's encoding, which keeps !*'() literal.
var componentEscaper = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeValue escapes like encodeURIComponent with spaces as '+'.
func encodeValue(value string) string {
	return componentEscaper.Replace(url.QueryEscape(value))
}

// canonicalQuery sorts params by key and joins the encoded pairs. The result
// is both the signed payload and the query string of the payment URL.
func canonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(encodeValue(key))
		b.WriteByte('=')
		b.WriteString(encodeValue(params[key]))
	}
	return b.String()
}

// Sign returns the hex HMAC-SHA512 of data.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature recomputes the callback signature over every vnp_* param
// except the hash fields and compares it in constant time.
func VerifySignature(secret string, params map[string]string) error {
	provided := strings.ToLower(strings.TrimSpace(params[paramSecureHash]))
	if provided == "" {
		return pkgerrors.New(pkgerrors.CodeConflict, "signature mismatch")
	}

	signed := make(map[string]string, len(params))
	for key, value := range params {
		if !strings.HasPrefix(key, "vnp_") || key == paramSecureHash || key == paramSecureHashType {
			continue
		}
		signed[key] = value
	}

	expected := Sign(secret, canonicalQuery(signed))
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return pkgerrors.New(pkgerrors.CodeConflict, "signature mismatch")
	}
	return nil
}
