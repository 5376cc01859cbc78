package registry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/outbox/payloads"
)

func TestNotificationDecoders(t *testing.T) {
	reg := NotificationDecoders()

	output, err := reg.Decode(enums.EventNotificationRequested, 1, json.RawMessage(`{"template":"order_confirmed"}`))
	require.NoError(t, err)
	event, ok := output.(payloads.NotificationRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, enums.TemplateOrderConfirmed, event.Template)

	_, err = reg.Decode(enums.EventNotificationRequested, 0, json.RawMessage(`{"template":"order_confirmed"}`))
	assert.NoError(t, err, "unversioned envelopes read as v1")
}

func TestDecodeFailuresAreNonRetryable(t *testing.T) {
	reg := NotificationDecoders()
	var nonRetry NonRetryableError

	_, err := reg.Decode(enums.EventNotificationRequested, 2, json.RawMessage(`{}`))
	require.Error(t, err)
	assert.True(t, errors.As(err, &nonRetry))

	_, err = reg.Decode(enums.EventNotificationRequested, 1, json.RawMessage(`{"template":`))
	require.Error(t, err)
	assert.True(t, errors.As(err, &nonRetry))
}
