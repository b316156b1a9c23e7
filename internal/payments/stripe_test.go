package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func sign(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

var completed = []byte(`{
  "id": "evt_1",
  "object": "event",
  "api_version": "2020-08-27",
  "type": "checkout.session.completed",
  "data": {"object": {
    "id": "cs_1",
    "object": "checkout.session",
    "payment_intent": "pi_1",
    "metadata": {"orderId": "order-1"}
  }}
}`)

func TestParseWebhookCompleted(t *testing.T) {
	s := NewStripe("sk_test", testSecret, "uah")
	ev, err := s.ParseWebhook(completed, sign(completed, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	assert.Equal(t, "checkout.session.completed", ev.Type)
	assert.Equal(t, "order-1", ev.OrderID)
	assert.Equal(t, "pi_1", ev.PaymentID)
}

func TestParseWebhookOtherEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`)
	ev, err := NewStripe("sk_test", testSecret, "uah").ParseWebhook(payload, sign(payload, testSecret))
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.OrderID)
}

func TestParseWebhookRejects(t *testing.T) {
	s := NewStripe("sk_test", testSecret, "uah")

	_, err := s.ParseWebhook(completed, sign(completed, "whsec_other"))
	assert.Error(t, err)

	_, err = s.ParseWebhook(completed, "")
	assert.Error(t, err)

	_, err = NewStripe("sk_test", "", "uah").ParseWebhook(completed, sign(completed, ""))
	assert.Error(t, err)
}
