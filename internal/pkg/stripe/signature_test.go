package stripe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_Valid(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"invoice.paid"}`)
	secret := "whsec_test"
	now := time.Now()

	header := SignPayload(payload, secret, now)
	err := VerifySignature(payload, header, secret, DefaultTolerance, now)
	assert.NoError(t, err)
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	header := SignPayload(payload, "whsec_a", now)
	err := VerifySignature(payload, header, "whsec_b", DefaultTolerance, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_TamperedPayload(t *testing.T) {
	secret := "whsec_test"
	now := time.Now()

	header := SignPayload([]byte(`{"amount":100}`), secret, now)
	err := VerifySignature([]byte(`{"amount":999}`), header, secret, DefaultTolerance, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignature_Expired(t *testing.T) {
	payload := []byte(`{}`)
	secret := "whsec_test"
	signedAt := time.Now().Add(-10 * time.Minute)

	header := SignPayload(payload, secret, signedAt)
	err := VerifySignature(payload, header, secret, DefaultTolerance, time.Now())
	assert.ErrorIs(t, err, ErrSignatureExpired)
}

func TestVerifySignature_MalformedHeader(t *testing.T) {
	payload := []byte(`{}`)

	for _, header := range []string{"", "t=abc,v1=00", "v1=00", "t=123"} {
		err := VerifySignature(payload, header, "whsec_test", 0, time.Now())
		assert.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
	}
}

func TestParseEvent(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","amount_total":999,"payment_status":"paid","metadata":{"user_id":"1","item_type":"coins","item_id":"500"}}}}`)

	event, err := ParseEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutCompleted, event.Type)

	session, err := event.Session()
	require.NoError(t, err)
	assert.Equal(t, "cs_1", session.ID)
	assert.Equal(t, int64(999), session.AmountTotal)
	assert.Equal(t, "500", session.Metadata["item_id"])
}

func TestParseEvent_Malformed(t *testing.T) {
	_, err := ParseEvent([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)

	_, err = ParseEvent([]byte(`{"id":"evt_1"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestInvoicePeriodRange(t *testing.T) {
	inv := &Invoice{PeriodStart: 100, PeriodEnd: 200}
	start, end := inv.PeriodRange()
	assert.Equal(t, int64(100), start)
	assert.Equal(t, int64(200), end)

	// lines 存在时以行内周期为准
	inv.Lines.Data = append(inv.Lines.Data, struct {
		Period struct {
			Start int64 `json:"start"`
			End   int64 `json:"end"`
		} `json:"period"`
	}{})
	inv.Lines.Data[0].Period.Start = 300
	inv.Lines.Data[0].Period.End = 400
	start, end = inv.PeriodRange()
	assert.Equal(t, int64(300), start)
	assert.Equal(t, int64(400), end)
}
