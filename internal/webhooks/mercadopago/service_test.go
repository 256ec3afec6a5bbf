package mpwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/matiascortez/vestia-backend/pkg/errors"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
)

type stubFetcher struct {
	payment *mercadopago.Payment
	err     error
	calls   int
}

func (s *stubFetcher) FetchPayment(context.Context, int64) (*mercadopago.Payment, error) {
	s.calls++
	return s.payment, s.err
}

type stubDispatcher struct {
	err   error
	calls int
}

func (s *stubDispatcher) DispatchApproved(context.Context, *mercadopago.Payment) error {
	s.calls++
	return s.err
}

func paymentNotification(t *testing.T, body string) Notification {
	t.Helper()
	var n Notification
	require.NoError(t, json.Unmarshal([]byte(body), &n))
	return n
}

func TestNotificationDecodesNumericAndStringIDs(t *testing.T) {
	numeric := paymentNotification(t, `{"type":"payment","data":{"id":123}}`)
	assert.Equal(t, int64(123), numeric.PaymentID())

	quoted := paymentNotification(t, `{"type":"payment","data":{"id":"456"}}`)
	assert.Equal(t, int64(456), quoted.PaymentID())
}

func TestHandleNotificationIgnoresOtherTypes(t *testing.T) {
	fetcher := &stubFetcher{}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: &stubDispatcher{}})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"merchant_order","data":{"id":123}}`)
	require.NoError(t, svc.HandleNotification(context.Background(), n))
	assert.Zero(t, fetcher.calls)
}

func TestHandleNotificationMissingID(t *testing.T) {
	fetcher := &stubFetcher{}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: &stubDispatcher{}})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"payment","data":{}}`)
	require.NoError(t, svc.HandleNotification(context.Background(), n))
	assert.Zero(t, fetcher.calls)
}

func TestHandleNotificationApprovedDispatchesOnce(t *testing.T) {
	fetcher := &stubFetcher{payment: &mercadopago.Payment{ID: 123, Status: "approved"}}
	dispatcher := &stubDispatcher{}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: dispatcher})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"payment","data":{"id":123}}`)
	require.NoError(t, svc.HandleNotification(context.Background(), n))

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, dispatcher.calls)
}

func TestHandleNotificationRejectedDoesNotDispatch(t *testing.T) {
	fetcher := &stubFetcher{payment: &mercadopago.Payment{ID: 123, Status: "rejected", StatusDetail: "cc_rejected_other_reason"}}
	dispatcher := &stubDispatcher{}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: dispatcher})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"payment","data":{"id":123}}`)
	require.NoError(t, svc.HandleNotification(context.Background(), n))
	assert.Zero(t, dispatcher.calls)
}

func TestHandleNotificationFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("boom")}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: &stubDispatcher{}})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"payment","data":{"id":123}}`)
	err = svc.HandleNotification(context.Background(), n)

	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())
}

func TestHandleNotificationDispatchError(t *testing.T) {
	fetcher := &stubFetcher{payment: &mercadopago.Payment{ID: 123, Status: "approved"}}
	dispatcher := &stubDispatcher{err: errors.New("smtp down")}
	svc, err := NewService(ServiceParams{Gateway: fetcher, Dispatcher: dispatcher})
	require.NoError(t, err)

	n := paymentNotification(t, `{"type":"payment","data":{"id":123}}`)
	err = svc.HandleNotification(context.Background(), n)
	require.Error(t, err)
}

type stubIdempotencyStore struct {
	keys map[string]bool
	err  error
}

func (s *stubIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.keys[key] {
		return false, nil
	}
	if s.keys == nil {
		s.keys = make(map[string]bool)
	}
	s.keys[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "vst:idempotency:" + scope + ":" + id
}

func (s *stubIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return s.err
}

func TestIdempotencyGuardMarksOnce(t *testing.T) {
	guard, err := NewIdempotencyGuard(&stubIdempotencyStore{}, time.Hour, "mp-payment")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(context.Background(), "123")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestIdempotencyGuardDeleteReleases(t *testing.T) {
	guard, err := NewIdempotencyGuard(&stubIdempotencyStore{}, time.Hour, "mp-payment")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "123")
	require.NoError(t, err)
	require.NoError(t, guard.Delete(context.Background(), "123"))

	seen, err := guard.CheckAndMark(context.Background(), "123")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestIdempotencyGuardRequiresStore(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "mp-payment")
	require.Error(t, err)
}
