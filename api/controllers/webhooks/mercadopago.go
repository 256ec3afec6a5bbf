package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matiascortez/vestia-backend/api/responses"
	mpwebhook "github.com/matiascortez/vestia-backend/internal/webhooks/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/logger"
)

type MercadoPagoWebhookService interface {
	HandleNotification(ctx context.Context, notification mpwebhook.Notification) error
}

type MercadoPagoGuard interface {
	CheckAndMark(ctx context.Context, paymentID string) (bool, error)
	Delete(ctx context.Context, paymentID string) error
}

// MercadoPagoWebhook receives provider payment notifications. Per provider
// convention the response is {received:true} with status 200 no matter what
// happened internally; failing the request would only trigger retry storms.
// Real failures are logged and the idempotency mark is released so the
// provider's next retry gets another chance.
func MercadoPagoWebhook(svc MercadoPagoWebhookService, guard MercadoPagoGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			warn(ctx, logg, "webhook service unavailable, acknowledging delivery")
			writeReceived(w)
			return
		}

		var notification mpwebhook.Notification
		if err := json.NewDecoder(r.Body).Decode(&notification); err != nil {
			warn(ctx, logg, "webhook body undecodable, acknowledging delivery")
			writeReceived(w)
			return
		}

		paymentID := notification.PaymentID()
		if guard != nil && notification.Type == "payment" && paymentID != 0 {
			key := strconv.FormatInt(paymentID, 10)
			seen, err := guard.CheckAndMark(ctx, key)
			if err != nil {
				// Dedup is best effort; a broken guard must not drop payments.
				warn(ctx, logg, "idempotency check failed, processing anyway")
			} else if seen {
				if logg != nil {
					logg.Info(logg.WithPaymentID(ctx, key), "duplicate webhook delivery, skipping")
				}
				writeReceived(w)
				return
			}

			if err := svc.HandleNotification(ctx, notification); err != nil {
				_ = guard.Delete(ctx, key)
				logError(ctx, logg, "webhook processing failed", err)
			}
			writeReceived(w)
			return
		}

		if err := svc.HandleNotification(ctx, notification); err != nil {
			logError(ctx, logg, "webhook processing failed", err)
		}
		writeReceived(w)
	}
}

func writeReceived(w http.ResponseWriter) {
	responses.WriteSuccess(w, map[string]bool{"received": true})
}

func warn(ctx context.Context, logg *logger.Logger, msg string) {
	if logg != nil {
		logg.Warn(ctx, msg)
	}
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg != nil {
		logg.Error(ctx, msg, err)
	}
}
