package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-margin-service/internal/margin"
	"github.com/fekuna/omnipos-margin-service/internal/settings"
	"github.com/fekuna/omnipos-margin-service/pkg/broker"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MarginListener struct {
	consumer *broker.KafkaConsumer
	margins  margin.UseCase
	settings settings.UseCase
	logger   logger.ZapLogger
}

func NewMarginListener(consumer *broker.KafkaConsumer, margins margin.UseCase, settingsUC settings.UseCase, log logger.ZapLogger) *MarginListener {
	return &MarginListener{
		consumer: consumer,
		margins:  margins,
		settings: settingsUC,
		logger:   log,
	}
}

func (l *MarginListener) Start(ctx context.Context) {
	l.logger.Info("Starting Margin Kafka Listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping Margin Kafka Listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type CommerceEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type OrderCompletedPayload struct {
	OrderID    int64  `json:"order_id"`
	MerchantID string `json:"merchant_id"`
}

type SettingsUpdatedPayload struct {
	MerchantID string `json:"merchant_id"`
}

func (l *MarginListener) processMessage(ctx context.Context, value []byte) {
	var event CommerceEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	if _, err := uuid.Parse(event.EventID); err != nil {
		l.logger.Error("Discarding event with invalid event_id", zap.String("event_id", event.EventID))
		return
	}

	switch event.EventType {
	case "OrderCompleted":
		l.handleOrderCompleted(ctx, event)
	case "SettingsUpdated":
		l.handleSettingsUpdated(ctx, event)
	default:
		// Other services share this topic.
	}
}

func (l *MarginListener) handleOrderCompleted(ctx context.Context, event CommerceEvent) {
	var payload OrderCompletedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal OrderCompleted payload", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	if payload.MerchantID == "" || payload.OrderID <= 0 {
		l.logger.Error("Discarding OrderCompleted event with incomplete payload", zap.String("event_id", event.EventID))
		return
	}

	details, err := l.margins.GetOrderMarginDetails(ctx, payload.MerchantID, payload.OrderID)
	if err != nil {
		l.logger.Error("Failed to aggregate order margin",
			zap.String("event_id", event.EventID),
			zap.Int64("order_id", payload.OrderID),
			zap.Error(err),
		)
		return
	}
	if details == nil {
		l.logger.Warn("OrderCompleted event references unknown order",
			zap.String("merchant_id", payload.MerchantID),
			zap.Int64("order_id", payload.OrderID),
		)
		return
	}

	l.logger.Info("Order margin aggregated",
		zap.String("merchant_id", payload.MerchantID),
		zap.Int64("order_id", payload.OrderID),
		zap.Float64("total_margin", details.TotalMargin),
		zap.Float64("average_margin_pct", details.AverageMarginPercentage),
		zap.Float64("coverage_pct", details.MarginCoverage),
		zap.Int("products_with_margin", details.ProductsWithMargin),
		zap.Int("total_products", details.TotalProducts),
	)
}

func (l *MarginListener) handleSettingsUpdated(ctx context.Context, event CommerceEvent) {
	var payload SettingsUpdatedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal SettingsUpdated payload", zap.String("event_id", event.EventID), zap.Error(err))
		return
	}
	if payload.MerchantID == "" {
		return
	}

	l.settings.InvalidateCache(ctx, payload.MerchantID)
	l.logger.Info("Settings cache invalidated", zap.String("merchant_id", payload.MerchantID))
}
