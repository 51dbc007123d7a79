// Package kafka consumes catalog write notifications and keeps the read
// model and caches in step with the system of record.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sokohub/geosearch/internal/domain"
	domgeo "github.com/sokohub/geosearch/internal/domain/geo"
	"github.com/sokohub/geosearch/internal/metrics"
	"github.com/sokohub/geosearch/internal/repository/product"
)

// Event kinds and operations carried on the write topic.
const (
	KindBusiness = "business"
	KindProduct  = "product"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Event is one write notification. Exactly one payload matches Kind; deletes
// carry only the ID.
type Event struct {
	Kind     string           `json:"kind"`
	Op       string           `json:"op"`
	ID       string           `json:"id"`
	Business *BusinessPayload `json:"business,omitempty"`
	Product  *ProductPayload  `json:"product,omitempty"`
}

// BusinessPayload is the business document shape on the wire.
type BusinessPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Kind        string   `json:"kind"`
	Verified    bool     `json:"verified"`
	Rating      float64  `json:"rating"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
}

// ProductPayload is the product document shape on the wire. Owner rating and
// location ride along so the read model stays denormalized without extra
// lookups.
type ProductPayload struct {
	ID          string   `json:"id"`
	BusinessID  string   `json:"businessId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Category    string   `json:"category"`
	CreatedAt   int64    `json:"createdAt"`
	OwnerRating float64  `json:"ownerRating"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// BusinessWriter applies business writes to the read model.
type BusinessWriter interface {
	Upsert(ctx context.Context, businesses []domain.Business) error
	Delete(ctx context.Context, id string) error
}

// ProductWriter applies product writes to the read model.
type ProductWriter interface {
	Upsert(ctx context.Context, rows []product.Row) error
	Delete(ctx context.Context, id string) error
}

// Invalidation evicts cached query results affected by a write.
type Invalidation interface {
	OnBusinessWrite(ctx context.Context) error
	OnProductWrite(ctx context.Context) error
}

// Config describes the consumer group subscription.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer applies write notifications in order: project into the read
// model, invalidate caches, then commit the offset. A crash between apply
// and commit replays the event, which is safe because every step is
// idempotent.
type Consumer struct {
	reader     *kafka.Reader
	businesses BusinessWriter
	products   ProductWriter
	inval      Invalidation
	logger     *zap.Logger
}

// NewConsumer creates a write-notification consumer.
func NewConsumer(cfg Config, b BusinessWriter, p ProductWriter, inv Invalidation, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, businesses: b, products: p, inval: inv, logger: log}
}

// Run consumes until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var ev Event
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			c.logger.Warn("malformed write event, skipping",
				zap.Int64("offset", msg.Offset), zap.Error(err))
			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				return err
			}
			continue
		}

		if err := c.apply(ctx, &ev); err != nil {
			// Leave the offset uncommitted so a restart retries the event.
			c.logger.Error("apply write event",
				zap.String("kind", ev.Kind), zap.String("op", ev.Op),
				zap.String("id", ev.ID), zap.Error(err))
			continue
		}
		metrics.WriteEvents.WithLabelValues(ev.Kind, ev.Op).Inc()

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return err
		}
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) apply(ctx context.Context, ev *Event) error {
	switch {
	case ev.Kind == KindBusiness && ev.Op == OpUpsert:
		if ev.Business == nil {
			return errors.New("business upsert without payload")
		}
		if err := c.businesses.Upsert(ctx, []domain.Business{toBusiness(ev.Business)}); err != nil {
			return err
		}
		return c.inval.OnBusinessWrite(ctx)

	case ev.Kind == KindBusiness && ev.Op == OpDelete:
		if err := c.businesses.Delete(ctx, ev.ID); err != nil {
			return err
		}
		return c.inval.OnBusinessWrite(ctx)

	case ev.Kind == KindProduct && ev.Op == OpUpsert:
		if ev.Product == nil {
			return errors.New("product upsert without payload")
		}
		if err := c.products.Upsert(ctx, []product.Row{toProductRow(ev.Product)}); err != nil {
			return err
		}
		return c.inval.OnProductWrite(ctx)

	case ev.Kind == KindProduct && ev.Op == OpDelete:
		if err := c.products.Delete(ctx, ev.ID); err != nil {
			return err
		}
		return c.inval.OnProductWrite(ctx)
	}
	return errors.New("unknown event kind/op: " + ev.Kind + "/" + ev.Op)
}

func toBusiness(p *BusinessPayload) domain.Business {
	b := domain.Business{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Kind:        domain.BusinessKind(p.Kind),
		Verified:    p.Verified,
		Rating:      p.Rating,
		CreatedAt:   time.Unix(p.CreatedAt, 0).UTC(),
	}
	if loc := toPoint(p.Latitude, p.Longitude); loc != nil {
		b.Location = loc
	}
	return b
}

func toProductRow(p *ProductPayload) product.Row {
	return product.Row{
		Product: domain.Product{
			ID:          p.ID,
			BusinessID:  p.BusinessID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    p.Quantity,
			Category:    domain.Category(p.Category),
			CreatedAt:   time.Unix(p.CreatedAt, 0).UTC(),
		},
		Rating:   p.OwnerRating,
		Location: toPoint(p.Latitude, p.Longitude),
	}
}

func toPoint(lat, lon *float64) *domgeo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	if !domgeo.ValidCoordinates(*lat, *lon) {
		return nil
	}
	return &domgeo.Point{Latitude: *lat, Longitude: *lon}
}
