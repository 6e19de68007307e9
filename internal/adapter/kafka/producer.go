package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/finsearch/internal/core/domain"
	"github.com/niksmo/finsearch/internal/core/port"
	"github.com/niksmo/finsearch/pkg/retry"
	"github.com/niksmo/finsearch/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.ItemsPublisher = (*ExportItemsProducer)(nil)

const produceAttempts = 3

// An ExportItemsProducer publishes built export items keyed by
// "<shopkey>:<item id>".
type ExportItemsProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewExportItemsProducer(
	opts ...ProducerOpt,
) (ExportItemsProducer, error) {
	const op = "NewExportItemsProducer"

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return ExportItemsProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if options.cl == nil || options.encoder == nil {
		return ExportItemsProducer{}, fmt.Errorf("%s: %w", op, ErrTooFewOpts)
	}
	return ExportItemsProducer{options.cl, options.encoder}, nil
}

func (p ExportItemsProducer) Close() {
	const op = "ExportItemsProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p ExportItemsProducer) PublishItems(
	ctx context.Context, shopKey string, items []domain.ExportItem,
) error {
	const op = "ExportItemsProducer.PublishItems"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if len(items) == 0 {
		return nil
	}

	rs, err := p.createRecords(shopKey, items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := p.produce(ctx, rs); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (p ExportItemsProducer) createRecords(
	shopKey string, items []domain.ExportItem,
) ([]*kgo.Record, error) {
	const op = "ExportItemsProducer.createRecords"

	rs := make([]*kgo.Record, 0, len(items))
	for _, item := range items {
		v, err := p.encoder.Encode(toSchemaV1(shopKey, item))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		key := []byte(shopKey + ":" + item.ID)
		rs = append(rs, &kgo.Record{Key: key, Value: v})
	}
	return rs, nil
}

func (p ExportItemsProducer) produce(
	ctx context.Context, rs []*kgo.Record,
) error {
	const op = "ExportItemsProducer.produce"

	cfg := retry.RetryConfig{
		MaxAttempts: produceAttempts,
		ShouldRetry: isRetriable,
	}
	err := retry.Do(ctx, cfg, func() error {
		return p.cl.ProduceSync(ctx, rs...).FirstErr()
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func toSchemaV1(shopKey string, item domain.ExportItem) (s schema.ExportItemV1) {
	s.ShopKey = shopKey
	s.ID = item.ID
	s.Name = item.Name
	s.Description = item.Description
	s.URL = item.URL
	s.DateAdded = item.DateAdded
	s.SalesFrequency = int64(item.SalesFrequency)
	s.Keywords = nonNil(item.Keywords)
	s.OrderNumbers = nonNil(item.OrderNumbers)
	s.UserGroups = nonNil(item.UserGroups)
	s.Attributes = item.Attributes
	s.Properties = item.Properties

	s.Prices = make([]schema.ExportPriceV1, len(item.Prices))
	for i, price := range item.Prices {
		s.Prices[i] = schema.ExportPriceV1{
			UnitPrice: price.UnitPrice.StringFixed(2),
			Currency:  price.Currency,
			UserGroup: price.UserGroup,
		}
	}

	s.Images = make([]schema.ExportImageV1, len(item.Images))
	for i, img := range item.Images {
		s.Images[i] = schema.ExportImageV1{URL: img.URL, Type: img.Type}
	}
	return s
}

func nonNil(vs []string) []string {
	if vs == nil {
		return []string{}
	}
	return vs
}
