package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "lostandfound-api"

// PublicationMetrics counts publication workflow outcomes.
// A nil *PublicationMetrics records nothing.
type PublicationMetrics struct {
	created      metric.Int64Counter
	votes        metric.Int64Counter
	photoUploads metric.Int64Counter
}

// NewPublicationMetrics registers the publication counters on the given provider
func NewPublicationMetrics(provider metric.MeterProvider) (*PublicationMetrics, error) {
	meter := provider.Meter(meterName)

	created, err := meter.Int64Counter("lostandfound.publications.created",
		metric.WithDescription("Publications created, by publication type"))
	if err != nil {
		return nil, err
	}
	votes, err := meter.Int64Counter("lostandfound.publications.votes",
		metric.WithDescription("Vote changes, by requested vote"))
	if err != nil {
		return nil, err
	}
	photoUploads, err := meter.Int64Counter("lostandfound.photos.uploads",
		metric.WithDescription("Photo uploads to blob storage, by result"))
	if err != nil {
		return nil, err
	}

	return &PublicationMetrics{
		created:      created,
		votes:        votes,
		photoUploads: photoUploads,
	}, nil
}

func (m *PublicationMetrics) PublicationCreated(ctx context.Context, publicationType string) {
	if m == nil {
		return
	}
	m.created.Add(ctx, 1, metric.WithAttributes(attribute.String("publication.type", publicationType)))
}

func (m *PublicationMetrics) VoteCast(ctx context.Context, vote string) {
	if m == nil {
		return
	}
	m.votes.Add(ctx, 1, metric.WithAttributes(attribute.String("vote", vote)))
}

func (m *PublicationMetrics) PhotoUploaded(ctx context.Context, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.photoUploads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}
