package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"enricher/internal/platform/logger"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) Produce(_ context.Context, records ...*kgo.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, records...)
	return nil
}

func TestPublisherPush(t *testing.T) {
	ctx := context.Background()

	t.Run("encodes and keys every document", func(t *testing.T) {
		prod := &fakeProducer{}
		p := New(prod, logger.New())

		docs := []Document{
			{Key: "a", Value: map[string]string{"id": "a"}},
			{Key: "b", Value: map[string]string{"id": "b"}},
		}
		require.NoError(t, p.Push(ctx, "out-topic", docs))

		require.Len(t, prod.records, 2)
		assert.Equal(t, "out-topic", prod.records[0].Topic)
		assert.Equal(t, "a", string(prod.records[0].Key))
		assert.JSONEq(t, `{"id":"a"}`, string(prod.records[0].Value))
	})

	t.Run("an empty batch touches nothing", func(t *testing.T) {
		prod := &fakeProducer{}
		p := New(prod, logger.New())
		require.NoError(t, p.Push(ctx, "out-topic", nil))
		assert.Empty(t, prod.records)
	})

	t.Run("a keyless document gets a generated key", func(t *testing.T) {
		prod := &fakeProducer{}
		p := New(prod, logger.New())
		require.NoError(t, p.Push(ctx, "out-topic", []Document{{Value: "v"}}))
		require.Len(t, prod.records, 1)
		assert.NotEmpty(t, prod.records[0].Key)
	})

	t.Run("a transport failure surfaces as a publish Error", func(t *testing.T) {
		prod := &fakeProducer{err: errors.New("broker down")}
		p := New(prod, logger.New())

		err := p.Push(ctx, "out-topic", []Document{{Key: "a", Value: "v"}})
		var pubErr *Error
		require.ErrorAs(t, err, &pubErr)
		assert.Equal(t, "out-topic", pubErr.Topic)
	})

	t.Run("an unencodable document fails before producing", func(t *testing.T) {
		prod := &fakeProducer{}
		p := New(prod, logger.New())

		err := p.Push(ctx, "out-topic", []Document{{Key: "a", Value: make(chan int)}})
		var pubErr *Error
		require.ErrorAs(t, err, &pubErr)
		assert.Empty(t, prod.records)
	})
}
