package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/altilar-labs/microlob/pkg/core"
)

func TestFormatPriceAppliesTickSize(t *testing.T) {
	p := NewBookPublisher(nil, "book", 0.01, zerolog.Nop())
	assert.Equal(t, "1.00", p.formatPrice(100))
	assert.Equal(t, "0.50", p.formatPrice(50))
}

func TestPublishFailsFastAgainstUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
	})
	p := NewBookPublisher(client, "book", 0.01, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	engine, err := core.NewMatchingEngine(4, func() int64 { return 0 })
	require.NoError(t, err)

	err = p.Publish(ctx, 1, engine)
	require.Error(t, err)
}
