package closer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0)

	var order []string
	for _, name := range []string{"postgres", "redis", "kafka"} {
		c.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"kafka", "redis", "postgres"}, order)

	// повторный вызов ничего не делает
	require.NoError(t, c.Close(context.Background()))
	assert.Len(t, order, 3)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("redis", func(context.Context) error { return errors.New("connection reset") })
	c.Add("minio", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[!] redis: connection reset")
}

func TestCloser_ForcesRemainingOnTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	forced := make(chan struct{}, 1)
	c.Add("postgres", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); ok {
			forced <- struct{}{}
		}
		return nil
	})
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	var calls atomic.Int32
	c.Add("kafka", func(context.Context) error {
		// первый (штатный) вызов зависает, принудительный отрабатывает сразу
		if calls.Add(1) == 1 {
			<-block
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	assert.Len(t, forced, 1)
}
