package redis

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/pkg/clients"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

const runLockPrefix = "dropship:lock:"

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу токена.
var releaseScript = r.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock пускает один запуск на вид операции, поверх SET NX PX.
type RunLock struct {
	client *clients.RedisClient
}

func NewRunLock(client *clients.RedisClient) *RunLock {
	return &RunLock{client: client}
}

// Acquire захватывает ключ на ttl. Если ключ занят, возвращает e.ErrRunInProgress.
func (l *RunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lockKey := runLockPrefix + key
	token := uuid.NewString()

	ok, err := l.client.Client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if !ok {
		return nil, e.ErrRunInProgress
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.Client, []string{lockKey}, token).Err(); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		return nil
	}
	return release, nil
}
