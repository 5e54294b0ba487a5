package cache

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Client *redis.Client

func InitRedis(ctx context.Context) {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := Client.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")
}

// Snapshots caches rendered JSON payloads under a TTL. It tolerates a nil
// client; every Get is then a miss and every Set a no-op.
type Snapshots struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshots(client *redis.Client, ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Snapshots{client: client, ttl: ttl}
}

func (s *Snapshots) Get(ctx context.Context, key string) ([]byte, bool) {
	if s == nil || s.client == nil {
		return nil, false
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache get %s: %v", key, err)
		}
		return nil, false
	}
	return payload, true
}

func (s *Snapshots) Set(ctx context.Context, key string, payload []byte) {
	if s == nil || s.client == nil {
		return
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
}

// Invalidate drops cached snapshots after a write so the next dashboard read
// rebuilds from the database.
func (s *Snapshots) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache invalidate: %v", err)
	}
}
