package bookings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores bookings as JSON documents with a per-date index.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a repository on top of an existing client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	if client == nil {
		panic("bookings: redis client required")
	}
	return &RedisRepository{client: client, prefix: "lifecoach"}
}

func (r *RedisRepository) bookingKey(id string) string {
	return fmt.Sprintf("%s:booking:%s", r.prefix, id)
}

func (r *RedisRepository) dateKey(date string) string {
	return fmt.Sprintf("%s:bookings:date:%s", r.prefix, date)
}

func (r *RedisRepository) allKey() string {
	return r.prefix + ":bookings:all"
}

func (r *RedisRepository) Create(ctx context.Context, b *Booking) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("bookings: marshal booking: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.bookingKey(b.ID), data, 0)
		pipe.SAdd(ctx, r.dateKey(b.SelectedDate), b.ID)
		pipe.ZAdd(ctx, r.allKey(), redis.Z{Score: float64(b.CreatedAt.UnixNano()), Member: b.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("bookings: redis create: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Booking, error) {
	data, err := r.client.Get(ctx, r.bookingKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: redis get: %w", err)
	}
	return decodeBooking(data)
}

func (r *RedisRepository) ListByDate(ctx context.Context, date string) ([]*Booking, error) {
	var ids []string
	var err error
	if date == "" {
		ids, err = r.client.ZRange(ctx, r.allKey(), 0, -1).Result()
	} else {
		ids, err = r.client.SMembers(ctx, r.dateKey(date)).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: redis index: %w", err)
	}
	out := make([]*Booking, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.bookingKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("bookings: redis mget: %w", err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		b, err := decodeBooking([]byte(s))
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sortByCreated(out)
	return out, nil
}

func (r *RedisRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error) {
	key := r.bookingKey(id)
	var updated *Booking
	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}
		b, err := decodeBooking(data)
		if err != nil {
			return err
		}
		b.Status = status
		encoded, err := json.Marshal(b)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = b
		return nil
	}, key)
	if errors.Is(err, ErrBookingNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("bookings: redis update status: %w", err)
	}
	return updated, nil
}

// Ping checks the Redis connection.
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeBooking(data []byte) (*Booking, error) {
	var b Booking
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("bookings: unmarshal booking: %w", err)
	}
	return &b, nil
}
