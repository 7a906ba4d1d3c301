// Package redis speichert den Produkt-Katalog in Redis.
//
// Jedes Produkt liegt als JSON unter "product:<id>", der Sorted Set
// "products" haelt die IDs nach Erstellzeit.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/7blacky7/vismatch/catalog"
)

const (
	productKeyPrefix = "product:"
	indexKey         = "products"
)

func init() {
	catalog.Register(catalog.DriverRedis, func(ctx context.Context, cfg catalog.Config) (catalog.Store, error) {
		return Open(ctx, cfg.RedisURL)
	})
}

// Store ist ein catalog.Store auf Redis
type Store struct {
	client *redis.Client
}

// Open verbindet sich mit der URL (redis://host:port/db)
func Open(ctx context.Context, url string) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: redis url is empty", catalog.ErrInvalidConfig)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", catalog.ErrInvalidConfig, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client), nil
}

// New verwendet einen bestehenden Client
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) key(id string) string {
	return productKeyPrefix + id
}

// List implementiert catalog.Store
func (s *Store) List(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	ids, err := s.client.ZRevRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(ids) == 0 {
		return []*catalog.Product{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*catalog.Product, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Index-Eintrag ohne Datensatz
			continue
		}
		var p catalog.Product
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("decode product %s: %w", ids[i], err)
		}
		products = append(products, &p)
	}
	return f.Apply(products), nil
}

// Get implementiert catalog.Store
func (s *Store) Get(ctx context.Context, id string) (*catalog.Product, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, catalog.NotFound("catalog: get", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	var p catalog.Product
	if err := json.Unmarshal([]byte(val), &p); err != nil {
		return nil, fmt.Errorf("decode product %s: %w", id, err)
	}
	return &p, nil
}

// Save implementiert catalog.Store
func (s *Store) Save(ctx context.Context, p *catalog.Product) error {
	if err := catalog.Prepare(p, time.Now()); err != nil {
		return err
	}

	val, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(p.ID), val, 0)
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(p.CreatedAt.UnixMilli()), Member: p.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	return nil
}

// Delete implementiert catalog.Store
func (s *Store) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.ZRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if del.Val() == 0 {
		return catalog.NotFound("catalog: delete", id)
	}
	return nil
}

// Clear implementiert catalog.Store
func (s *Store) Clear(ctx context.Context) (int, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.key(id))
	}
	keys = append(keys, indexKey)

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear products: %w", err)
	}

	// Der Index-Key selbst zaehlt nicht als Produkt
	n := int(del.Val())
	if len(ids) > 0 {
		n--
	}
	return n, nil
}

// Close schliesst den Client
func (s *Store) Close() error {
	return s.client.Close()
}

var _ catalog.Store = (*Store)(nil)
