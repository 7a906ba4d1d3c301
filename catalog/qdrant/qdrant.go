// Package qdrant speichert den Produkt-Katalog in einer Qdrant Collection.
//
// Qdrant dient nur als Speicher: List liest alle Punkte per Scroll, das
// Ranking passiert im match-Package. Die Collection wird beim ersten Save
// mit der Dimension des ersten Embeddings und Cosine-Distanz angelegt.
package qdrant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/7blacky7/vismatch/catalog"
)

const (
	defaultPort       = 6334
	defaultCollection = "products"
	scrollPageSize    = 256
)

// Payload-Felder
const (
	fieldProductID = "product_id"
	fieldName      = "name"
	fieldCategory  = "category"
	fieldImageURL  = "image_url"
	fieldMetadata  = "metadata"
	fieldCreatedAt = "created_at"
	fieldUpdatedAt = "updated_at"
)

func init() {
	catalog.Register(catalog.DriverQdrant, func(ctx context.Context, cfg catalog.Config) (catalog.Store, error) {
		return New(Config{URL: cfg.QdrantURL, APIKey: cfg.QdrantAPIKey, Collection: cfg.QdrantCollection})
	})
}

// Config enthaelt die Verbindungsdaten
type Config struct {
	// URL des gRPC-Endpunkts, z.B. "http://localhost:6334"
	URL        string
	APIKey     string
	Collection string
}

// Store ist ein catalog.Store auf Qdrant
type Store struct {
	client     *qdrant.Client
	collection string

	mu    sync.Mutex
	ready bool
}

// New erstellt den gRPC-Client. Die Verbindung wird erst beim ersten
// Aufruf aufgebaut.
func New(cfg Config) (*Store, error) {
	qcfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	collection := cfg.Collection
	if collection == "" {
		collection = defaultCollection
	}
	return &Store{client: client, collection: collection}, nil
}

// clientConfig zerlegt die URL in Host, Port und TLS
func clientConfig(cfg Config) (*qdrant.Config, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: qdrant url is required", catalog.ErrInvalidConfig)
	}

	raw := cfg.URL
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: parse qdrant url: %v", catalog.ErrInvalidConfig, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: qdrant url has no host", catalog.ErrInvalidConfig)
	}

	port := defaultPort
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("%w: invalid port: %v", catalog.ErrInvalidConfig, err)
		}
	}

	return &qdrant.Config{
		Host:   u.Hostname(),
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	}, nil
}

// ensureCollection legt die Collection an falls sie fehlt
func (s *Store) ensureCollection(ctx context.Context, size int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(size),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("create collection %s: %w", s.collection, err)
		}
	}
	s.ready = true
	return nil
}

// exists prueft ohne Seiteneffekt ob die Collection existiert
func (s *Store) exists(ctx context.Context) (bool, error) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()
	if ready {
		return true, nil
	}
	return s.client.CollectionExists(ctx, s.collection)
}

// List implementiert catalog.Store
func (s *Store) List(ctx context.Context, f catalog.Filter) ([]*catalog.Product, error) {
	ok, err := s.exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if !ok {
		return []*catalog.Product{}, nil
	}

	var (
		products []*catalog.Product
		offset   *qdrant.PointId
		limit    = uint32(scrollPageSize + 1)
	)
	for {
		points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: s.collection,
			Filter:         categoryFilter(f.Category),
			Offset:         offset,
			Limit:          &limit,
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll products: %w", err)
		}

		// Ein Punkt mehr als die Seite markiert den Anfang der naechsten
		page := points
		if len(points) > scrollPageSize {
			page = points[:scrollPageSize]
		}
		for _, pt := range page {
			p, err := fromPoint(pt.GetPayload(), pt.GetVectors().GetVector().GetData())
			if err != nil {
				return nil, err
			}
			products = append(products, p)
		}

		if len(points) <= scrollPageSize {
			break
		}
		offset = points[scrollPageSize].GetId()
	}

	return f.Apply(products), nil
}

// Get implementiert catalog.Store
func (s *Store) Get(ctx context.Context, id string) (*catalog.Product, error) {
	ok, err := s.exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !ok {
		return nil, catalog.NotFound("catalog: get", id)
	}

	points, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{PointID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if len(points) == 0 {
		return nil, catalog.NotFound("catalog: get", id)
	}
	return fromPoint(points[0].GetPayload(), points[0].GetVectors().GetVector().GetData())
}

// Save implementiert catalog.Store
func (s *Store) Save(ctx context.Context, p *catalog.Product) error {
	now := time.Now()
	if p.ID != "" && p.CreatedAt.IsZero() {
		// Erstellzeit beim Ersetzen beibehalten
		if old, err := s.Get(ctx, p.ID); err == nil {
			p.CreatedAt = old.CreatedAt
		}
	}
	if err := catalog.Prepare(p, now); err != nil {
		return err
	}
	if err := s.ensureCollection(ctx, len(p.Embedding)); err != nil {
		return err
	}

	payload, err := toPayload(p)
	if err != nil {
		return err
	}

	wait := true
	_, err = s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points: []*qdrant.PointStruct{{
			Id:      PointID(p.ID),
			Vectors: qdrant.NewVectors(p.Embedding...),
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// Delete implementiert catalog.Store
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	wait := true
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         qdrant.NewPointsSelector(PointID(id)),
	})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Clear loescht die Collection. Sie wird beim naechsten Save neu angelegt.
func (s *Store) Clear(ctx context.Context) (int, error) {
	ok, err := s.exists(ctx)
	if err != nil || !ok {
		return 0, err
	}

	exact := true
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return 0, fmt.Errorf("delete collection: %w", err)
	}

	s.mu.Lock()
	s.ready = false
	s.mu.Unlock()
	return int(n), nil
}

// Close schliesst die gRPC-Verbindung
func (s *Store) Close() error {
	return s.client.Close()
}

// PointID bildet eine Produkt-ID auf eine Qdrant Punkt-ID ab.
// UUIDs werden direkt verwendet, andere IDs deterministisch per UUIDv5.
func PointID(id string) *qdrant.PointId {
	if u, err := uuid.Parse(id); err == nil {
		return qdrant.NewID(u.String())
	}
	return qdrant.NewID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("vismatch:"+id)).String())
}

func categoryFilter(category string) *qdrant.Filter {
	if category == "" {
		return nil
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{{
			ConditionOneOf: &qdrant.Condition_Field{
				Field: &qdrant.FieldCondition{
					Key:   fieldCategory,
					Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: category}},
				},
			},
		}},
	}
}

func toPayload(p *catalog.Product) (map[string]*qdrant.Value, error) {
	payload := map[string]*qdrant.Value{
		fieldProductID: qdrant.NewValueString(p.ID),
		fieldName:      qdrant.NewValueString(p.Name),
		fieldCategory:  qdrant.NewValueString(p.Category),
		fieldImageURL:  qdrant.NewValueString(p.ImageRef),
		fieldCreatedAt: qdrant.NewValueInt(p.CreatedAt.UnixNano()),
		fieldUpdatedAt: qdrant.NewValueInt(p.UpdatedAt.UnixNano()),
	}
	if len(p.Metadata) > 0 {
		// Metadata als JSON-String, beliebige Werte ohne Konvertierung
		b, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		payload[fieldMetadata] = qdrant.NewValueString(string(b))
	}
	return payload, nil
}

var errMissingProductID = errors.New("qdrant point has no product_id")

func fromPoint(payload map[string]*qdrant.Value, vector []float32) (*catalog.Product, error) {
	p := &catalog.Product{
		ID:        payload[fieldProductID].GetStringValue(),
		Name:      payload[fieldName].GetStringValue(),
		Category:  payload[fieldCategory].GetStringValue(),
		ImageRef:  payload[fieldImageURL].GetStringValue(),
		Embedding: vector,
		CreatedAt: time.Unix(0, payload[fieldCreatedAt].GetIntegerValue()).UTC(),
		UpdatedAt: time.Unix(0, payload[fieldUpdatedAt].GetIntegerValue()).UTC(),
	}
	if p.ID == "" {
		return nil, errMissingProductID
	}

	if raw := payload[fieldMetadata].GetStringValue(); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of %s: %w", p.ID, err)
		}
	}
	return p, nil
}

var _ catalog.Store = (*Store)(nil)
