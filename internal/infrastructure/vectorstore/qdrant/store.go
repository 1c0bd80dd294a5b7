// Package qdrant stores recipe chunks in a Qdrant collection over gRPC
package qdrant

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/alchemorsel/ragchef/internal/domain/recipe"
	"github.com/alchemorsel/ragchef/internal/infrastructure/config"
	"github.com/alchemorsel/ragchef/internal/ports/outbound"
)

const (
	restPort         = 6333
	defaultGRPCPort  = 6334
	defaultBatchSize = 5
)

// Store implements outbound.VectorStore on Qdrant
type Store struct {
	client     *qdrant.Client
	collection string
	vectorSize uint64
	batchSize  int
	logger     *zap.Logger
}

var _ outbound.VectorStore = (*Store)(nil)

// Endpoint is a parsed Qdrant gRPC address.
type Endpoint struct {
	Host   string
	Port   int
	UseTLS bool
}

// ParseEndpoint turns a Qdrant URL into a gRPC endpoint. The REST port 6333
// and a missing port both map to grpcPort.
func ParseEndpoint(raw string, grpcPort int) (Endpoint, error) {
	if grpcPort <= 0 {
		grpcPort = defaultGRPCPort
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid qdrant url: %w", err)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("invalid qdrant url %q: missing host", raw)
	}

	ep := Endpoint{Host: u.Hostname(), Port: grpcPort, UseTLS: u.Scheme == "https"}
	if p := u.Port(); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Endpoint{}, fmt.Errorf("invalid qdrant port %q", p)
		}
		if n != restPort {
			ep.Port = n
		}
	}
	return ep, nil
}

// NewStore connects to Qdrant
func NewStore(cfg config.VectorStoreConfig, logger *zap.Logger) (*Store, error) {
	ep, err := ParseEndpoint(cfg.URL, cfg.GRPCPort)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   ep.Host,
		Port:   ep.Port,
		APIKey: cfg.APIKey,
		UseTLS: ep.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}

	logger.Info("Qdrant client initialized",
		zap.String("host", ep.Host),
		zap.Int("port", ep.Port),
		zap.String("collection", cfg.Collection))

	return &Store{
		client:     client,
		collection: cfg.Collection,
		vectorSize: uint64(cfg.VectorSize),
		batchSize:  batch,
		logger:     logger.Named("qdrant"),
	}, nil
}

// EnsureCollection creates the cosine collection when it does not exist
func (s *Store) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	s.logger.Info("Created collection", zap.String("collection", s.collection), zap.Uint64("vector_size", s.vectorSize))
	return nil
}

// AddChunks upserts embedded chunks in batches and returns how many were stored
func (s *Store) AddChunks(ctx context.Context, chunks []recipe.Chunk) (int, error) {
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			s.logger.Warn("Skipping chunk without embedding", zap.String("chunk_id", c.ID))
			continue
		}
		points = append(points, toPoint(uuid.NewString(), c))
	}

	stored := 0
	for start := 0; start < len(points); start += s.batchSize {
		end := min(start+s.batchSize, len(points))
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: s.collection,
			Wait:           qdrant.PtrOf(true),
			Points:         points[start:end],
		})
		if err != nil {
			return stored, fmt.Errorf("failed to upsert batch at %d: %w", start, err)
		}
		stored += end - start
		s.logger.Debug("Stored batch", zap.Int("from", start), zap.Int("to", end))
	}
	return stored, nil
}

// Search returns the topK nearest chunks with their payload
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]recipe.RetrievedChunk, error) {
	if len(vector) == 0 {
		return nil, recipe.ErrEmptyEmbedding
	}
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	hits := make([]recipe.RetrievedChunk, 0, len(points))
	for _, p := range points {
		hits = append(hits, fromPayload(p.GetPayload(), p.GetScore()))
	}
	return hits, nil
}

// DeleteCollection drops the collection
func (s *Store) DeleteCollection(ctx context.Context) error {
	if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	s.logger.Info("Deleted collection", zap.String("collection", s.collection))
	return nil
}

// Info reports the collection's size and status
func (s *Store) Info(ctx context.Context) (recipe.CollectionInfo, error) {
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return recipe.CollectionInfo{}, fmt.Errorf("failed to get collection info: %w", err)
	}
	return recipe.CollectionInfo{
		Name:        s.collection,
		PointsCount: info.GetPointsCount(),
		Status:      strings.ToLower(info.GetStatus().String()),
	}, nil
}

// HealthCheck calls the Qdrant health endpoint
func (s *Store) HealthCheck(ctx context.Context) error {
	_, err := s.client.HealthCheck(ctx)
	return err
}

// Close releases the gRPC connection
func (s *Store) Close() error {
	return s.client.Close()
}

func toPoint(id string, c recipe.Chunk) *qdrant.PointStruct {
	meta := make(map[string]any, 4)
	for k, v := range c.Metadata() {
		if k != "doc_id" {
			meta[k] = v
		}
	}
	return &qdrant.PointStruct{
		Id:      qdrant.NewID(id),
		Vectors: qdrant.NewVectors(c.Embedding...),
		Payload: qdrant.NewValueMap(map[string]any{
			"chunk_id": c.ID,
			"content":  c.Content,
			"doc_id":   c.DocID,
			"metadata": meta,
		}),
	}
}

func fromPayload(payload map[string]*qdrant.Value, score float32) recipe.RetrievedChunk {
	hit := recipe.RetrievedChunk{
		Content:  payload["content"].GetStringValue(),
		DocID:    payload["doc_id"].GetStringValue(),
		Score:    score,
		Metadata: map[string]string{},
	}
	for k, v := range payload["metadata"].GetStructValue().GetFields() {
		hit.Metadata[k] = v.GetStringValue()
	}
	hit.Kind = recipe.ChunkKind(hit.Metadata["type"])
	return hit
}
