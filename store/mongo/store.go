package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopt "go.mongodb.org/mongo-driver/mongo/options"

	"github.com/w-h-a/rag/store"
)

// numCandidates is the candidate pool handed to Atlas before the final limit
// is applied.
const numCandidates = 100

type mongoStore struct {
	options    store.Options
	client     *mongo.Client
	collection *mongo.Collection
}

type chunkDoc struct {
	Id        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Metadata  map[string]any     `bson:"metadata"`
	Embedding []float32          `bson:"embedding,omitempty"`
	Score     float32            `bson:"score,omitempty"`
}

func (s *mongoStore) Insert(ctx context.Context, chunks []store.Chunk) ([]string, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	docs := make([]any, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chunkDoc{
			Content:   c.Content,
			Metadata:  c.Metadata,
			Embedding: c.Embedding,
		})
	}

	rsp, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("insert chunks: %w", err)
	}

	ids := make([]string, 0, len(rsp.InsertedIDs))
	for _, id := range rsp.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}

	return ids, nil
}

func (s *mongoStore) Search(ctx context.Context, vector []float32, filter map[string]string, limit int) ([]store.Chunk, error) {
	if limit < 1 {
		return nil, nil
	}

	pipeline := []bson.M{
		{
			"$vectorSearch": bson.M{
				"index":         s.options.Index,
				"path":          "embedding",
				"queryVector":   vector,
				"numCandidates": numCandidates,
				"limit":         limit,
			},
		},
		{
			"$project": bson.M{
				"content":   1,
				"metadata":  1,
				"embedding": 1,
				"score":     bson.M{"$meta": "vectorSearchScore"},
			},
		},
	}

	// Metadata filters run after the vector stage so the index stays simple.
	if len(filter) > 0 {
		pipeline = append(pipeline, bson.M{"$match": metadataFilter(filter)})
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chunkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return toChunks(docs), nil
}

func (s *mongoStore) Find(ctx context.Context, filter map[string]string) ([]store.Chunk, error) {
	cursor, err := s.collection.Find(ctx, metadataFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("find chunks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []chunkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	return toChunks(docs), nil
}

func (s *mongoStore) Count(ctx context.Context, filter map[string]string) (int64, error) {
	return s.collection.CountDocuments(ctx, metadataFilter(filter))
}

func (s *mongoStore) CountBy(ctx context.Context, field string, filter map[string]string) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$match": metadataFilter(filter)},
		{"$group": bson.M{
			"_id":   "$metadata." + field,
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Key   string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(groups))
	for _, g := range groups {
		if len(g.Key) == 0 {
			continue
		}
		counts[g.Key] = g.Count
	}

	return counts, nil
}

func (s *mongoStore) Distinct(ctx context.Context, field string) ([]string, error) {
	values, err := s.collection.Distinct(ctx, "metadata."+field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok && len(str) > 0 {
			out = append(out, str)
		}
	}

	return out, nil
}

func (s *mongoStore) Clear(ctx context.Context) (int64, error) {
	rsp, err := s.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("clear collection: %w", err)
	}
	return rsp.DeletedCount, nil
}

func metadataFilter(filter map[string]string) bson.M {
	match := bson.M{}
	for k, v := range filter {
		match["metadata."+k] = v
	}
	return match
}

func toChunks(docs []chunkDoc) []store.Chunk {
	chunks := make([]store.Chunk, 0, len(docs))
	for _, d := range docs {
		chunks = append(chunks, store.Chunk{
			Id:        d.Id.Hex(),
			Content:   d.Content,
			Metadata:  d.Metadata,
			Embedding: d.Embedding,
			Score:     d.Score,
		})
	}
	return chunks
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Database) == 0 ||
		len(options.Collection) == 0 ||
		len(options.Index) == 0 {
		panic("missing location, database, collection, or index for mongo store")
	}

	client, err := mongo.Connect(options.Context, mongoopt.Client().ApplyURI(options.Location))
	if err != nil {
		detail := "failed to connect with mongo store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	if err := client.Ping(options.Context, nil); err != nil {
		detail := "failed to ping with mongo store"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	return &mongoStore{
		options:    options,
		client:     client,
		collection: client.Database(options.Database).Collection(options.Collection),
	}
}
