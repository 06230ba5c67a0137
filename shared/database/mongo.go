package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yongjun823/sagemaker-example/shared/registry"
)

const endpointsCollection = "Endpoints"

// Mongo holds a mongo client along the registry operations backed by it
type Mongo struct {
	client   *mongo.Client
	Database string
}

// ClientFromURI connects to the mongo deployment described by the URI, the
// connection is pinged before returning
func ClientFromURI(ctx context.Context, uri string, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &Mongo{
		client:   client,
		Database: database,
	}, nil
}

// GetEndpoints returns every serving endpoint on the registry collection
func (m *Mongo) GetEndpoints(ctx context.Context) ([]*registry.Endpoint, error) {
	return findEndpoints(ctx, m, bson.D{})
}

// GetActiveEndpoints returns the endpoints marked as active
func (m *Mongo) GetActiveEndpoints(ctx context.Context) ([]*registry.Endpoint, error) {
	return findEndpoints(ctx, m, bson.D{{Key: "active", Value: true}})
}

// GetEndpointsFromList returns the endpoints whose name is on the given list
func (m *Mongo) GetEndpointsFromList(ctx context.Context, names []string) ([]*registry.Endpoint, error) {
	return findEndpoints(ctx, m, bson.D{{Key: "name", Value: bson.M{"$in": names}}})
}

// InsertEndpoints writes the given endpoints to the registry collection
func (m *Mongo) InsertEndpoints(ctx context.Context, endpoints []*registry.Endpoint) error {
	documents := make([]any, 0, len(endpoints))
	for _, endpoint := range endpoints {
		documents = append(documents, endpoint)
	}

	_, err := m.collection(endpointsCollection).InsertMany(ctx, documents)
	return err
}

func (m *Mongo) collection(name string) *mongo.Collection {
	return m.client.Database(m.Database).Collection(name)
}

// findEndpoints decodes every endpoint document matching the filter
func findEndpoints(ctx context.Context, m *Mongo, filter bson.D) ([]*registry.Endpoint, error) {
	cursor, err := m.collection(endpointsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	endpoints := []*registry.Endpoint{}
	if err := cursor.All(ctx, &endpoints); err != nil {
		return nil, err
	}

	return endpoints, nil
}
