// Package docstore connects to the MongoDB deployment holding user documents.
package docstore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

const pingTimeout = 5 * time.Second

// Client bundles a connected client with the database the service uses.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri, pings the primary and selects dbName.
func New(ctx context.Context, uri, dbName string) (*Client, error) {
	if dbName == "" {
		return nil, fmt.Errorf("platform/docstore: database name must be provided")
	}
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("platform/docstore: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("platform/docstore: ping: %w", err)
	}

	return &Client{client: client, db: client.Database(dbName)}, nil
}

// Database returns the selected database.
func (c *Client) Database() *mongo.Database {
	return c.db
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("platform/docstore: disconnect: %w", err)
	}
	return nil
}
