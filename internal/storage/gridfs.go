package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoClient connects and pings.
func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// GridFSStore keeps images in a MongoDB GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore opens bucket in database db.
func NewGridFSStore(client *mongo.Client, db, bucket string) (*GridFSStore, error) {
	b, err := gridfs.NewBucket(client.Database(db), options.GridFSBucket().SetName(bucket))
	if err != nil {
		return nil, err
	}
	return &GridFSStore{bucket: b}, nil
}

// Put streams r into a new GridFS file and returns its hex object id.
func (s *GridFSStore) Put(ctx context.Context, name, contentType string, r io.Reader) (string, int64, error) {
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "contentType", Value: contentType}})
	stream, err := s.bucket.OpenUploadStream(name, opts)
	if err != nil {
		return "", 0, err
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetWriteDeadline(dl)
	}
	n, err := io.Copy(stream, r)
	if err != nil {
		_ = stream.Abort()
		return "", 0, err
	}
	if err := stream.Close(); err != nil {
		return "", 0, err
	}
	id, ok := stream.FileID.(primitive.ObjectID)
	if !ok {
		return "", 0, fmt.Errorf("gridfs: unexpected file id %T", stream.FileID)
	}
	return id.Hex(), n, nil
}

// Open returns a reader over a stored file.
func (s *GridFSStore) Open(ctx context.Context, objectID string) (io.ReadCloser, error) {
	oid, err := primitive.ObjectIDFromHex(objectID)
	if err != nil {
		return nil, ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = stream.SetReadDeadline(dl)
	}
	return stream, nil
}

// Delete removes a stored file.  Missing files are not an error.
func (s *GridFSStore) Delete(ctx context.Context, objectID string) error {
	oid, err := primitive.ObjectIDFromHex(objectID)
	if err != nil {
		return nil
	}
	err = s.bucket.DeleteContext(ctx, oid)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil
	}
	return err
}
