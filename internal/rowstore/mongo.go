package rowstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/xyz-asif/sheetodo/pkg/errors"
)

type rowDocument struct {
	RowID string   `bson:"rowId"`
	Cells []string `bson:"cells"`
}

// Mongo keeps one document per row. Documents are read back in _id order,
// which follows insertion order for ObjectIDs generated by the driver.
type Mongo struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongo(db *mongo.Database, collectionName string, timeout time.Duration) (*Mongo, error) {
	if collectionName == "" {
		collectionName = "todos"
	}
	collection := db.Collection(collectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rowId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create rowId index: %w", classifyMongo(err))
	}

	return &Mongo{collection: collection, timeout: timeout}, nil
}

func (m *Mongo) ReadAllRows(ctx context.Context) ([]Row, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", classifyMongo(err))
	}
	defer cursor.Close(ctx)

	var docs []rowDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode rows: %w", classifyMongo(err))
	}

	rows := make([]Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, Row(d.Cells))
	}
	return rows, nil
}

func (m *Mongo) AppendRow(ctx context.Context, row Row) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	_, err := m.collection.InsertOne(ctx, rowDocument{RowID: row.ID(), Cells: row.clone()})
	if err != nil {
		return fmt.Errorf("append row: %w", classifyMongo(err))
	}
	return nil
}

func (m *Mongo) UpdateRow(ctx context.Context, id string, row Row) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	result, err := m.collection.UpdateOne(ctx,
		bson.M{"rowId": id},
		bson.M{"$set": bson.M{"cells": row.clone()}},
	)
	if err != nil {
		return fmt.Errorf("update row: %w", classifyMongo(err))
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (m *Mongo) UpdateRows(ctx context.Context, rows map[string]Row) error {
	if len(rows) == 0 {
		return nil
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	models := make([]mongo.WriteModel, 0, len(rows))
	for id, row := range rows {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"rowId": id}).
			SetUpdate(bson.M{"$set": bson.M{"cells": row.clone()}}))
	}
	if _, err := m.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("batch update: %w", classifyMongo(err))
	}
	return nil
}

func (m *Mongo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// Mongo server codes for failed authentication and missing privileges.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
)

func classifyMongo(err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && (cmdErr.Code == codeUnauthorized || cmdErr.Code == codeAuthenticationFailed) {
		return fmt.Errorf("%w: %w", apperrors.ErrStoreAuth, err)
	}
	return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
}

var (
	_ Store        = (*Mongo)(nil)
	_ BatchUpdater = (*Mongo)(nil)
)
