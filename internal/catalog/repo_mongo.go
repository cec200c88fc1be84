package catalog

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoRepo struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoRepo maps each Collection onto the MongoDB collection of the same
// name.
func NewMongoRepo(db *mongo.Database, logger *zap.Logger) Repository {
	return &mongoRepo{db: db, logger: logger}
}

func (m *mongoRepo) Find(ctx context.Context, coll Collection, f Filter) ([]Document, error) {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	opts := options.Find()
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := m.db.Collection(string(coll)).Find(ctx, filter, opts)
	if err != nil {
		m.logger.Error("failed to query documents", zap.String("collection", string(coll)), zap.Error(err))
		return nil, err
	}
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, fromBSON(r))
	}
	return docs, nil
}

func (m *mongoRepo) FindOne(ctx context.Context, coll Collection, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	if err := m.db.Collection(string(coll)).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		m.logger.Error("failed to find document", zap.String("collection", string(coll)), zap.Error(err))
		return nil, err
	}
	return fromBSON(raw), nil
}

func (m *mongoRepo) Insert(ctx context.Context, coll Collection, doc Document) (string, error) {
	body := bson.M{}
	for k, v := range doc {
		body[k] = v
	}
	body["_id"] = primitive.NewObjectID()

	res, err := m.db.Collection(string(coll)).InsertOne(ctx, body)
	if err != nil {
		m.logger.Error("failed to insert document", zap.String("collection", string(coll)), zap.Error(err))
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("unexpected inserted id type")
	}
	return oid.Hex(), nil
}

func (m *mongoRepo) DeleteOwned(ctx context.Context, coll Collection, id, email string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, nil
	}
	res, err := m.db.Collection(string(coll)).DeleteOne(ctx, bson.M{"_id": oid, "email": email})
	if err != nil {
		m.logger.Error("failed to delete document", zap.String("collection", string(coll)), zap.Error(err))
		return 0, err
	}
	return res.DeletedCount, nil
}

// fromBSON renders ObjectIDs as hex so documents serialize like the other
// backends.
func fromBSON(raw bson.M) Document {
	d := make(Document, len(raw))
	for k, v := range raw {
		if oid, ok := v.(primitive.ObjectID); ok {
			d[k] = oid.Hex()
			continue
		}
		d[k] = v
	}
	return d
}
