package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const CollectionName = "users"

// mongoUser keeps profile fields at the top level of the document, next to
// email and role, the way existing users records are shaped.
type mongoUser struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Role      Role               `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt,omitempty"`
	UpdatedAt time.Time          `bson:"updatedAt,omitempty"`
	Profile   bson.M             `bson:",inline"`
}

func (m mongoUser) toUser() *User {
	profile := map[string]any(m.Profile)
	if profile == nil {
		profile = map[string]any{}
	}
	role := m.Role
	if role == "" {
		role = RoleUser
	}
	return &User{
		ID:        m.ID.Hex(),
		Email:     m.Email,
		Role:      role,
		Profile:   profile,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

type mongoRepo struct {
	coll    *mongo.Collection
	logger  *zap.Logger
	nowFunc func() time.Time
}

func NewMongoRepo(coll *mongo.Collection, logger *zap.Logger) Repository {
	return &mongoRepo{
		coll:    coll,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// EnsureIndexes creates the unique email index Register depends on.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	return err
}

// Register upserts with $setOnInsert so an existing record is never touched;
// the unique index turns a lost upsert race into a duplicate key error.
func (m *mongoRepo) Register(ctx context.Context, u *User) (RegisterResult, error) {
	now := m.nowFunc().UTC()
	profile := u.Profile
	if profile == nil {
		profile = map[string]any{}
	}
	insert := bson.M{}
	for k, v := range profile {
		insert[k] = v
	}
	insert["email"] = u.Email
	insert["role"] = u.Role
	insert["createdAt"] = now
	insert["updatedAt"] = now
	update := bson.M{"$setOnInsert": insert}

	res, err := m.coll.UpdateOne(ctx, bson.M{"email": u.Email}, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			m.logger.Debug("duplicate registration lost the race", zap.String("email", u.Email))
			return RegisterResult{Created: false}, nil
		}
		m.logger.Error("failed to upsert user", zap.Error(err))
		return RegisterResult{}, err
	}
	if res.UpsertedID == nil {
		m.logger.Debug("email already registered", zap.String("email", u.Email))
		return RegisterResult{Created: false}, nil
	}

	var id string
	switch v := res.UpsertedID.(type) {
	case primitive.ObjectID:
		id = v.Hex()
	case string:
		id = v
	default:
		return RegisterResult{}, errors.New("unexpected upserted id type")
	}
	return RegisterResult{Created: true, ID: &id}, nil
}

func (m *mongoRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	var doc mongoUser
	if err := m.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		m.logger.Error("failed to find user by email", zap.Error(err))
		return nil, err
	}
	return doc.toUser(), nil
}

func (m *mongoRepo) List(ctx context.Context) ([]User, error) {
	cur, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		m.logger.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toUser())
	}
	return users, nil
}

func (m *mongoRepo) SetRole(ctx context.Context, id string, role Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"role":      role,
		"updatedAt": m.nowFunc().UTC(),
	}})
	if err != nil {
		m.logger.Error("failed to update role", zap.String("id", id), zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *mongoRepo) UpdateProfile(ctx context.Context, email string, fields map[string]any) error {
	set := bson.M{"updatedAt": m.nowFunc().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		m.logger.Error("failed to update profile", zap.Error(err))
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
