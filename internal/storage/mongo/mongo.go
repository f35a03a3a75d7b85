package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-api/internal/domain/models"
	"auth-api/internal/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

type Storage struct {
	client *mongo.Client
	users  *mongo.Collection
}

// userDocument is the stored shape of models.User.
type userDocument struct {
	ID                string     `bson:"_id"`
	Username          string     `bson:"username"`
	Email             string     `bson:"email"`
	PassHash          []byte     `bson:"password"`
	Name              string     `bson:"name,omitempty"`
	Location          string     `bson:"location,omitempty"`
	Picture           string     `bson:"picture,omitempty"`
	DOB               *time.Time `bson:"dob,omitempty"`
	AccountCreated    time.Time  `bson:"accountCreated"`
	ArticlesPublished int        `bson:"articlesPublished"`
}

// New connects to uri and makes sure the unique indexes on username and email exist.
func New(ctx context.Context, uri, database string) (*Storage, error) {
	const op = "storage.mongo.New"

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := client.Database(database).Collection(usersCollection)

	_, err = users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{client: client, users: users}, nil
}

func (s *Storage) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.client.Disconnect(ctx)
}

func (s *Storage) SaveUser(ctx context.Context, user models.User) error {
	const op = "storage.mongo.SaveUser"

	_, err := s.users.InsertOne(ctx, toDocument(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) UserByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.mongo.UserByID"

	return s.findOne(ctx, op, bson.D{{Key: "_id", Value: id}})
}

func (s *Storage) UserByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.mongo.UserByEmail"

	return s.findOne(ctx, op, bson.D{{Key: "email", Value: email}})
}

func (s *Storage) UserByUsername(ctx context.Context, username string) (models.User, error) {
	const op = "storage.mongo.UserByUsername"

	return s.findOne(ctx, op, bson.D{{Key: "username", Value: username}})
}

// UpdateUser sets the mutable profile fields and the password hash.
func (s *Storage) UpdateUser(ctx context.Context, user models.User) error {
	const op = "storage.mongo.UpdateUser"

	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: user.ID}},
		bson.D{{Key: "$set", Value: updateFields(user)}},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	return nil
}

func (s *Storage) findOne(ctx context.Context, op string, filter bson.D) (models.User, error) {
	var doc userDocument

	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(doc), nil
}

func updateFields(user models.User) bson.D {
	fields := bson.D{
		{Key: "password", Value: user.PassHash},
		{Key: "name", Value: user.Name},
		{Key: "location", Value: user.Location},
		{Key: "picture", Value: user.Picture},
	}
	if user.DOB != nil {
		fields = append(fields, bson.E{Key: "dob", Value: user.DOB.UTC()})
	}

	return fields
}

func toDocument(user models.User) userDocument {
	return userDocument{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		PassHash:          user.PassHash,
		Name:              user.Name,
		Location:          user.Location,
		Picture:           user.Picture,
		DOB:               user.DOB,
		AccountCreated:    user.AccountCreated,
		ArticlesPublished: user.ArticlesPublished,
	}
}

func toModel(doc userDocument) models.User {
	user := models.User{
		ID:                doc.ID,
		Username:          doc.Username,
		Email:             doc.Email,
		PassHash:          doc.PassHash,
		Name:              doc.Name,
		Location:          doc.Location,
		Picture:           doc.Picture,
		AccountCreated:    doc.AccountCreated.UTC(),
		ArticlesPublished: doc.ArticlesPublished,
	}
	if doc.DOB != nil {
		dob := doc.DOB.UTC()
		user.DOB = &dob
	}

	return user
}
