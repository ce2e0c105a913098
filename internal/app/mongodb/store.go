/*
Package mongodb is the MongoDB implementation of the user and message stores.

Documents keep the field names of the chat's original schema (isAvatarImgSet, avatarImg,
message.text, users, sender, createdAt, updatedAt), so an existing database can be reused.
Unique indexes on username and email are created at startup and are the only
uniqueness check.
*/
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatterbox/internal/app/message"
	"chatterbox/internal/app/user"
)

const (
	usersCollection    = "users"
	messagesCollection = "messages"

	usernameIndex = "username_1"
	emailIndex    = "email_1"

	connectTimeout = 15 * time.Second
)

type userDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Username         string             `bson:"username"`
	Email            string             `bson:"email"`
	Password         string             `bson:"password"`
	IsAvatarImageSet bool               `bson:"isAvatarImgSet"`
	AvatarImage      string             `bson:"avatarImg"`
}

func (d userDoc) toUser() user.User {
	return user.User{
		ID:               d.ID.Hex(),
		Username:         d.Username,
		Email:            d.Email,
		PasswordHash:     d.Password,
		IsAvatarImageSet: d.IsAvatarImageSet,
		AvatarImage:      d.AvatarImage,
	}
}

type messageBody struct {
	Text string `bson:"text"`
}

type messageDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Message   messageBody        `bson:"message"`
	Users     []string           `bson:"users"`
	Sender    string             `bson:"sender"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d messageDoc) toMessage() message.Message {
	m := message.Message{
		ID:        d.ID.Hex(),
		Text:      d.Message.Text,
		Sender:    d.Sender,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	copy(m.Participants[:], d.Users)
	return m
}

// Store implements user.Store and message.Store on MongoDB.
type Store struct {
	client   *mongo.Client
	users    *mongo.Collection
	messages *mongo.Collection
}

// Connect dials uri, verifies the connection and prepares the indexes of database dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := New(client, dbName)
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// New wraps a connected client without touching the server.
func New(client *mongo.Client, dbName string) *Store {
	db := client.Database(dbName)
	return &Store{
		client:   client,
		users:    db.Collection(usersCollection),
		messages: db.Collection(messagesCollection),
	}
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(usernameIndex)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
	})
	if err != nil {
		return fmt.Errorf("mongo user indexes: %w", err)
	}

	_, err = s.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "users", Value: 1}, {Key: "updatedAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("mongo message indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// duplicateKeyError maps a duplicate key error to the user store error naming the
// violated index. Any other error is returned unchanged.
func duplicateKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	switch violatedIndex(err.Error()) {
	case usernameIndex:
		return user.ErrDuplicateUsername
	case emailIndex:
		return user.ErrDuplicateEmail
	}
	return err
}

// violatedIndex extracts the index name from an E11000 message such as
// "E11000 duplicate key error collection: chat.users index: email_1 dup key: { ... }".
// The duplicated value follows the index name and is never inspected.
func violatedIndex(msg string) string {
	const marker = "index: "

	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}

	fields := strings.Fields(msg[i+len(marker):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CreateUser implements user.Store.
func (s *Store) CreateUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	doc := userDoc{
		Username: nu.Username,
		Email:    nu.Email,
		Password: nu.PasswordHash,
	}

	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mapped := duplicateKeyError(err); mapped != err {
			return user.User{}, mapped
		}
		return user.User{}, fmt.Errorf("mongo insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toUser(), nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (user.User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.toUser(), nil
}

// GetUserByUsername implements user.Store.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

// GetUserByID implements user.Store.
func (s *Store) GetUserByID(ctx context.Context, id string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

// SetAvatar implements user.Store.
func (s *Store) SetAvatar(ctx context.Context, id, image string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	update := bson.M{"$set": bson.M{"isAvatarImgSet": true, "avatarImg": image}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err = s.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, fmt.Errorf("mongo set avatar: %w", err)
	}
	return doc.toUser(), nil
}

// ListUsersExcept implements user.Store.
func (s *Store) ListUsersExcept(ctx context.Context, id string) ([]user.User, error) {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		filter["_id"] = bson.M{"$ne": oid}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode users: %w", err)
	}

	users := make([]user.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toUser())
	}
	return users, nil
}

// AddMessage implements message.Store.
func (s *Store) AddMessage(ctx context.Context, m message.Message) (message.Message, error) {
	now := time.Now().UTC()
	doc := messageDoc{
		Message:   messageBody{Text: m.Text},
		Users:     []string{m.Participants[0], m.Participants[1]},
		Sender:    m.Sender,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.messages.InsertOne(ctx, doc)
	if err != nil {
		return message.Message{}, fmt.Errorf("mongo insert message: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toMessage(), nil
}

// conversationFilter matches documents whose users array is exactly the pair {a, b}.
func conversationFilter(a, b string) bson.M {
	if a == b {
		return bson.M{"users": bson.A{a, b}}
	}
	return bson.M{"users": bson.M{"$all": bson.A{a, b}, "$size": 2}}
}

// ListConversation implements message.Store.
func (s *Store) ListConversation(ctx context.Context, a, b string) ([]message.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := s.messages.Find(ctx, conversationFilter(a, b), opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list conversation: %w", err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode messages: %w", err)
	}

	out := make([]message.Message, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toMessage())
	}
	return out, nil
}
