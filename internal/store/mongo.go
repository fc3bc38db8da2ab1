package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.mongodb.org/mongo-driver/v2/x/mongo/driver/connstring"

	"gitlab.com/dirk.krummacker/contact-form-service/internal/model"
)

const (
	// DefaultMongoDatabase is used when the connection string names no database.
	DefaultMongoDatabase = "contactDB"

	// MongoCollection holds one document per contact.
	MongoCollection = "contacts"

	// codeDocumentValidationFailure is reported by MongoDB when a write
	// violates the collection's $jsonSchema validator.
	codeDocumentValidationFailure = 121
)

// contactDocument is the BSON shape of a contact.
type contactDocument struct {
	ID      bson.ObjectID `bson:"_id"`
	Name    string        `bson:"name"`
	Email   string        `bson:"email"`
	Subject string        `bson:"subject"`
	Message string        `bson:"message"`
	Date    time.Time     `bson:"date"`
}

func (d contactDocument) contact() model.Contact {
	return model.Contact{
		Id:      d.ID.Hex(),
		Name:    d.Name,
		Email:   d.Email,
		Subject: d.Subject,
		Message: d.Message,
		Date:    d.Date.UTC(),
	}
}

// MongoStore is a Gateway backed by a MongoDB collection.
type MongoStore struct {
	client   *mongo.Client
	contacts *mongo.Collection
	monitor  *monitor
	opts     Options
}

// MongoClientOptions returns the client settings used for every MongoDB
// connection of this service.
func MongoClientOptions(uri string, heartbeat time.Duration) *options.ClientOptions {
	return options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(30 * time.Second).
		SetConnectTimeout(30 * time.Second).
		SetMaxPoolSize(10).
		SetMinPoolSize(1).
		SetMaxConnIdleTime(30 * time.Second).
		SetHeartbeatInterval(heartbeat)
}

// MongoDatabaseName returns the database named in the path of uri, or
// DefaultMongoDatabase if there is none.
func MongoDatabaseName(uri string) (string, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return "", fmt.Errorf("parsing MongoDB connection string: %w", err)
	}
	if cs.Database == "" {
		return DefaultMongoDatabase, nil
	}
	return cs.Database, nil
}

// OpenMongo creates the MongoDB client and starts monitoring it. The driver
// connects lazily, so this does not fail when the server is unreachable.
func OpenMongo(ctx context.Context, uri string, opts Options) (*MongoStore, error) {
	opts = opts.withDefaults()
	dbName, err := MongoDatabaseName(uri)
	if err != nil {
		return nil, err
	}
	client, err := mongo.Connect(MongoClientOptions(uri, opts.HeartbeatInterval))
	if err != nil {
		return nil, fmt.Errorf("creating MongoDB client for %s: %w", redact(uri), err)
	}
	s := &MongoStore{
		client:   client,
		contacts: client.Database(dbName).Collection(MongoCollection),
		opts:     opts,
	}
	s.monitor = newMonitor("mongodb", func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}, opts.HeartbeatInterval)
	s.monitor.start()
	return s, nil
}

func (s *MongoStore) State() ConnState {
	return s.monitor.State()
}

func (s *MongoStore) Create(ctx context.Context, draft model.Draft) (model.Contact, error) {
	if s.State() != Connected {
		return model.Contact{}, ErrStoreUnavailable
	}
	doc := contactDocument{
		ID:      bson.NewObjectID(),
		Name:    draft.Name,
		Email:   draft.Email,
		Subject: draft.Subject,
		Message: draft.Message,
		Date:    now(),
	}
	contact := doc.contact()
	if err := checkRules(contact); err != nil {
		return model.Contact{}, err
	}
	return saveWithDeadline(ctx, s.opts.SaveTimeout, func(ctx context.Context) (model.Contact, error) {
		if _, err := s.contacts.InsertOne(ctx, doc); err != nil {
			return model.Contact{}, mongoWriteError(err)
		}
		return contact, nil
	})
}

// mongoWriteError turns schema rejections into a *ValidationError and wraps
// everything else.
func mongoWriteError(err error) error {
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		var messages []string
		for _, we := range writeErr.WriteErrors {
			if we.Code == codeDocumentValidationFailure {
				messages = append(messages, we.Message)
			}
		}
		if len(messages) > 0 {
			return &ValidationError{Messages: messages}
		}
	}
	return fmt.Errorf("inserting contact: %w", err)
}

func (s *MongoStore) ListAll(ctx context.Context) ([]model.Contact, error) {
	if s.State() != Connected {
		return nil, ErrStoreUnavailable
	}
	sort := bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}
	cursor, err := s.contacts.Find(ctx, bson.D{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("finding contacts: %w", err)
	}
	var docs []contactDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("reading contacts: %w", err)
	}
	contacts := make([]model.Contact, 0, len(docs))
	for _, doc := range docs {
		contacts = append(contacts, doc.contact())
	}
	return contacts, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (model.Contact, error) {
	if s.State() != Connected {
		return model.Contact{}, ErrStoreUnavailable
	}
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Contact{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	var doc contactDocument
	err = s.contacts.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Contact{}, ErrNotFound
	}
	if err != nil {
		return model.Contact{}, fmt.Errorf("finding contact %s: %w", id, err)
	}
	return doc.contact(), nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	s.monitor.stop()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from MongoDB: %w", err)
	}
	return nil
}
