package repository

import (
	"context"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// staleProcessingAfter is how long an email may sit in PROCESSING
// before it is considered abandoned and reset to PENDING.
const staleProcessingAfter = 10 * time.Minute

// MongoEmailRepository implements the EmailRepository interface
type MongoEmailRepository struct {
	collection *mongo.Collection
}

// NewMongoEmailRepository creates a new MongoDB email repository
func NewMongoEmailRepository(db *mongo.Database) repository.EmailRepository {
	collection := db.Collection("manifest_emails")

	ctx := context.Background()

	// Index on emailId for fast lookups and uniqueness
	emailIDIndex := mongo.IndexModel{
		Keys:    bson.M{"emailId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on processStatus for finding emails by status
	processStatusIndex := mongo.IndexModel{
		Keys: bson.M{"processStatus": 1},
	}

	// Index on receivedAt for sorting and filtering
	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	// Compound index for finding unprocessed emails efficiently
	unprocessedIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "processStatus", Value: 1},
			{Key: "receivedAt", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		emailIDIndex,
		processStatusIndex,
		receivedAtIndex,
		unprocessedIndex,
	})

	return &MongoEmailRepository{
		collection: collection,
	}
}

// Save saves an email to MongoDB
func (r *MongoEmailRepository) Save(ctx context.Context, email *entity.Email) error {
	if email.ProcessStatus == "" {
		email.ProcessStatus = entity.StatusPending
	}

	_, err := r.collection.InsertOne(ctx, email)
	return err
}

// GetLastEmail returns the most recently received email
func (r *MongoEmailRepository) GetLastEmail(ctx context.Context) (*entity.Email, error) {
	opts := options.FindOne().SetSort(bson.M{"receivedAt": -1})

	var email entity.Email
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

// FindUnprocessed finds unprocessed emails (PENDING status or empty)
func (r *MongoEmailRepository) FindUnprocessed(ctx context.Context, limit int) ([]*entity.Email, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"processStatus": ""},
			{"processStatus": entity.StatusPending},
			{"processStatus": bson.M{"$exists": false}},
		},
	}

	opts := options.Find().
		SetSort(bson.M{"receivedAt": 1}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var emails []*entity.Email
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

// FindByEmailID finds an email by its Gmail message id
func (r *MongoEmailRepository) FindByEmailID(ctx context.Context, emailID string) (*entity.Email, error) {
	var email entity.Email
	err := r.collection.FindOne(ctx, bson.M{"emailId": emailID}).Decode(&email)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

// FindByEmailIDs batch-fetches emails keyed by Gmail message id
func (r *MongoEmailRepository) FindByEmailIDs(ctx context.Context, emailIDs []string) (map[string]*entity.Email, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"emailId": bson.M{"$in": emailIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]*entity.Email)
	for cursor.Next(ctx) {
		var email entity.Email
		if err := cursor.Decode(&email); err != nil {
			return nil, err
		}
		result[email.EmailID] = &email
	}
	return result, cursor.Err()
}

// UpdateStatusByEmailID updates the processing status of an email
func (r *MongoEmailRepository) UpdateStatusByEmailID(ctx context.Context, emailID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus":    status,
			"processStartedAt": startedAt,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, update)
	return err
}

// UpdateProcessStepsByEmailID records pipeline progress for an email
func (r *MongoEmailRepository) UpdateProcessStepsByEmailID(ctx context.Context, emailID string, steps entity.ProcessSteps) error {
	update := bson.M{
		"$set": bson.M{
			"processSteps": steps,
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, update)
	return err
}

// MarkAsProcessedByEmailID records the final processing outcome
func (r *MongoEmailRepository) MarkAsProcessedByEmailID(ctx context.Context, emailID, status, processorType, errorDetail string, extractedData map[string]interface{}) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
			"processorType": processorType,
			"errorDetail":   errorDetail,
			"extractedData": extractedData,
			"processedAt":   time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"emailId": emailID}, update)
	return err
}

// ResetProcessingEmails resets emails stuck in PROCESSING back to
// PENDING so a crashed run does not strand them
func (r *MongoEmailRepository) ResetProcessingEmails(ctx context.Context) error {
	filter := bson.M{
		"processStatus":    entity.StatusProcessing,
		"processStartedAt": bson.M{"$lt": time.Now().Add(-staleProcessingAfter)},
	}
	update := bson.M{
		"$set": bson.M{
			"processStatus": entity.StatusPending,
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}
