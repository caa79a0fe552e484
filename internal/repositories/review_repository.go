package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/placenote/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository defines the interface for review data operations
type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetReviewsByPostID(ctx context.Context, postID uint) ([]models.Review, error)
	DeleteReview(ctx context.Context, id string) error
	DeleteReviewsByPostID(ctx context.Context, postID uint) ([]string, error)
}

// MongoReviewRepository implements ReviewRepository for MongoDB
type MongoReviewRepository struct {
	collection *mongo.Collection
}

// NewMongoReviewRepository creates a new MongoReviewRepository
func NewMongoReviewRepository(db *mongo.Database) *MongoReviewRepository {
	return &MongoReviewRepository{collection: db.Collection("reviews")}
}

// EnsureIndexes creates the post_id index used by the detail view
func (r *MongoReviewRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "_id", Value: -1}},
	})
	return err
}

// CreateReview creates a new review in MongoDB
func (r *MongoReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, review)
	return err
}

// GetReviewByID retrieves a review by its hex ID
func (r *MongoReviewRepository) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var review models.Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &review, nil
}

// GetReviewsByPostID retrieves the reviews of a post, newest first
func (r *MongoReviewRepository) GetReviewsByPostID(ctx context.Context, postID uint) ([]models.Review, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": postID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteReview deletes a review by its hex ID
func (r *MongoReviewRepository) DeleteReview(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteReviewsByPostID deletes every review of a post and returns their hex IDs
func (r *MongoReviewRepository) DeleteReviewsByPostID(ctx context.Context, postID uint) ([]string, error) {
	reviews, err := r.GetReviewsByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, nil
	}

	ids := make([]string, len(reviews))
	objIDs := make([]primitive.ObjectID, len(reviews))
	for i, review := range reviews {
		ids[i] = review.ID.Hex()
		objIDs[i] = review.ID
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": objIDs}}); err != nil {
		return nil, err
	}
	return ids, nil
}
