package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kingscanvas/internal/database"
	"kingscanvas/internal/models"
	"kingscanvas/pkg/auth"

	cache "github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserService handles account registration, login, and user lookups
type UserService struct {
	mongodb    *database.MongoDB
	collection *mongo.Collection
	userCache  *cache.Cache // TTL cache for user lookups on the hot auth path
}

// NewUserService creates a new user service
func NewUserService(mongodb *database.MongoDB) *UserService {
	return &UserService{
		mongodb:    mongodb,
		collection: mongodb.Collection(database.CollectionUsers),
		userCache:  cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Register creates a new account with an Argon2id-hashed password
func (s *UserService) Register(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  strings.TrimSpace(displayName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.collection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("an account with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies credentials and returns the matching user
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("invalid email or password")
	}

	return &user, nil
}

// GetByID returns a user by hex ID, serving repeat lookups from the TTL cache
func (s *UserService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if cached, found := s.userCache.Get(userID); found {
		user := cached.(models.User)
		return &user, nil
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	var user models.User
	if err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	s.userCache.Set(userID, user, cache.DefaultExpiration)
	return &user, nil
}
