package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartTTL drops carts of abandoned sessions.
const cartTTL = 30 * 24 * time.Hour

type cartDocument struct {
	SessionID string         `bson:"session_id"`
	Items     []itemDocument `bson:"items"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// prices are stored as decimal strings so totals never pass through float64
type itemDocument struct {
	ProductID int64     `bson:"product_id"`
	Name      string    `bson:"name"`
	Price     string    `bson:"price"`
	Quantity  int       `bson:"quantity"`
	AddedAt   time.Time `bson:"added_at"`
}

func toDocument(c *domain.Cart) cartDocument {
	doc := cartDocument{
		SessionID: c.SessionID,
		Items:     make([]itemDocument, len(c.Items)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	for i, item := range c.Items {
		doc.Items[i] = itemDocument{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price.String(),
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
	}
	return doc
}

func fromDocument(doc cartDocument) (*domain.Cart, error) {
	cart := &domain.Cart{
		SessionID: doc.SessionID,
		Items:     make([]domain.CartItem, len(doc.Items)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for i, item := range doc.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q for product %d: %w", item.Price, item.ProductID, err)
		}
		cart.Items[i] = domain.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     price,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
	}
	return cart, nil
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	var doc cartDocument

	filter := bson.M{"session_id": sessionID}
	err := m.collection.FindOne(ctx, filter).Decode(&doc)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return fromDocument(doc)
}

func (m *mongoRepository) UpsertCart(ctx context.Context, cart *domain.Cart) error {
	now := time.Now()

	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	if cart.UpdatedAt.IsZero() {
		cart.UpdatedAt = now
	}

	filter := bson.M{"session_id": cart.SessionID}
	update := bson.M{"$set": toDocument(cart)}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) DeleteCart(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}

	result, err := m.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cartTTL.Seconds())),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureIndexes creates the collection indexes when repo is Mongo-backed.
func EnsureIndexes(ctx context.Context, repo CartRepository) error {
	if m, ok := repo.(*mongoRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}
