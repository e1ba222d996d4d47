package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ikkim/cart-backend/internal/app/model"
	"github.com/ikkim/cart-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// cartDocument is the stored shape of a cart in MongoDB.
type cartDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Products  []lineItemDocument `bson:"products"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type lineItemDocument struct {
	Product  string `bson:"product"`
	Quantity int    `bson:"quantity"`
}

type cartMongoRepository struct {
	coll *mongo.Collection
}

func NewCartMongoRepository(coll *mongo.Collection) CartRepository {
	return &cartMongoRepository{coll: coll}
}

func (r *cartMongoRepository) Create(ctx context.Context, cart *model.Cart) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := cartDocument{
		ID:        primitive.NewObjectID(),
		Products:  toLineItemDocuments(cart.Products),
		CreatedAt: now,
		UpdatedAt: now,
	}

	logger.Debug("Creating cart document", map[string]interface{}{
		"cart_id": doc.ID.Hex(),
	})

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		logger.Error("Failed to create cart document", err, map[string]interface{}{
			"cart_id": doc.ID.Hex(),
		})
		return err
	}

	*cart = *doc.toModel()
	return nil
}

func (r *cartMongoRepository) FindByID(ctx context.Context, id string) (*model.Cart, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		logger.Debug("Malformed cart ID", map[string]interface{}{
			"cart_id": id,
		})
		return nil, mongo.ErrNoDocuments
	}

	var doc cartDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.Error("Failed to find cart document", err, map[string]interface{}{
				"cart_id": id,
			})
		}
		return nil, err
	}

	logger.Debug("Cart document found", map[string]interface{}{
		"cart_id": id,
		"count":   len(doc.Products),
	})
	return doc.toModel(), nil
}

func (r *cartMongoRepository) Save(ctx context.Context, cart *model.Cart) error {
	oid, err := primitive.ObjectIDFromHex(cart.ID)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	products := toLineItemDocuments(cart.Products)

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"products": products, "updatedAt": now}},
	)
	if err != nil {
		logger.Error("Failed to save cart document", err, map[string]interface{}{
			"cart_id": cart.ID,
		})
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	cart.UpdatedAt = now
	logger.Debug("Cart document saved", map[string]interface{}{
		"cart_id":  cart.ID,
		"count":    len(products),
		"modified": res.ModifiedCount,
	})
	return nil
}

func (r *cartMongoRepository) Count(ctx context.Context) (model.CartStats, error) {
	var stats model.CartStats

	carts, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		logger.Error("Failed to count cart documents", err)
		return stats, err
	}
	stats.Carts = carts

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$products"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "lines", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "units", Value: bson.D{{Key: "$sum", Value: "$products.quantity"}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		logger.Error("Failed to aggregate cart line items", err)
		return stats, err
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Lines int64 `bson:"lines"`
		Units int64 `bson:"units"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return stats, err
	}
	if len(totals) > 0 {
		stats.LineItems = totals[0].Lines
		stats.Units = totals[0].Units
	}
	return stats, nil
}

func (d *cartDocument) toModel() *model.Cart {
	products := make([]model.LineItem, len(d.Products))
	for i, p := range d.Products {
		products[i] = model.LineItem{Position: i, ProductID: p.Product, Quantity: p.Quantity}
	}
	return &model.Cart{
		ID:        d.ID.Hex(),
		Products:  products,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func toLineItemDocuments(items []model.LineItem) []lineItemDocument {
	docs := make([]lineItemDocument, len(items))
	for i, item := range items {
		docs[i] = lineItemDocument{Product: item.ProductID, Quantity: item.Quantity}
	}
	return docs
}
