package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"portfolio-tracker/internal/models"
)

const buyRetries = 3

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

type stockDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	UserID        string             `bson:"user_id"`
	Symbol        string             `bson:"symbol"`
	Shares        float64            `bson:"shares"`
	PurchasePrice float64            `bson:"purchase_price"`
	CurrentPrice  float64            `bson:"current_price"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
	// CreatedBy identifies the buy that inserted the holding.
	CreatedBy     primitive.ObjectID `bson:"created_by,omitempty"`
}

type fundDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       string             `bson:"user_id"`
	Symbol       string             `bson:"symbol"`
	Fund         string             `bson:"fund"`
	Units        float64            `bson:"units"`
	NAV          float64            `bson:"nav"`
	CurrentPrice float64            `bson:"current_price"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func (d stockDoc) model() models.Stock {
	return models.Stock{
		ID:            d.ID.Hex(),
		UserID:        d.UserID,
		Symbol:        d.Symbol,
		Shares:        d.Shares,
		PurchasePrice: d.PurchasePrice,
		CurrentPrice:  d.CurrentPrice,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func (d fundDoc) model() models.MutualFund {
	return models.MutualFund{
		ID:           d.ID.Hex(),
		UserID:       d.UserID,
		Symbol:       d.Symbol,
		Fund:         d.Fund,
		Units:        d.Units,
		NAV:          d.NAV,
		CurrentPrice: d.CurrentPrice,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// caseInsensitive makes equality filters ignore case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type MongoStore struct {
	db              *mongo.Database
	userCollection  *mongo.Collection
	stockCollection *mongo.Collection
	fundCollection  *mongo.Collection
}

// NewMongoStore wires the collections and makes sure the unique indexes the
// atomic buy relies on exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		db:              db,
		userCollection:  db.Collection("users"),
		stockCollection: db.Collection("stocks"),
		fundCollection:  db.Collection("mutual_funds"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	perUserSymbol := mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "symbol", Value: 1}},
		Options: options.Index().SetUnique(true),
	}

	if _, err := s.userCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	if _, err := s.stockCollection.Indexes().CreateOne(ctx, perUserSymbol); err != nil {
		return fmt.Errorf("create stocks index: %w", err)
	}
	if _, err := s.fundCollection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    perUserSymbol.Keys,
		Options: options.Index().SetUnique(true).SetName("user_id_symbol_ci").SetCollation(caseInsensitive),
	}); err != nil {
		return fmt.Errorf("create mutual_funds index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.userCollection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}

	user.ID = doc.ID.Hex()
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": objID})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.userCollection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

var bySymbol = options.Find().SetSort(bson.D{{Key: "symbol", Value: 1}})

func (s *MongoStore) ListStocks(ctx context.Context, userID string) ([]models.Stock, error) {
	cur, err := s.stockCollection.Find(ctx, bson.M{"user_id": userID}, bySymbol)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []stockDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	list := make([]models.Stock, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.model())
	}
	return list, nil
}

func (s *MongoStore) GetStock(ctx context.Context, userID, symbol string) (*models.Stock, error) {
	var doc stockDoc
	err := s.stockCollection.FindOne(ctx, bson.M{
		"user_id": userID,
		"symbol":  models.NormalizeStockSymbol(symbol),
	}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st := doc.model()
	return &st, nil
}

func (s *MongoStore) ListFunds(ctx context.Context, userID string) ([]models.MutualFund, error) {
	cur, err := s.fundCollection.Find(ctx, bson.M{"user_id": userID}, bySymbol)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []fundDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	list := make([]models.MutualFund, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.model())
	}
	return list, nil
}

func (s *MongoStore) GetFund(ctx context.Context, userID, symbol string) (*models.MutualFund, error) {
	var doc fundDoc
	err := s.fundCollection.FindOne(ctx, bson.M{
		"user_id": userID,
		"symbol":  symbol,
	}, options.FindOne().SetCollation(caseInsensitive)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	f := doc.model()
	return &f, nil
}

// BuyStock runs the weighted-average merge inside a single pipeline
// find-and-modify, so the server reads, writes and returns the holding
// atomically. Two upserts racing on a brand new symbol collide on the unique
// index; the loser retries and lands on the update path.
func (s *MongoStore) BuyStock(ctx context.Context, userID string, lot models.StockLot) (*models.Stock, bool, error) {
	symbol := models.NormalizeStockSymbol(lot.Symbol)
	filter := bson.M{"user_id": userID, "symbol": symbol}
	buyID := primitive.NewObjectID()
	update := buyPipeline(lot, buyID, time.Now().UTC())
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var (
		doc stockDoc
		err error
	)
	for attempt := 0; attempt < buyRetries; attempt++ {
		err = s.stockCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
		if err == nil || !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	if err != nil {
		return nil, false, fmt.Errorf("buy %s: %w", symbol, err)
	}

	st := doc.model()
	return &st, doc.CreatedBy == buyID, nil
}

func buyPipeline(lot models.StockLot, buyID primitive.ObjectID, now time.Time) mongo.Pipeline {
	oldShares := bson.D{{Key: "$ifNull", Value: bson.A{"$shares", 0}}}
	oldPrice := bson.D{{Key: "$ifNull", Value: bson.A{"$purchase_price", 0}}}
	totalShares := bson.D{{Key: "$add", Value: bson.A{oldShares, lot.Shares}}}
	totalCost := bson.D{{Key: "$add", Value: bson.A{
		bson.D{{Key: "$multiply", Value: bson.A{oldShares, oldPrice}}},
		lot.Shares * lot.PurchasePrice,
	}}}

	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "purchase_price", Value: bson.D{{Key: "$divide", Value: bson.A{totalCost, totalShares}}}},
			{Key: "shares", Value: totalShares},
			{Key: "current_price", Value: bson.D{{Key: "$literal", Value: lot.CurrentPrice}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", now}}}},
			{Key: "created_by", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_by", buyID}}}},
			{Key: "updated_at", Value: now},
		}}},
	}
}

func (s *MongoStore) CreateFund(ctx context.Context, fund *models.MutualFund) error {
	now := time.Now().UTC()
	doc := fundDoc{
		ID:           primitive.NewObjectID(),
		UserID:       fund.UserID,
		Symbol:       fund.Symbol,
		Fund:         fund.Fund,
		Units:        fund.Units,
		NAV:          fund.NAV,
		CurrentPrice: fund.CurrentPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.fundCollection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	fund.ID = doc.ID.Hex()
	fund.CreatedAt = now
	fund.UpdatedAt = now
	return nil
}

func (s *MongoStore) DeleteHoldings(ctx context.Context, userID string) error {
	if _, err := s.stockCollection.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return err
	}
	_, err := s.fundCollection.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
