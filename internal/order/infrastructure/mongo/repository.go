package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmehra2102/marketplace-orders/internal/order/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "orders"

type productDocument struct {
	ProductID   string  `bson:"productId"`
	Name        string  `bson:"name"`
	Description string  `bson:"description"`
	Price       float64 `bson:"price"`
	Quantity    int     `bson:"quantity"`
}

type messageDocument struct {
	Text      string    `bson:"text"`
	SenderID  string    `bson:"senderId"`
	Role      string    `bson:"role"`
	Timestamp time.Time `bson:"timestamp"`
}

type orderDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BuyerID     string             `bson:"buyerId"`
	SellerID    string             `bson:"sellerId"`
	Products    []productDocument  `bson:"products"`
	TotalPrice  float64            `bson:"totalPrice"`
	Status      string             `bson:"status"`
	ChatHistory []messageDocument  `bson:"chatHistory"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

type Repository struct {
	log  *slog.Logger
	coll *mongo.Collection
}

func NewRepository(log *slog.Logger, db *mongo.Database) *Repository {
	return &Repository{log: log, coll: db.Collection(collectionName)}
}

func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client.Database(database), nil
}

// EnsureIndexes creates the lookup indexes. The inquiry index is not unique:
// duplicate inquiries from racing processes are tolerated.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "status", Value: 1}, {Key: "products.productId", Value: 1}}},
		{Keys: bson.D{{Key: "buyerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, o domain.Order) (domain.Order, error) {
	// BSON dates hold milliseconds; return what a later read will see.
	o.CreatedAt = o.CreatedAt.Truncate(time.Millisecond)
	doc := toDocument(o)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	o.ID = doc.ID.Hex()
	if o.ChatHistory == nil {
		o.ChatHistory = []domain.ChatMessage{}
	}
	return o, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	var doc orderDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return toDomain(doc), nil
}

func (r *Repository) List(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	q := bson.M{}
	if filter.BuyerID != "" {
		q["buyerId"] = filter.BuyerID
	}
	if filter.SellerID != "" {
		q["sellerId"] = filter.SellerID
	}

	cur, err := r.coll.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	var docs []orderDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, toDomain(d))
	}
	return orders, nil
}

func (r *Repository) FindInquiry(ctx context.Context, sellerID, productID string) (*domain.Order, error) {
	q := bson.M{
		"sellerId": sellerID,
		"status":   string(domain.StatusInquiry),
		"products": bson.M{"$elemMatch": bson.M{"productId": productID}},
	}
	var doc orderDocument
	err := r.coll.FindOne(ctx, q, options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find inquiry: %w", err)
	}
	o := toDomain(doc)
	return &o, nil
}

func (r *Repository) Update(ctx context.Context, id string, patch domain.OrderPatch) (domain.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.Order{}, domain.ErrOrderNotFound
	}

	set := bson.M{}
	if patch.BuyerID != nil {
		set["buyerId"] = *patch.BuyerID
	}
	if patch.SellerID != nil {
		set["sellerId"] = *patch.SellerID
	}
	if patch.Products != nil {
		set["products"] = toProductDocuments(*patch.Products)
	}
	if patch.TotalPrice != nil {
		set["totalPrice"] = *patch.TotalPrice
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if len(set) == 0 {
		return r.Get(ctx, id)
	}

	var doc orderDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}
	return toDomain(doc), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// AppendMessage pushes msg onto chatHistory in a single update, so concurrent
// appends to the same order never overwrite each other.
func (r *Repository) AppendMessage(ctx context.Context, id string, msg domain.ChatMessage) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrOrderNotFound
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$push": bson.M{"chatHistory": toMessageDocument(msg)}})
	if err != nil {
		return fmt.Errorf("append message to order %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func toDocument(o domain.Order) orderDocument {
	history := make([]messageDocument, 0, len(o.ChatHistory))
	for _, m := range o.ChatHistory {
		history = append(history, toMessageDocument(m))
	}
	return orderDocument{
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Products:    toProductDocuments(o.Products),
		TotalPrice:  o.TotalPrice,
		Status:      string(o.Status),
		ChatHistory: history,
		CreatedAt:   o.CreatedAt,
	}
}

func toProductDocuments(products []domain.OrderProduct) []productDocument {
	out := make([]productDocument, 0, len(products))
	for _, p := range products {
		out = append(out, productDocument{
			ProductID:   p.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    p.Quantity,
		})
	}
	return out
}

func toMessageDocument(m domain.ChatMessage) messageDocument {
	return messageDocument{Text: m.Text, SenderID: m.SenderID, Role: string(m.Role), Timestamp: m.Timestamp}
}

func toDomain(d orderDocument) domain.Order {
	o := domain.Order{
		ID:          d.ID.Hex(),
		BuyerID:     d.BuyerID,
		SellerID:    d.SellerID,
		Products:    make([]domain.OrderProduct, 0, len(d.Products)),
		TotalPrice:  d.TotalPrice,
		Status:      domain.OrderStatus(d.Status),
		ChatHistory: make([]domain.ChatMessage, 0, len(d.ChatHistory)),
		CreatedAt:   d.CreatedAt,
	}
	for _, p := range d.Products {
		o.Products = append(o.Products, domain.OrderProduct{
			ProductID:   p.ProductID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Quantity:    p.Quantity,
		})
	}
	for _, m := range d.ChatHistory {
		o.ChatHistory = append(o.ChatHistory, domain.ChatMessage{
			Text:      m.Text,
			SenderID:  m.SenderID,
			Role:      domain.ChatRole(m.Role),
			Timestamp: m.Timestamp.UTC(),
		})
	}
	return o
}
