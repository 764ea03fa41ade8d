package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/monster_tracker/internal/models"
)

const (
	usersCollection       = "users"
	consumptionCollection = "consumption"
	goalsCollection       = "goals"
	settingsCollection    = "settings"
)

type MongoRepo struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoRepo)(nil)

// ConnectMongo dials uri, pings the server and returns a repo bound to dbName.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoRepo, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGO_URI is empty")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return NewMongoRepo(client, dbName), nil
}

func NewMongoRepo(client *mongo.Client, dbName string) *MongoRepo {
	return &MongoRepo{client: client, db: client.Database(dbName)}
}

// EnsureIndexes creates the unique indexes the upserts rely on.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}

	_, err = r.db.Collection(consumptionCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("consumption index: %w", err)
	}
	return nil
}

func (r *MongoRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.Collection(usersCollection).InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *MongoRepo) FindUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *MongoRepo) ListConsumption(ctx context.Context, username string) ([]models.ConsumptionRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.db.Collection(consumptionCollection).Find(ctx, bson.M{"username": username}, opts)
	if err != nil {
		return nil, fmt.Errorf("list consumption: %w", err)
	}

	items := []models.ConsumptionRecord{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode consumption: %w", err)
	}
	for i := range items {
		if items[i].Drinks == nil {
			items[i].Drinks = []models.DrinkItem{}
		}
	}
	return items, nil
}

func (r *MongoRepo) UpsertConsumption(ctx context.Context, rec *models.ConsumptionRecord) error {
	filter := bson.M{"username": rec.Username, "date": rec.Date}
	_, err := r.db.Collection(consumptionCollection).
		ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert consumption: %w", err)
	}
	return nil
}

func (r *MongoRepo) GetOrCreateGoals(ctx context.Context, defaults models.Goals) (*models.Goals, error) {
	var legacy models.Goals
	found, err := r.legacySingleton(ctx, goalsCollection, &legacy)
	if err != nil {
		return nil, fmt.Errorf("read legacy goals: %w", err)
	}
	if found {
		defaults = legacy
	}

	defaults.ID = ""
	if err := r.insertIfAbsent(ctx, goalsCollection, defaults); err != nil {
		return nil, fmt.Errorf("init goals: %w", err)
	}

	var g models.Goals
	if err := r.db.Collection(goalsCollection).FindOne(ctx, singletonFilter()).Decode(&g); err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	return &g, nil
}

func (r *MongoRepo) SaveGoals(ctx context.Context, g *models.Goals) error {
	g.ID = models.SingletonID
	if err := r.replace(ctx, goalsCollection, g); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

func (r *MongoRepo) GetOrCreateSettings(ctx context.Context, defaults models.Settings) (*models.Settings, error) {
	var legacy models.Settings
	found, err := r.legacySingleton(ctx, settingsCollection, &legacy)
	if err != nil {
		return nil, fmt.Errorf("read legacy settings: %w", err)
	}
	if found {
		defaults = legacy
	}

	defaults.ID = ""
	if err := r.insertIfAbsent(ctx, settingsCollection, defaults); err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}

	var s models.Settings
	if err := r.db.Collection(settingsCollection).FindOne(ctx, singletonFilter()).Decode(&s); err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &s, nil
}

func (r *MongoRepo) SaveSettings(ctx context.Context, s *models.Settings) error {
	s.ID = models.SingletonID
	if err := r.replace(ctx, settingsCollection, s); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func singletonFilter() bson.M {
	return bson.M{"_id": models.SingletonID}
}

// legacySingleton decodes a document stored without the singleton key, as
// written by earlier deployments that kept one unkeyed document per
// collection. It reports false once the keyed document exists.
func (r *MongoRepo) legacySingleton(ctx context.Context, coll string, out any) (bool, error) {
	c := r.db.Collection(coll)
	n, err := c.CountDocuments(ctx, singletonFilter(), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err = c.FindOne(ctx, bson.M{"_id": bson.M{"$ne": models.SingletonID}}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// insertIfAbsent writes defaults only when the singleton is missing.
// defaults must carry an empty ID so _id stays out of $setOnInsert.
func (r *MongoRepo) insertIfAbsent(ctx context.Context, coll string, defaults any) error {
	_, err := r.db.Collection(coll).UpdateOne(ctx,
		singletonFilter(),
		bson.M{"$setOnInsert": defaults},
		options.Update().SetUpsert(true),
	)
	// two concurrent first reads can race on the upsert; the loser sees a duplicate key
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}

func (r *MongoRepo) replace(ctx context.Context, coll string, doc any) error {
	_, err := r.db.Collection(coll).ReplaceOne(ctx, singletonFilter(), doc, options.Replace().SetUpsert(true))
	return err
}
