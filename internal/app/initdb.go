package app

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/lapmart/lapmart/config"
	"github.com/lapmart/lapmart/internal/domain"
	"github.com/lapmart/lapmart/pkg/common"
)

func getDatabase(cfg config.DBConfig) (*mongo.Client, *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Url))
	if err != nil {
		panic(err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		panic(err)
	}
	return client, client.Database(cfg.Name)
}

// uniqueIndexes maps collections to their unique key sets. The store index
// is the only uniqueness enforcement; handlers translate the duplicate-key
// error to a conflict response.
var uniqueIndexes = map[string][]bson.D{
	domain.User{}.CollectionName(): {
		{{Key: "email", Value: 1}},
	},
	domain.Category{}.CollectionName(): {
		{{Key: "name", Value: 1}},
	},
	domain.Report{}.CollectionName(): {
		{{Key: "name", Value: 1}},
	},
	domain.Booking{}.CollectionName(): {
		{{Key: "buyer_email", Value: 1}, {Key: "product_id", Value: 1}},
	},
	domain.Payment{}.CollectionName(): {
		{{Key: "product_id", Value: 1}},
	},
}

// EnsureIndexes creates the unique indexes plus lookup indexes used by the
// list endpoints. Safe to run repeatedly.
func (a *Application) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for collName, keySets := range uniqueIndexes {
		coll := a.database.Collection(collName)
		for _, keys := range keySets {
			_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys:    keys,
				Options: options.Index().SetUnique(true),
			})
			if err != nil {
				return err
			}
		}
	}

	lookups := map[string]bson.D{
		domain.Product{}.CollectionName(): {{Key: "seller_email", Value: 1}},
		domain.Booking{}.CollectionName(): {{Key: "product_id", Value: 1}},
	}
	for collName, keys := range lookups {
		_, err := a.database.Collection(collName).Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys})
		if err != nil {
			return err
		}
	}
	return nil
}

// checkSuper ensures a bootstrap admin account exists.
func (a *Application) checkSuper() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	coll := a.database.Collection(domain.User{}.CollectionName())
	var admin domain.User
	err := coll.FindOne(ctx, bson.M{"role": domain.RoleAdmin}).Decode(&admin)
	if err == nil {
		return
	}
	if !isNoDocuments(err) {
		zap.S().Errorf("admin bootstrap check failed: %v", err)
		return
	}
	_, err = coll.InsertOne(ctx, domain.User{
		ID:        common.UUID(),
		Email:     "admin@lapmart.local",
		Name:      "Administrator",
		Role:      domain.RoleAdmin,
		Verified:  true,
		CreatedAt: time.Now(),
	})
	if err != nil {
		zap.S().Errorf("admin bootstrap insert failed: %v", err)
	}
}

func isNoDocuments(err error) bool {
	return err == mongo.ErrNoDocuments
}
