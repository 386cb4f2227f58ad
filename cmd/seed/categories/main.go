package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lostandfound/backend/internal/config"
	"github.com/lostandfound/backend/internal/domain"
	"github.com/lostandfound/backend/internal/logging"
	"github.com/lostandfound/backend/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// categoryNamespace derives stable exposed ids, so reseeding updates rather than duplicates
var categoryNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

var displayNames = []string{
	"Electronics",
	"Documents",
	"Keys",
	"Wallets and purses",
	"Bags and luggage",
	"Clothing",
	"Jewellery and watches",
	"Glasses",
	"Pets",
	"Toys",
	"Sports equipment",
	"Bicycles and scooters",
	"Other",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := repository.NewMongoCategoryRepository(client.Database(cfg.MongoDB.Database))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range displayNames {
		category := &domain.Category{
			ExposedID:   uuid.NewSHA1(categoryNamespace, []byte(name)).String(),
			DisplayName: name,
		}
		g.Go(func() error {
			if err := repo.Upsert(gctx, category); err != nil {
				return err
			}
			logger.Info("category seeded", zap.String("id", category.ExposedID), zap.String("name", category.DisplayName))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Fatal("seeding categories failed", zap.Error(err))
	}
	logger.Info("seeding categories complete", zap.Int("count", len(displayNames)))
}
