// Command sweeper is the Lambda that finishes cascade deletes from the
// table's DynamoDB stream.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacentio/platewise/config"
	"github.com/jacentio/platewise/internal/logger"
	"github.com/jacentio/platewise/repository"
	"github.com/jacentio/platewise/store"
	"github.com/jacentio/platewise/stream"
)

var _ stream.Sweeper = (*repository.Repository)(nil)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New(cfg.ServiceName+"-sweeper", cfg.LogLevel)

	client, err := store.NewDynamoClient(context.Background(), cfg.AWSRegion, cfg.DynamoDBEndpoint)
	if err != nil {
		log.Error("create dynamodb client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	storeCfg := cfg.StoreConfig()
	s := store.New(client, storeCfg)
	s.SetLogger(log)

	repo := repository.New(s, storeCfg, repository.Options{
		Logger:             log,
		Registerer:         prometheus.DefaultRegisterer,
		CascadeConcurrency: cfg.CascadeConcurrency,
	})
	handler := stream.NewHandler(repo, repo.Registry(), storeCfg, log)

	log.Info("sweeper starting", slog.String("table", storeCfg.TableName))
	lambda.Start(handler.HandleRemovals)
}
