// Package stream provides the DynamoDB Streams handler that finishes cascade
// deletes whose parent row was removed before its children.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise/internal/logger"
	"github.com/jacentio/platewise/store"
)

// Sweeper deletes the children left behind by a removed parent.
type Sweeper interface {
	SweepOrphans(ctx context.Context, parentType, parentID string) (int, error)
}

// Handler processes DynamoDB stream events for orphan sweeps.
type Handler struct {
	sweeper  Sweeper
	registry *store.Registry
	keyAttr  string
	typeAttr string
	logger   *slog.Logger
}

// NewHandler creates a new stream handler. Only removals of types that have
// children in registry are swept.
func NewHandler(sw Sweeper, registry *store.Registry, cfg store.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if registry == nil {
		registry = store.NewRegistry()
	}
	def := store.DefaultConfig()
	if cfg.KeyAttr == "" {
		cfg.KeyAttr = def.KeyAttr
	}
	if cfg.TypeAttr == "" {
		cfg.TypeAttr = def.TypeAttr
	}
	return &Handler{
		sweeper:  sw,
		registry: registry,
		keyAttr:  cfg.KeyAttr,
		typeAttr: cfg.TypeAttr,
		logger:   logger,
	}
}

// HandleRemovals sweeps the children of every parent row removed in event.
// This function is designed to be used as an AWS Lambda handler; returning an
// error makes Lambda retry the batch.
func (h *Handler) HandleRemovals(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.ErrorContext(ctx, "failed to process record",
				slog.String("eventID", record.EventID),
				slog.String("error", err.Error()),
			)
			return err
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != string(events.DynamoDBOperationTypeRemove) {
		return nil
	}

	log := logger.WithTrace(ctx, h.logger)
	parentType := getStringAttr(record.Change.OldImage, h.typeAttr)
	if parentType == "" {
		log.WarnContext(ctx, "removal without old image, skipping",
			slog.String("eventID", record.EventID),
		)
		return nil
	}
	if !h.registry.HasChildren(parentType) {
		return nil
	}

	parentID := keyString(ConvertStreamKey(record.Change.Keys), h.keyAttr)
	if parentID == "" {
		parentID = getStringAttr(record.Change.OldImage, h.keyAttr)
	}
	if parentID == "" {
		return fmt.Errorf("record %s: no %s in keys", record.EventID, h.keyAttr)
	}

	n, err := h.sweeper.SweepOrphans(ctx, parentType, parentID)
	if err != nil {
		return fmt.Errorf("sweep %s %s: %w", parentType, parentID, err)
	}
	log.InfoContext(ctx, "orphan sweep completed",
		slog.String("parentType", parentType),
		slog.String("parentId", parentID),
		slog.Int("childrenDeleted", n),
	)
	return nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

func keyString(pk store.PK, attr string) string {
	if v, ok := pk[attr].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

// ConvertStreamKey converts a DynamoDB stream key to a store.PK.
func ConvertStreamKey(streamKey map[string]events.DynamoDBAttributeValue) store.PK {
	result := make(store.PK)
	for k, v := range streamKey {
		switch v.DataType() {
		case events.DataTypeString:
			result[k] = &types.AttributeValueMemberS{Value: v.String()}
		case events.DataTypeNumber:
			result[k] = &types.AttributeValueMemberN{Value: v.Number()}
		case events.DataTypeBinary:
			result[k] = &types.AttributeValueMemberB{Value: v.Binary()}
		}
	}
	return result
}
