package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jacentio/platewise"
)

// API is the subset of the DynamoDB client the Store uses.
type API interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ API = (*dynamodb.Client)(nil)

// Store provides DynamoDB operations on the single entity table.
type Store struct {
	client API
	config Config
	logger *slog.Logger
}

// New creates a new Store instance.
func New(client API, config Config) *Store {
	config.validate()
	return &Store{
		client: client,
		config: config,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used for slow operation warnings.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// Config returns the store configuration with defaults applied.
func (s *Store) Config() Config {
	return s.config
}

// Get retrieves an item by key, returning ErrNotFound if it is missing.
func (s *Store) Get(ctx context.Context, key PK) (_ map[string]types.AttributeValue, err error) {
	ctx, end := s.traceOp(ctx, "GetItem")
	defer func() { end(err) }()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.TableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, platewise.ErrNotFound
	}
	return result.Item, nil
}

// Create puts a new item, failing with ErrConflict if its key is already taken.
func (s *Store) Create(ctx context.Context, entity Entity, item map[string]types.AttributeValue) (err error) {
	ctx, end := s.traceOp(ctx, "PutItem", attribute.String("entity.ref", entity.EntityRef()))
	defer func() { end(err) }()

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.config.TableName),
		Item:                     item,
		ConditionExpression:      aws.String(NotExistsCondition()),
		ExpressionAttributeNames: map[string]string{"#pk": s.config.KeyAttr},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%w: %s already exists", platewise.ErrConflict, entity.EntityRef())
	}
	return err
}

// Update applies an in-place update to an existing item and returns the new image.
// It fails with ErrNotFound if the item is missing or its type doesn't match
// UpdateInput.RequireType, and with ErrConflict if an UpdateInput.Expect value
// no longer holds.
func (s *Store) Update(ctx context.Context, key PK, in UpdateInput) (_ map[string]types.AttributeValue, err error) {
	ctx, end := s.traceOp(ctx, "UpdateItem")
	defer func() { end(err) }()

	updateExpr, names, values := buildUpdateExpression(in)
	if updateExpr == "" {
		return nil, fmt.Errorf("update: no attributes to change")
	}

	condExpr := ExistsCondition()
	condNames := map[string]string{"#pk": s.config.KeyAttr}
	condValues := map[string]types.AttributeValue{}
	if in.RequireType != "" {
		condExpr += " AND " + TypeCondition()
		condNames["#type"] = s.config.TypeAttr
		condValues[":type"] = &types.AttributeValueMemberS{Value: in.RequireType}
	}
	for i, attr := range sortedKeys(in.Expect) {
		nameKey := fmt.Sprintf("#e%d", i)
		valueKey := fmt.Sprintf(":e%d", i)
		condExpr += fmt.Sprintf(" AND %s = %s", nameKey, valueKey)
		condNames[nameKey] = attr
		condValues[valueKey] = in.Expect[attr]
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                aws.String(s.config.TableName),
		Key:                      key,
		UpdateExpression:         aws.String(updateExpr),
		ConditionExpression:      aws.String(condExpr),
		ExpressionAttributeNames: mergeExprNames(names, condNames),
		ReturnValues:             types.ReturnValueAllNew,
	}
	if merged := mergeExprValues(values, condValues); len(merged) > 0 {
		input.ExpressionAttributeValues = merged
	}
	if len(in.Expect) > 0 {
		input.ReturnValuesOnConditionCheckFailure = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	result, err := s.client.UpdateItem(ctx, input)
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		if len(in.Expect) > 0 && s.rowMatchesType(condErr.Item, in.RequireType) {
			return nil, fmt.Errorf("%w: row changed since it was read", platewise.ErrConflict)
		}
		return nil, platewise.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result.Attributes, nil
}

// Delete removes an item of the given type and returns its former attributes.
// It fails with ErrNotFound if no such item exists.
func (s *Store) Delete(ctx context.Context, key PK, entityType string) (_ map[string]types.AttributeValue, err error) {
	ctx, end := s.traceOp(ctx, "DeleteItem", attribute.String("entity.type", entityType))
	defer func() { end(err) }()

	result, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.config.TableName),
		Key:                 key,
		ConditionExpression: aws.String(ExistsCondition() + " AND " + TypeCondition()),
		ExpressionAttributeNames: map[string]string{
			"#pk":   s.config.KeyAttr,
			"#type": s.config.TypeAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":type": &types.AttributeValueMemberS{Value: entityType},
		},
		ReturnValues: types.ReturnValueAllOld,
	})
	if isConditionFailed(err) {
		return nil, platewise.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result.Attributes, nil
}

// QueryPage runs one page of an index query.
func (s *Store) QueryPage(ctx context.Context, in QueryInput) (_ *Page, err error) {
	ctx, end := s.traceOp(ctx, "Query", attribute.String("db.dynamodb.index", in.IndexName))
	defer func() { end(err) }()

	queryInput, err := s.buildQueryInput(in)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Query(ctx, queryInput)
	if err != nil {
		if len(in.StartKey) > 0 {
			if msg, ok := rejectedStartKey(err); ok {
				return nil, fmt.Errorf("%w: %s", platewise.ErrInvalidCursor, msg)
			}
		}
		return nil, err
	}

	page := &Page{Items: result.Items}
	if len(result.LastEvaluatedKey) > 0 {
		page.LastKey = result.LastEvaluatedKey
	}
	return page, nil
}

// QueryAll walks every page of an index query. QueryInput.Limit sets the page size.
func (s *Store) QueryAll(ctx context.Context, in QueryInput) (_ []map[string]types.AttributeValue, err error) {
	ctx, end := s.traceOp(ctx, "Query", attribute.String("db.dynamodb.index", in.IndexName))
	defer func() { end(err) }()

	queryInput, err := s.buildQueryInput(in)
	if err != nil {
		return nil, err
	}

	var items []map[string]types.AttributeValue
	paginator := dynamodb.NewQueryPaginator(s.client, queryInput)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
	}
	return items, nil
}

// buildQueryInput renders a QueryInput for the DynamoDB client.
func (s *Store) buildQueryInput(in QueryInput) (*dynamodb.QueryInput, error) {
	keyExpr, names, values, err := in.Condition.Expression(s.config.TypeAttr)
	if err != nil {
		return nil, err
	}

	queryInput := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    aws.String(keyExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	if in.IndexName != "" {
		queryInput.IndexName = aws.String(in.IndexName)
	}
	if in.Limit > 0 {
		queryInput.Limit = aws.Int32(in.Limit)
	}
	if len(in.StartKey) > 0 {
		queryInput.ExclusiveStartKey = in.StartKey
	}
	if in.Descending {
		queryInput.ScanIndexForward = aws.Bool(false)
	}
	if len(in.Projection) > 0 {
		placeholders := make([]string, len(in.Projection))
		for i, attr := range in.Projection {
			placeholders[i] = fmt.Sprintf("#p%d", i)
			names[placeholders[i]] = attr
		}
		queryInput.ProjectionExpression = aws.String(strings.Join(placeholders, ", "))
	}

	return queryInput, nil
}

// rowMatchesType reports whether a row returned by a failed condition exists
// and, when entityType is set, carries that type.
func (s *Store) rowMatchesType(item map[string]types.AttributeValue, entityType string) bool {
	if len(item) == 0 {
		return false
	}
	if entityType == "" {
		return true
	}
	v, ok := item[s.config.TypeAttr].(*types.AttributeValueMemberS)
	return ok && v.Value == entityType
}

// rejectedStartKey reports whether DynamoDB refused the ExclusiveStartKey,
// as it does for a key taken from another index.
func rejectedStartKey(err error) (string, bool) {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ValidationException" {
		return "", false
	}
	msg := apiErr.ErrorMessage()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "start") || strings.Contains(lower, "exclusivestartkey") {
		return msg, true
	}
	return "", false
}

// isConditionFailed reports whether err is a failed condition expression.
func isConditionFailed(err error) bool {
	var condErr *types.ConditionalCheckFailedException
	return errors.As(err, &condErr)
}
