package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// batchGetLimit is the most keys BatchGetItem accepts per call.
const batchGetLimit = 100

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *dynamodb.BatchGetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error)
}

// DynamoDBConfig configures the DynamoDB store.
type DynamoDBConfig struct {
	TableName string
	// ConsistentRead applies to point and batch reads. Index queries are
	// always eventually consistent.
	ConsistentRead bool
	// UnprocessedRetries bounds the re-submission of unprocessed batch keys.
	UnprocessedRetries uint
}

// DynamoDBStore implements Store on a single DynamoDB table.
type DynamoDBStore struct {
	client DynamoDBAPI
	config DynamoDBConfig
	logger *zap.Logger
}

// NewDynamoDBStore creates a DynamoDB-backed store.
func NewDynamoDBStore(client DynamoDBAPI, config DynamoDBConfig, logger *zap.Logger) *DynamoDBStore {
	if config.UnprocessedRetries == 0 {
		config.UnprocessedRetries = 5
	}
	return &DynamoDBStore{client: client, config: config, logger: logger.Named("dynamodb_store")}
}

// ============================================================================
// POINT OPERATIONS
// ============================================================================

func (s *DynamoDBStore) Get(ctx context.Context, key Key) (Item, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.config.TableName),
		Key:            keyAttributes(key),
		ConsistentRead: aws.Bool(s.config.ConsistentRead),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return out.Item, nil
}

func (s *DynamoDBStore) Put(ctx context.Context, item Item, cond Condition) error {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.config.TableName),
		Item:      item,
	}
	if c, ok := cond.expression(); ok {
		expr, err := expression.NewBuilder().WithCondition(c).Build()
		if err != nil {
			return fmt.Errorf("build put condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return s.writeError("put item", KeyOf(item), cond, err)
	}
	return nil
}

func (s *DynamoDBStore) Update(ctx context.Context, key Key, update Update, cond Condition) error {
	if len(update.Set) == 0 && len(update.Remove) == 0 {
		return errors.New("dynamodb update item: empty update")
	}

	var ub expression.UpdateBuilder
	for name, value := range update.Set {
		ub = ub.Set(expression.Name(name), expression.Value(value))
	}
	for _, name := range update.Remove {
		ub = ub.Remove(expression.Name(name))
	}

	builder := expression.NewBuilder().WithUpdate(ub)
	if c, ok := cond.expression(); ok {
		builder = builder.WithCondition(c)
	}
	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build update expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.config.TableName),
		Key:                       keyAttributes(key),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return s.writeError("update item", key, cond, err)
	}
	return nil
}

func (s *DynamoDBStore) Delete(ctx context.Context, key Key, cond Condition) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.TableName),
		Key:       keyAttributes(key),
	}
	if c, ok := cond.expression(); ok {
		expr, err := expression.NewBuilder().WithCondition(c).Build()
		if err != nil {
			return fmt.Errorf("build delete condition: %w", err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.DeleteItem(ctx, input); err != nil {
		return s.writeError("delete item", key, cond, err)
	}
	return nil
}

// ============================================================================
// QUERIES
// ============================================================================

func (s *DynamoDBStore) Query(ctx context.Context, query Query) (*QueryResult, error) {
	keyCond := expression.Key(query.Index.PartitionAttr).Equal(expression.Value(query.PartitionKey))
	if query.SortKeyPrefix != "" {
		keyCond = keyCond.And(expression.Key(query.Index.SortAttr).BeginsWith(query.SortKeyPrefix))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(!query.Descending),
	}
	if query.Index.IsTable() {
		input.ConsistentRead = aws.Bool(s.config.ConsistentRead)
	} else {
		input.IndexName = aws.String(query.Index.Name)
	}
	if query.Limit > 0 {
		input.Limit = aws.Int32(query.Limit)
	}
	if len(query.StartKey) > 0 {
		input.ExclusiveStartKey = make(map[string]types.AttributeValue, len(query.StartKey))
		for name, value := range query.StartKey {
			input.ExclusiveStartKey[name] = &types.AttributeValueMemberS{Value: value}
		}
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("dynamodb query %s: %w", query.Index.Label(), err)
	}

	result := &QueryResult{Items: out.Items}
	if len(out.LastEvaluatedKey) > 0 {
		result.LastEvaluatedKey = make(map[string]string, len(out.LastEvaluatedKey))
		for name, value := range out.LastEvaluatedKey {
			var str string
			if err := attributevalue.Unmarshal(value, &str); err != nil {
				return nil, fmt.Errorf("decode last evaluated key %s: %w", name, err)
			}
			result.LastEvaluatedKey[name] = str
		}
	}
	return result, nil
}

// BatchGet reads keys in chunks of 100 and re-submits unprocessed keys with
// exponential backoff. Keys still unprocessed after the retries are an error,
// never a silent miss.
func (s *DynamoDBStore) BatchGet(ctx context.Context, keys []Key) ([]Item, error) {
	var items []Item
	for start := 0; start < len(keys); start += batchGetLimit {
		end := min(start+batchGetLimit, len(keys))
		chunk, err := s.batchGetChunk(ctx, keys[start:end])
		if err != nil {
			return nil, err
		}
		items = append(items, chunk...)
	}
	return items, nil
}

func (s *DynamoDBStore) batchGetChunk(ctx context.Context, keys []Key) ([]Item, error) {
	pending := make([]map[string]types.AttributeValue, 0, len(keys))
	for _, k := range keys {
		pending = append(pending, keyAttributes(k))
	}

	var items []Item
	op := func() ([]Item, error) {
		out, err := s.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: map[string]types.KeysAndAttributes{
				s.config.TableName: {
					Keys:           pending,
					ConsistentRead: aws.Bool(s.config.ConsistentRead),
				},
			},
		})
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("dynamodb batch get item: %w", err))
		}
		items = append(items, out.Responses[s.config.TableName]...)

		unprocessed := out.UnprocessedKeys[s.config.TableName]
		if len(unprocessed.Keys) == 0 {
			return items, nil
		}
		pending = unprocessed.Keys
		s.logger.Debug("retrying unprocessed batch keys", zap.Int("count", len(pending)))
		return nil, fmt.Errorf("dynamodb batch get item: %d keys unprocessed", len(pending))
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(s.config.UnprocessedRetries+1),
	)
}

// ============================================================================
// HELPERS
// ============================================================================

func keyAttributes(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrPK: &types.AttributeValueMemberS{Value: key.PartitionKey},
		AttrSK: &types.AttributeValueMemberS{Value: key.SortKey},
	}
}

func (s *DynamoDBStore) writeError(op string, key Key, cond Condition, err error) error {
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		s.logger.Debug("write condition failed",
			zap.String("operation", op),
			zap.String("pk", key.PartitionKey),
			zap.String("sk", key.SortKey),
			zap.Stringer("condition", cond.Kind))
		return fmt.Errorf("dynamodb %s: %w", op, ErrConditionFailed)
	}
	return fmt.Errorf("dynamodb %s: %w", op, err)
}
