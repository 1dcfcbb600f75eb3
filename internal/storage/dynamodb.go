package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/cyderes/notion-sync/internal/config"
	"github.com/cyderes/notion-sync/internal/models"
)

const (
	latestKey = "latest"
	statusKey = "sync_status"
)

// DynamoDBStorage mirrors the latest snapshot into a DynamoDB table
type DynamoDBStorage struct {
	client    dynamodbiface.DynamoDBAPI
	tableName string
}

// NewDynamoDBStorage creates a new DynamoDB storage instance
func NewDynamoDBStorage(cfg config.StorageConfig) (*DynamoDBStorage, error) {
	awsConfig := &aws.Config{
		Region: aws.String(cfg.Region),
	}

	// For local testing with DynamoDB Local
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	storage := &DynamoDBStorage{
		client:    dynamodb.New(sess),
		tableName: cfg.TableName,
	}

	for _, table := range []string{storage.tableName, storage.statusTable()} {
		if err := storage.ensureTable(table); err != nil {
			return nil, fmt.Errorf("failed to ensure table %s exists: %w", table, err)
		}
	}

	return storage, nil
}

func (d *DynamoDBStorage) statusTable() string { return d.tableName + "_status" }

// ensureTable creates a table keyed by a string id if it doesn't exist
func (d *DynamoDBStorage) ensureTable(table string) error {
	_, err := d.client.DescribeTable(&dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err == nil {
		return nil
	}

	_, err = d.client.CreateTable(&dynamodb.CreateTableInput{
		TableName: aws.String(table),
		KeySchema: []*dynamodb.KeySchemaElement{
			{
				AttributeName: aws.String("id"),
				KeyType:       aws.String("HASH"),
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{
				AttributeName: aws.String("id"),
				AttributeType: aws.String("S"),
			},
		},
		BillingMode: aws.String("PAY_PER_REQUEST"),
	})
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	return d.client.WaitUntilTableExists(&dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
}

// StoreDocument overwrites the "latest" item with the encoded document
func (d *DynamoDBStorage) StoreDocument(ctx context.Context, doc *models.Document) error {
	b, err := Encode(doc)
	if err != nil {
		return err
	}

	_, err = d.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]*dynamodb.AttributeValue{
			"id":        {S: aws.String(latestKey)},
			"synced_at": {S: aws.String(doc.SyncedAt.UTC().Format(time.RFC3339Nano))},
			"document":  {S: aws.String(string(b))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to store document in dynamodb: %w", err)
	}
	return nil
}

// UpdateSyncStatus updates the sync status record. A zero LastSuccessfulRun
// leaves the stored value untouched.
func (d *DynamoDBStorage) UpdateSyncStatus(ctx context.Context, status models.SyncStatus) error {
	item, err := dynamodbattribute.MarshalMap(status)
	if err != nil {
		return fmt.Errorf("failed to marshal sync status: %w", err)
	}
	if status.LastSuccessfulRun.IsZero() {
		delete(item, "last_successful_run")
	}

	_, err = d.client.UpdateItemWithContext(ctx, statusUpdate(d.statusTable(), item))
	if err != nil {
		return fmt.Errorf("failed to store sync status in dynamodb: %w", err)
	}
	return nil
}

// statusUpdate builds a SET expression over every attribute of item
func statusUpdate(table string, item map[string]*dynamodb.AttributeValue) *dynamodb.UpdateItemInput {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make(map[string]*string, len(keys))
	values := make(map[string]*dynamodb.AttributeValue, len(keys))
	sets := make([]string, 0, len(keys))
	for i, k := range keys {
		name, value := fmt.Sprintf("#f%d", i), fmt.Sprintf(":v%d", i)
		names[name] = aws.String(k)
		values[value] = item[k]
		sets = append(sets, name+" = "+value)
	}

	return &dynamodb.UpdateItemInput{
		TableName: aws.String(table),
		Key: map[string]*dynamodb.AttributeValue{
			"id": {S: aws.String(statusKey)},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}
}

// Close closes the DynamoDB connection
func (d *DynamoDBStorage) Close() error {
	// DynamoDB client doesn't need explicit closing
	return nil
}
