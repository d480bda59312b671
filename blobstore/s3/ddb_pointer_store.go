package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hupe1980/sdmgo/blobstore"
)

// DDBClient is the subset of the DynamoDB API the pointer store uses.
// *dynamodb.Client satisfies it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBPointerStore tracks the current snapshot generation in DynamoDB,
// providing the atomic compare-and-swap semantics plain S3 lacks. It lets
// multiple publishers safely coordinate: each generation can be committed
// exactly once, and losers observe blobstore.ErrConcurrentModification.
//
// Table schema:
//   - Partition key: catalog (string) - the catalog URI, e.g. "s3://bucket/prefix"
//   - Sort key: generation (number) - monotonically increasing generation
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name sdm-snapshots \
//	  --attribute-definitions AttributeName=catalog,AttributeType=S AttributeName=generation,AttributeType=N \
//	  --key-schema AttributeName=catalog,KeyType=HASH AttributeName=generation,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBPointerStore struct {
	client  DDBClient
	table   string
	catalog string
}

// NewDDBPointerStore creates a pointer store backed by the given DynamoDB
// table. catalogURI names the catalog the pointers belong to and becomes the
// partition key, so one table can serve many catalogs.
func NewDDBPointerStore(client DDBClient, table, catalogURI string) *DDBPointerStore {
	return &DDBPointerStore{
		client:  client,
		table:   table,
		catalog: catalogURI,
	}
}

// Current returns the manifest name and generation of the latest commit.
// Returns blobstore.ErrNotFound if nothing has been committed yet.
func (s *DDBPointerStore) Current(ctx context.Context) (string, uint64, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#catalog = :catalog"),
		ExpressionAttributeNames: map[string]string{
			"#catalog": "catalog",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":catalog": &types.AttributeValueMemberS{Value: s.catalog},
		},
		ScanIndexForward: aws.Bool(false), // newest generation first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return "", 0, fmt.Errorf("query pointer: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", 0, blobstore.ErrNotFound
	}

	item := resp.Items[0]

	genAttr, ok := item["generation"].(*types.AttributeValueMemberN)
	if !ok {
		return "", 0, errors.New("invalid generation attribute")
	}
	manifestAttr, ok := item["manifest"].(*types.AttributeValueMemberS)
	if !ok {
		return "", 0, errors.New("invalid manifest attribute")
	}

	generation, err := strconv.ParseUint(genAttr.Value, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("parse generation: %w", err)
	}

	return manifestAttr.Value, generation, nil
}

// Commit records manifest as the given generation. The conditional put
// guarantees each generation is committed exactly once; a lost race returns
// blobstore.ErrConcurrentModification.
func (s *DDBPointerStore) Commit(ctx context.Context, manifest string, generation uint64) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"catalog":    &types.AttributeValueMemberS{Value: s.catalog},
			"generation": &types.AttributeValueMemberN{Value: strconv.FormatUint(generation, 10)},
			"manifest":   &types.AttributeValueMemberS{Value: manifest},
		},
		ConditionExpression: aws.String("attribute_not_exists(generation)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("commit generation %d: %w", generation, blobstore.ErrConcurrentModification)
		}
		return fmt.Errorf("commit generation %d: %w", generation, err)
	}

	return nil
}
