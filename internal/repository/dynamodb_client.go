package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"site-assistant/internal/domain"
)

const (
	pkPrefixLead = "LEAD#"
	skInquiry    = "INQUIRY"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Client wraps a DynamoDB table holding contact inquiries.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// leadPK returns the partition key for an inquiry.
func leadPK(id string) string {
	return pkPrefixLead + id
}

// SaveInquiry persists a new inquiry. An existing item with the same id is
// never overwritten.
func (c *Client) SaveInquiry(ctx context.Context, in domain.Inquiry) error {
	if strings.TrimSpace(in.ID) == "" {
		return errors.New("repository: SaveInquiry: id is required")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                inquiryItem(in),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: SaveInquiry: %w", err)
	}
	return nil
}

func inquiryItem(in domain.Inquiry) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":        &types.AttributeValueMemberS{Value: leadPK(in.ID)},
		"SK":        &types.AttributeValueMemberS{Value: skInquiry},
		"inquiryId": &types.AttributeValueMemberS{Value: in.ID},
		"name":      &types.AttributeValueMemberS{Value: in.Name},
		"email":     &types.AttributeValueMemberS{Value: in.Email},
		"createdAt": &types.AttributeValueMemberS{Value: in.CreatedAt},
	}
	// Optional form fields are only written when present.
	for key, value := range map[string]string{
		"company": in.Company,
		"budget":  in.Budget,
		"message": in.Message,
	} {
		if value != "" {
			item[key] = &types.AttributeValueMemberS{Value: value}
		}
	}
	return item
}
