package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/edutrack/verify-api/internal/domain"
)

// RegistrationRepo provides typed DynamoDB operations for the registrations table.
// PK: user_id, GSI: email-index.
//
// Token consumption goes through a single conditional UpdateItem so that two
// concurrent verification attempts can never both succeed: DynamoDB decides
// the race, not the caller.
type RegistrationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRegistrationRepo(client *dynamodb.Client, tableName string) *RegistrationRepo {
	return &RegistrationRepo{client: client, tableName: tableName}
}

// Put creates a new registration. Fails with domain.ErrConflict if a record
// with the same user_id already exists.
func (r *RegistrationRepo) Put(ctx context.Context, reg *domain.Registration) error {
	item, err := attributevalue.MarshalMap(reg)
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("registration %s already exists: %w", reg.UserID, domain.ErrConflict)
	}
	return err
}

func (r *RegistrationRepo) Get(ctx context.Context, userID string) (*domain.Registration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("registration not found: %w", domain.ErrNotFound)
	}
	var reg domain.Registration
	if err := attributevalue.UnmarshalMap(out.Item, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepo) GetByEmail(ctx context.Context, email string) (*domain.Registration, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("email-index"),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": "email"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("registration not found: %w", domain.ErrNotFound)
	}
	var reg domain.Registration
	if err := attributevalue.UnmarshalMap(out.Items[0], &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// SetToken overwrites the outstanding token and expiry, invalidating any
// prior token for this registration. Fails with domain.ErrNotFound when the
// registration does not exist.
func (r *RegistrationRepo) SetToken(ctx context.Context, userID, token string, expiresAt int64) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("user_id", userID),
		UpdateExpression:    aws.String("SET #tok = :tok, expires_at = :exp, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{
			"#tok": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tok": &types.AttributeValueMemberS{Value: token},
			":exp": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt)},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("registration %s: %w", userID, domain.ErrNotFound)
	}
	return err
}

// MarkVerifiedAndClear consumes the token: sets is_verified and removes the
// token and expiry in one conditional update. The condition requires the
// record to be unverified and the stored token to equal expectedToken, so at
// most one concurrent caller ever succeeds. A failed condition surfaces as
// domain.ErrConflict; the caller re-reads to decide what the loser saw.
func (r *RegistrationRepo) MarkVerifiedAndClear(ctx context.Context, userID, expectedToken string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("user_id", userID),
		UpdateExpression:    aws.String("SET is_verified = :t, updated_at = :now REMOVE #tok, expires_at"),
		ConditionExpression: aws.String("attribute_exists(user_id) AND is_verified = :f AND #tok = :expected"),
		ExpressionAttributeNames: map[string]string{
			"#tok": "token",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":        &types.AttributeValueMemberBOOL{Value: true},
			":f":        &types.AttributeValueMemberBOOL{Value: false},
			":expected": &types.AttributeValueMemberS{Value: expectedToken},
			":now":      &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if isConditionalCheckFailed(err) {
		return fmt.Errorf("consume token for %s: %w", userID, domain.ErrConflict)
	}
	return err
}

// Update applies a partial attribute update. Kept for operational tooling;
// verification state changes must go through MarkVerifiedAndClear.
func (r *RegistrationRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
