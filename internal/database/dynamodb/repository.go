package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vadimbarashkov/url-redirector/internal/database"
	"github.com/vadimbarashkov/url-redirector/internal/models"
)

const (
	attrCode         = "code"
	attrOriginalURL  = "originalUrl"
	attrVisitsByDate = "visitsByDate"
)

type linkItem struct {
	Code         string           `dynamodbav:"code"`
	OriginalURL  string           `dynamodbav:"originalUrl"`
	TotalVisits  int64            `dynamodbav:"totalVisits"`
	VisitsByDate map[string]int64 `dynamodbav:"visitsByDate"`
}

func (i *linkItem) toLink() *models.Link {
	return &models.Link{
		Code:         i.Code,
		OriginalURL:  i.OriginalURL,
		TotalVisits:  i.TotalVisits,
		VisitsByDate: i.VisitsByDate,
	}
}

var (
	one  = &types.AttributeValueMemberN{Value: "1"}
	zero = &types.AttributeValueMemberN{Value: "0"}
)

type LinkRepository struct {
	client API
	table  string
}

func NewLinkRepository(client API, table string) *LinkRepository {
	return &LinkRepository{
		client: client,
		table:  table,
	}
}

func (r *LinkRepository) key(code string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrCode: &types.AttributeValueMemberS{Value: code},
	}
}

func (r *LinkRepository) OriginalURL(ctx context.Context, code string) (string, error) {
	const op = "database.dynamodb.LinkRepository.OriginalURL"

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  r.key(code),
		ProjectionExpression: aws.String(attrOriginalURL),
	})
	if err != nil {
		return "", fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	v, ok := out.Item[attrOriginalURL].(*types.AttributeValueMemberS)
	if !ok || v.Value == "" {
		return "", fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	return v.Value, nil
}

func (r *LinkRepository) IncrementTotalVisits(ctx context.Context, code string) error {
	const op = "database.dynamodb.LinkRepository.IncrementTotalVisits"

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(code),
		UpdateExpression: aws.String("SET totalVisits = if_not_exists(totalVisits, :zero) + :inc"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc":  one,
			":zero": zero,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to update item: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) HasVisitsByDate(ctx context.Context, code string) (bool, error) {
	const op = "database.dynamodb.LinkRepository.HasVisitsByDate"

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:            aws.String(r.table),
		Key:                  r.key(code),
		ProjectionExpression: aws.String(attrVisitsByDate),
	})
	if err != nil {
		return false, fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	_, ok := out.Item[attrVisitsByDate]

	return ok, nil
}

func (r *LinkRepository) InitVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.dynamodb.LinkRepository.InitVisitsByDate"

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 r.key(code),
		UpdateExpression:    aws.String("SET visitsByDate = :initial"),
		ConditionExpression: aws.String("attribute_not_exists(visitsByDate)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":initial": &types.AttributeValueMemberM{
				Value: map[string]types.AttributeValue{day: one},
			},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("%s: %w", op, database.ErrVisitsByDateExists)
		}

		return fmt.Errorf("%s: failed to update item: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) IncrementVisitsByDate(ctx context.Context, code, day string) error {
	const op = "database.dynamodb.LinkRepository.IncrementVisitsByDate"

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.table),
		Key:              r.key(code),
		UpdateExpression: aws.String("SET visitsByDate.#day = if_not_exists(visitsByDate.#day, :zero) + :inc"),
		ExpressionAttributeNames: map[string]string{
			"#day": day,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc":  one,
			":zero": zero,
		},
	})
	if err != nil {
		return fmt.Errorf("%s: failed to update item: %w", op, err)
	}

	return nil
}

func (r *LinkRepository) Link(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.dynamodb.LinkRepository.Link"

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(code),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get item: %w", op, err)
	}

	if len(out.Item) == 0 {
		return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
	}

	var item linkItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%s: failed to unmarshal item: %w", op, err)
	}

	return item.toLink(), nil
}
