package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/crypto/bcrypt"

	ddbpkg "github.com/sumasri3003/Smart-Inventory-Project/backend/pkg/dynamodb"
)

type credentialItem struct {
	Username     string `dynamodbav:"username"`
	PasswordHash string `dynamodbav:"password_hash"`
	Role         string `dynamodbav:"role"`
}

// DynamoStore reads credentials from a DynamoDB table keyed by "username".
type DynamoStore struct {
	client ddbpkg.ItemGetter
	table  string
}

func NewDynamoStore(client ddbpkg.ItemGetter, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

// Lookup implements CredentialStore.
func (s *DynamoStore) Lookup(ctx context.Context, username string) (*Credential, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"username": &types.AttributeValueMemberS{Value: username},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get credential %s: %w", username, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrCredentialNotFound
	}

	var item credentialItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("decode credential %s: %w", username, err)
	}
	role, err := ParseRole(item.Role)
	if err != nil {
		return nil, fmt.Errorf("credential %s: %w", username, err)
	}
	return &Credential{Username: item.Username, PasswordHash: item.PasswordHash, Role: role}, nil
}

// SeedDynamo upserts users into table, hashing plain-text passwords with
// the given bcrypt cost. Pre-hashed passwords are stored as is.
func SeedDynamo(ctx context.Context, client ddbpkg.ItemWriter, table string, users []SeedUser, cost int) error {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	for _, u := range users {
		hash := u.Password
		if !isBcryptHash(hash) {
			b, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.Username, err)
			}
			hash = string(b)
		}
		item, err := attributevalue.MarshalMap(credentialItem{Username: u.Username, PasswordHash: hash, Role: string(u.Role)})
		if err != nil {
			return fmt.Errorf("encode credential %s: %w", u.Username, err)
		}
		if _, err := client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(table), Item: item}); err != nil {
			return fmt.Errorf("put credential %s: %w", u.Username, err)
		}
	}
	return nil
}
