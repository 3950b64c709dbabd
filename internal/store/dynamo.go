// Copyright 2025 The Polyboost Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Store is the account persistence contract consumed by the event handler.
type Store interface {
	// GetByAccount is a point lookup by primary key. An absent row returns
	// (nil, nil), not an error.
	GetByAccount(ctx context.Context, account string) (*Record, error)
	// GetByUsername queries the username secondary index and returns the
	// first match keyed by an email address, preferring a real contact
	// address over placeholder or org rows. No email-bearing match returns
	// (nil, nil).
	GetByUsername(ctx context.Context, username string) (*Record, error)
	// Upsert merge-updates the row for account: username and details are
	// always written, LastUpdated is refreshed, and the optional fields of
	// extra are written only when present and non-empty. There is no
	// distinct create path.
	Upsert(ctx context.Context, account, username, details string, extra Patch) error
	// Update applies a partial update to the row for account. Unlike
	// Upsert, explicitly-set empty strings are written (used to blank
	// InstallationID on revocation).
	Update(ctx context.Context, account string, p Patch) error
	// DeleteByAccount removes the row unconditionally. Deleting an absent
	// key is not an error.
	DeleteByAccount(ctx context.Context, account string) error
	// DeleteByUsername resolves every row for username through the
	// secondary index. With installInfoOnly it blanks InstallationID and
	// records an audit note naming the requestor; otherwise it deletes the
	// rows outright. Zero matches is a logged no-op.
	DeleteByUsername(ctx context.Context, username, requestor string, installInfoOnly bool) error
}

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore implements Store over a single DynamoDB table with a
// non-unique secondary index on username.
type DynamoStore struct {
	api   DynamoAPI
	table string
	index string
	log   *zap.Logger
	now   func() time.Time
}

// NewDynamoStore creates a store bound to the given table and username
// index.
func NewDynamoStore(api DynamoAPI, table, index string, log *zap.Logger) *DynamoStore {
	return &DynamoStore{
		api:   api,
		table: table,
		index: index,
		log:   log,
		now:   time.Now,
	}
}

// GetByAccount implements Store.
func (s *DynamoStore) GetByAccount(ctx context.Context, account string) (*Record, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       accountKey(account),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", account, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var record Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account %s: %w", account, err)
	}
	return &record, nil
}

// GetByUsername implements Store.
func (s *DynamoStore) GetByUsername(ctx context.Context, username string) (*Record, error) {
	records, err := s.queryByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].HasEmailAccount() {
			return &records[i], nil
		}
	}
	return nil, nil
}

// Upsert implements Store.
func (s *DynamoStore) Upsert(ctx context.Context, account, username, details string, extra Patch) error {
	patch := Patch{
		Username: aws.String(username),
		Details:  aws.String(details),
	}
	// Optional fields follow the original table semantics: empty values are
	// treated as absent, never written.
	if extra.InstallationID != nil && *extra.InstallationID != "" {
		patch.InstallationID = extra.InstallationID
	}
	if extra.Owner != nil && *extra.Owner != "" {
		patch.Owner = extra.Owner
	}
	if extra.AuthToken != nil && *extra.AuthToken != "" {
		patch.AuthToken = extra.AuthToken
	}
	return s.Update(ctx, account, patch)
}

// Update implements Store.
func (s *DynamoStore) Update(ctx context.Context, account string, p Patch) error {
	if p.IsZero() {
		s.log.Warn("no fields to update for account", zap.String("account", account))
		return nil
	}

	expression, names, values := buildUpdate(p, s.now().Unix())
	_, err := s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       accountKey(account),
		UpdateExpression:          aws.String(expression),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account, err)
	}
	return nil
}

// DeleteByAccount implements Store.
func (s *DynamoStore) DeleteByAccount(ctx context.Context, account string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       accountKey(account),
	})
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", account, err)
	}
	return nil
}

// DeleteByUsername implements Store.
func (s *DynamoStore) DeleteByUsername(ctx context.Context, username, requestor string, installInfoOnly bool) error {
	records, err := s.queryByUsername(ctx, username)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		s.log.Info("no records found for username", zap.String("username", username))
		return nil
	}

	for _, record := range records {
		if installInfoOnly {
			patch := Patch{
				Username:       aws.String(username),
				InstallationID: aws.String(""),
				Details:        aws.String(fmt.Sprintf("installation info deleted for username %s by %s", username, requestor)),
			}
			if err := s.Update(ctx, record.Account, patch); err != nil {
				s.log.Error("failed to clear installation info",
					zap.String("account", record.Account),
					zap.String("username", username),
					zap.Error(err))
				continue
			}
			s.log.Info("cleared installation info",
				zap.String("account", record.Account),
				zap.String("username", username))
			continue
		}

		if err := s.DeleteByAccount(ctx, record.Account); err != nil {
			s.log.Error("failed to delete record",
				zap.String("account", record.Account),
				zap.String("username", username),
				zap.Error(err))
			continue
		}
		s.log.Info("deleted record",
			zap.String("account", record.Account),
			zap.String("username", username))
	}
	return nil
}

// queryByUsername returns every row for a username via the secondary index.
// There may be more than one: a real email-keyed account plus a placeholder.
func (s *DynamoStore) queryByUsername(ctx context.Context, username string) ([]Record, error) {
	out, err := s.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.index),
		KeyConditionExpression: aws.String("#username = :username"),
		ExpressionAttributeNames: map[string]string{
			"#username": "username",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query username %s: %w", username, err)
	}

	var records []Record
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records for username %s: %w", username, err)
	}
	return records, nil
}

// buildUpdate assembles the DynamoDB update expression for a patch.
// LastUpdated is always refreshed; every attribute goes through an
// expression name since "owner" collides with a reserved word.
func buildUpdate(p Patch, now int64) (string, map[string]string, map[string]types.AttributeValue) {
	parts := []string{"#lastUpdated = :lastUpdated"}
	names := map[string]string{"#lastUpdated": "lastUpdated"}
	values := map[string]types.AttributeValue{
		":lastUpdated": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now)},
	}

	set := func(attr string, value *string) {
		if value == nil {
			return
		}
		parts = append(parts, fmt.Sprintf("#%s = :%s", attr, attr))
		names["#"+attr] = attr
		values[":"+attr] = &types.AttributeValueMemberS{Value: *value}
	}

	set("username", p.Username)
	set("installationId", p.InstallationID)
	set("owner", p.Owner)
	set("details", p.Details)
	set("authToken", p.AuthToken)

	return "SET " + strings.Join(parts, ", "), names, values
}

func accountKey(account string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"account": &types.AttributeValueMemberS{Value: account},
	}
}
