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
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// fakeDynamo is an in-memory single-table DynamoDB double. UpdateItem
// interprets the same SET expressions the store builds, so merge semantics
// are exercised end to end.
type fakeDynamo struct {
	items map[string]map[string]types.AttributeValue
	order []string
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func itemKey(key map[string]types.AttributeValue) string {
	return key["account"].(*types.AttributeValueMemberS).Value
}

func (f *fakeDynamo) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item := f.items[itemKey(params.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	username := params.ExpressionAttributeValues[":username"].(*types.AttributeValueMemberS).Value

	var out []map[string]types.AttributeValue
	for _, account := range f.order {
		item, ok := f.items[account]
		if !ok {
			continue
		}
		if attr, ok := item["username"].(*types.AttributeValueMemberS); ok && attr.Value == username {
			out = append(out, item)
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	account := itemKey(params.Key)
	item, ok := f.items[account]
	if !ok {
		item = map[string]types.AttributeValue{
			"account": &types.AttributeValueMemberS{Value: account},
		}
		f.items[account] = item
		f.order = append(f.order, account)
	}

	expression := strings.TrimPrefix(aws.ToString(params.UpdateExpression), "SET ")
	for _, part := range strings.Split(expression, ", ") {
		fields := strings.Split(part, " = ")
		name := params.ExpressionAttributeNames[fields[0]]
		item[name] = params.ExpressionAttributeValues[fields[1]]
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func newTestStore(t *testing.T) (*DynamoStore, *fakeDynamo) {
	t.Helper()
	fake := newFakeDynamo()
	store := NewDynamoStore(fake, "test-table", "username-index", zap.NewNop())
	return store, fake
}

func TestUpsertThenGetByAccount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	before := time.Now().Unix()

	err := store.Upsert(ctx, "alice@example.com", "alice", "app installed by alice", Patch{
		InstallationID: aws.String("12345"),
		Owner:          aws.String("alice"),
	})
	if err != nil {
		t.Fatalf("Upsert returns error: %v", err)
	}

	record, err := store.GetByAccount(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByAccount returns error: %v", err)
	}
	if record == nil {
		t.Fatal("GetByAccount returns nil after Upsert")
	}
	if record.InstallationID != "12345" {
		t.Errorf("InstallationID is %q, expected %q", record.InstallationID, "12345")
	}
	if record.Username != "alice" {
		t.Errorf("Username is %q, expected %q", record.Username, "alice")
	}
	if record.LastUpdated < before {
		t.Errorf("LastUpdated is %d, expected >= %d", record.LastUpdated, before)
	}
}

func TestGetByAccount_Absent(t *testing.T) {
	store, _ := newTestStore(t)

	record, err := store.GetByAccount(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("GetByAccount returns error: %v", err)
	}
	if record != nil {
		t.Errorf("GetByAccount returns %+v for an absent key, expected nil", record)
	}
}

func TestUpsert_MergePreservesExistingFields(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "alice@example.com", "alice", "initial install", Patch{
		InstallationID: aws.String("12345"),
		Owner:          aws.String("alice"),
		AuthToken:      aws.String("token-1"),
	})
	if err != nil {
		t.Fatalf("first Upsert returns error: %v", err)
	}

	// Second upsert provides only details; installationId, owner and
	// authToken must survive untouched.
	if err := store.Upsert(ctx, "alice@example.com", "alice", "details only", Patch{}); err != nil {
		t.Fatalf("second Upsert returns error: %v", err)
	}

	record, err := store.GetByAccount(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByAccount returns error: %v", err)
	}
	if record.InstallationID != "12345" {
		t.Errorf("InstallationID is %q, expected preserved %q", record.InstallationID, "12345")
	}
	if record.Owner != "alice" {
		t.Errorf("Owner is %q, expected preserved %q", record.Owner, "alice")
	}
	if record.AuthToken != "token-1" {
		t.Errorf("AuthToken is %q, expected preserved %q", record.AuthToken, "token-1")
	}
	if record.Details != "details only" {
		t.Errorf("Details is %q, expected %q", record.Details, "details only")
	}
}

func TestGetByUsername_PrefersEmailAccount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// A placeholder row and a real email-keyed row for the same username.
	if err := store.Upsert(ctx, ErrorAccount("bob"), "bob", "no email found", Patch{}); err != nil {
		t.Fatalf("Upsert placeholder returns error: %v", err)
	}
	if err := store.Upsert(ctx, "bob@example.com", "bob", "resolved", Patch{InstallationID: aws.String("7")}); err != nil {
		t.Fatalf("Upsert account returns error: %v", err)
	}

	record, err := store.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername returns error: %v", err)
	}
	if record == nil {
		t.Fatal("GetByUsername returns nil")
	}
	if record.Account != "bob@example.com" {
		t.Errorf("GetByUsername picked %q, expected the email-keyed row", record.Account)
	}
}

func TestGetByUsername_NoEmailMatch(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, ErrorAccount("bob"), "bob", "no email found", Patch{}); err != nil {
		t.Fatalf("Upsert returns error: %v", err)
	}

	record, err := store.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername returns error: %v", err)
	}
	if record != nil {
		t.Errorf("GetByUsername returns %+v, expected nil when only a placeholder exists", record)
	}
}

func TestDeleteByUsername_InstallInfoOnly(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, "alice@example.com", "alice", "app installed", Patch{
		InstallationID: aws.String("12345"),
		Owner:          aws.String("alice"),
	})
	if err != nil {
		t.Fatalf("Upsert returns error: %v", err)
	}

	if err := store.DeleteByUsername(ctx, "alice", "mallory", true); err != nil {
		t.Fatalf("DeleteByUsername returns error: %v", err)
	}

	record, err := store.GetByAccount(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByAccount returns error: %v", err)
	}
	if record == nil {
		t.Fatal("install-info-only delete must preserve the row")
	}
	if record.InstallationID != "" {
		t.Errorf("InstallationID is %q, expected blanked", record.InstallationID)
	}
	if record.Username != "alice" {
		t.Errorf("Username is %q, expected preserved", record.Username)
	}
	if !strings.Contains(record.Details, "mallory") {
		t.Errorf("Details is %q, expected an audit note naming the requestor", record.Details)
	}
}

func TestDeleteByUsername_FullDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Upsert(ctx, "alice@example.com", "alice", "app installed", Patch{InstallationID: aws.String("1")}); err != nil {
		t.Fatalf("Upsert returns error: %v", err)
	}
	if err := store.Upsert(ctx, ErrorAccount("alice"), "alice", "stale placeholder", Patch{}); err != nil {
		t.Fatalf("Upsert returns error: %v", err)
	}

	if err := store.DeleteByUsername(ctx, "alice", "alice", false); err != nil {
		t.Fatalf("DeleteByUsername returns error: %v", err)
	}

	// Both rows for the username are gone.
	for _, account := range []string{"alice@example.com", ErrorAccount("alice")} {
		record, err := store.GetByAccount(ctx, account)
		if err != nil {
			t.Fatalf("GetByAccount returns error: %v", err)
		}
		if record != nil {
			t.Errorf("record %q still present after full delete", account)
		}
	}
}

func TestDeleteByUsername_NoMatchesIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.DeleteByUsername(context.Background(), "ghost", "ghost", false); err != nil {
		t.Errorf("DeleteByUsername returns error for zero matches: %v", err)
	}
}

func TestDeleteByAccount_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.DeleteByAccount(context.Background(), "absent@example.com"); err != nil {
		t.Errorf("DeleteByAccount returns error for an absent key: %v", err)
	}
}

func TestBuildUpdate_ExpressionAssembly(t *testing.T) {
	patch := Patch{
		Username:       aws.String("alice"),
		InstallationID: aws.String("12345"),
		Owner:          aws.String("alice"),
	}

	expression, names, values := buildUpdate(patch, 1700000000)

	want := "SET #lastUpdated = :lastUpdated, #username = :username, #installationId = :installationId, #owner = :owner"
	if expression != want {
		t.Errorf("expression is %q, expected %q", expression, want)
	}
	if names["#owner"] != "owner" {
		t.Errorf("names missing #owner mapping: %v", names)
	}
	if v := values[":lastUpdated"].(*types.AttributeValueMemberN).Value; v != "1700000000" {
		t.Errorf("lastUpdated value is %q", v)
	}
	if v := values[":installationId"].(*types.AttributeValueMemberS).Value; v != "12345" {
		t.Errorf("installationId value is %q", v)
	}
	if _, present := values[":details"]; present {
		t.Error("details should not appear in the expression when not patched")
	}
}
