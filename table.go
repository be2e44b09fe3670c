package cardstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	dexp "github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/rs/zerolog"
)

const (
	seedFieldCount = 5

	cancellationConditionalCheckFailed = "ConditionalCheckFailed"
)

// Table business card records stored in a single DynamoDB table
type Table struct {
	session    *Session
	tableName  string
	indexName  string
	uniqueMode UniqueMode
	logger     zerolog.Logger
}

func (dt *Table) GetTableName() string {
	return dt.tableName
}

func (dt *Table) GetIndexName() string {
	return dt.indexName
}

// Owner returns a view of the table scoped to records owned by the user
func (dt *Table) Owner(userID string) *OwnerScope {
	return &OwnerScope{table: dt, userID: userID}
}

// Store create a record if its business name and received date pair is not already present
func (dt *Table) Store(rec *Record) (bool, error) {
	return dt.StoreWithContext(context.Background(), rec)
}

// StoreWithContext create a record if its business name and received date pair is not already present
//
// A duplicate pair returns false with a nil error. An empty package id is replaced with one from NewPackageID,
// the generated id and unique key are only assigned to rec when it is written.
func (dt *Table) StoreWithContext(ctx context.Context, rec *Record) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("%w: record is required", ErrInvalidArgument)
	}

	if rec.BusinessName == "" || rec.ReceivedDate == "" {
		return false, fmt.Errorf("%w: b_name and received_date are required", ErrInvalidArgument)
	}

	if isUniqueKey(rec.PackageID) {
		return false, fmt.Errorf("%w: package_id can't start with %q", ErrInvalidArgument, uniqueKeyPrefix)
	}

	// the caller's record is only updated once it has been written
	item := *rec
	if item.PackageID == "" {
		item.PackageID = NewPackageID()
	}

	ctx = setOperationName(ctx, "Store")

	var (
		created bool
		err     error
	)

	if dt.uniqueMode == UniqueIndexQuery {
		created, err = dt.storeWithIndexQuery(ctx, &item)
	} else {
		created, err = dt.storeWithTransaction(ctx, &item)
	}

	if created {
		*rec = item
	}

	return created, err
}

func (dt *Table) storeWithTransaction(ctx context.Context, rec *Record) (bool, error) {
	uniqueKey := buildUniqueKey(rec.BusinessName, rec.ReceivedDate)

	item := *rec
	item.UniqueKey = uniqueKey

	recordItem, err := dynamodbattribute.MarshalMap(&item)
	if err != nil {
		return false, fmt.Errorf("failed to marshal record: %w", err)
	}

	markerItem, err := dynamodbattribute.MarshalMap(&uniqueMarker{PackageID: uniqueKey, RefPackageID: rec.PackageID})
	if err != nil {
		return false, fmt.Errorf("failed to marshal marker: %w", err)
	}

	expr, err := dexp.NewBuilder().WithCondition(dexp.AttributeNotExists(dexp.Name(attrPackageID))).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build condition expression: %w", err)
	}

	// the record is first and the marker second, cancellation reasons are reported in the same order
	txn := &dynamodb.TransactWriteItemsInput{
		TransactItems: []*dynamodb.TransactWriteItem{
			{
				Put: &dynamodb.Put{
					TableName:                aws.String(dt.GetTableName()),
					Item:                     recordItem,
					ConditionExpression:      expr.Condition(),
					ExpressionAttributeNames: expr.Names(),
				},
			},
			{
				Put: &dynamodb.Put{
					TableName:                aws.String(dt.GetTableName()),
					Item:                     markerItem,
					ConditionExpression:      expr.Condition(),
					ExpressionAttributeNames: expr.Names(),
				},
			},
		},
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, txn)

	_, err = dt.session.TransactWriteItemsWithContext(ctx, txn)
	if err != nil {
		if failed, ok := conditionFailures(err); ok {
			if len(failed) > 1 && failed[1] {
				dt.logDuplicate(rec)
				return false, nil
			}
			if len(failed) > 0 && failed[0] {
				return false, ErrRecordExists
			}
		}
		return false, fmt.Errorf("failed to write items: %w", err)
	}

	rec.UniqueKey = uniqueKey

	return true, nil
}

func (dt *Table) storeWithIndexQuery(ctx context.Context, rec *Record) (bool, error) {
	key := dexp.Key(attrBusinessName).Equal(dexp.Value(rec.BusinessName)).
		And(dexp.Key(attrReceivedDate).Equal(dexp.Value(rec.ReceivedDate)))

	expr, err := dexp.NewBuilder().WithKeyCondition(key).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build exp: %w", err)
	}

	query := &dynamodb.QueryInput{
		TableName:                 aws.String(dt.GetTableName()),
		IndexName:                 aws.String(dt.GetIndexName()),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int64(1),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, query)

	res, err := dt.session.QueryWithContext(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to run query: %w", err)
	}

	if len(res.Items) != 0 {
		dt.logDuplicate(rec)
		return false, nil
	}

	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return false, fmt.Errorf("failed to marshal record: %w", err)
	}

	putItem := &dynamodb.PutItemInput{
		TableName: aws.String(dt.GetTableName()),
		Item:      item,
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, putItem)

	_, err = dt.session.PutItemWithContext(ctx, putItem)
	if err != nil {
		return false, fmt.Errorf("failed to put item: %w", err)
	}

	return true, nil
}

// Update the mutable fields of an existing record
func (dt *Table) Update(rec *Record) (bool, error) {
	return dt.UpdateWithContext(context.Background(), rec)
}

// UpdateWithContext the name, email, address and tracking id of an existing record
//
// All four fields are written, an update of a package id which isn't stored returns ErrRecordNotFound.
func (dt *Table) UpdateWithContext(ctx context.Context, rec *Record) (bool, error) {
	if rec == nil || rec.PackageID == "" {
		return false, fmt.Errorf("%w: package_id is required", ErrInvalidArgument)
	}

	if rec.BusinessName == "" {
		return false, fmt.Errorf("%w: b_name is required", ErrInvalidArgument)
	}

	ctx = setOperationName(ctx, "Update")

	update := dexp.Set(dexp.Name(attrBusinessName), dexp.Value(rec.BusinessName)).
		Set(dexp.Name(attrEmail), dexp.Value(rec.Email)).
		Set(dexp.Name(attrAddress), dexp.Value(rec.Address)).
		Set(dexp.Name(attrTrackingID), dexp.Value(rec.TrackingID))

	// marker items share the key space, never rewrite one as a record
	condition := dexp.And(
		dexp.Name(attrPackageID).Equal(dexp.Value(rec.PackageID)),
		dexp.AttributeNotExists(dexp.Name(attrRefPackageID)),
	)

	expr, err := dexp.NewBuilder().WithUpdate(update).WithCondition(condition).Build()
	if err != nil {
		return false, fmt.Errorf("failed to build update expression: %w", err)
	}

	updateItem := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(dt.GetTableName()),
		Key:                       buildKey(rec.PackageID),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, updateItem)

	_, err = dt.session.UpdateItemWithContext(ctx, updateItem)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return false, ErrRecordNotFound
		}
		return false, fmt.Errorf("failed to update item: %w", err)
	}

	return true, nil
}

// Delete the record with the given package id
func (dt *Table) Delete(userID, packageID string) (bool, error) {
	return dt.DeleteWithContext(context.Background(), userID, packageID)
}

// DeleteWithContext the record with the given package id along with its marker
//
// The user id is not a part of the key. Deleting a package id which isn't stored returns true.
func (dt *Table) DeleteWithContext(ctx context.Context, userID, packageID string) (bool, error) {
	if packageID == "" {
		return false, fmt.Errorf("%w: package_id is required", ErrInvalidArgument)
	}

	ctx = setOperationName(ctx, "Delete")

	res, err := dt.getKey(ctx, packageID)
	if err != nil {
		return false, fmt.Errorf("failed to get by key: %w", err)
	}

	if res.Item == nil {
		return true, nil
	}

	if isMarkerItem(res.Item) {
		return false, fmt.Errorf("%w: %s is a unique marker", ErrInvalidArgument, packageID)
	}

	rec, err := DecodeRecord(res.Item)
	if err != nil {
		return false, fmt.Errorf("failed to decode item: %w", err)
	}

	if rec.UniqueKey == "" {
		err = dt.deleteItem(ctx, packageID)
	} else {
		err = dt.deleteWithMarker(ctx, packageID, rec.UniqueKey)
	}
	if err != nil {
		return false, err
	}

	dt.logger.Debug().Str("user_id", userID).Str("package_id", packageID).Msg("deleted record")

	return true, nil
}

func (dt *Table) deleteItem(ctx context.Context, packageID string) error {
	deleteItem := &dynamodb.DeleteItemInput{
		TableName: aws.String(dt.GetTableName()),
		Key:       buildKey(packageID),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, deleteItem)

	_, err := dt.session.DeleteItemWithContext(ctx, deleteItem)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func (dt *Table) deleteWithMarker(ctx context.Context, packageID, uniqueKey string) error {
	txn := &dynamodb.TransactWriteItemsInput{
		TransactItems: []*dynamodb.TransactWriteItem{
			{Delete: &dynamodb.Delete{TableName: aws.String(dt.GetTableName()), Key: buildKey(packageID)}},
			{Delete: &dynamodb.Delete{TableName: aws.String(dt.GetTableName()), Key: buildKey(uniqueKey)}},
		},
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, txn)

	_, err := dt.session.TransactWriteItemsWithContext(ctx, txn)
	if err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}

	return nil
}

// Seed write a record built from positional fields
func (dt *Table) Seed(fields ...string) error {
	return dt.SeedWithContext(context.Background(), fields...)
}

// SeedWithContext write a record built from the package id, name, email, address and tracking id fields
//
// The record replaces any stored record with the same package id, a reference to its unique marker is kept.
// Fewer than five fields is a no-op.
func (dt *Table) SeedWithContext(ctx context.Context, fields ...string) error {
	if len(fields) < seedFieldCount {
		dt.logger.Debug().Int("fields", len(fields)).Msg("not enough fields to seed record")
		return nil
	}

	rec := &Record{
		PackageID:    fields[0],
		BusinessName: fields[1],
		Email:        fields[2],
		Address:      fields[3],
		TrackingID:   fields[4],
	}

	if rec.PackageID == "" {
		return fmt.Errorf("%w: package_id is required", ErrInvalidArgument)
	}

	if isUniqueKey(rec.PackageID) {
		return fmt.Errorf("%w: package_id can't start with %q", ErrInvalidArgument, uniqueKeyPrefix)
	}

	ctx = setOperationName(ctx, "Seed")

	res, err := dt.getKey(ctx, rec.PackageID)
	if err != nil {
		return fmt.Errorf("failed to get by key: %w", err)
	}

	if res.Item != nil {
		if isMarkerItem(res.Item) {
			return fmt.Errorf("%w: %s is a unique marker", ErrInvalidArgument, rec.PackageID)
		}

		existing, err := DecodeRecord(res.Item)
		if err != nil {
			return fmt.Errorf("failed to decode item: %w", err)
		}

		// keep the reference to the marker so delete still releases the pair
		rec.UniqueKey = existing.UniqueKey
	}

	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// the put replaces the record, it only fails if the unique key read above has since changed
	condition := dexp.AttributeNotExists(dexp.Name(attrRefPackageID))
	if rec.UniqueKey == "" {
		condition = condition.And(dexp.AttributeNotExists(dexp.Name(attrUniqueKey)))
	} else {
		condition = condition.And(dexp.Name(attrUniqueKey).Equal(dexp.Value(rec.UniqueKey)))
	}

	expr, err := dexp.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("failed to build condition expression: %w", err)
	}

	putItem := &dynamodb.PutItemInput{
		TableName:                 aws.String(dt.GetTableName()),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, putItem)

	_, err = dt.session.PutItemWithContext(ctx, putItem)
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrRecordModified
		}
		return fmt.Errorf("failed to put item: %w", err)
	}

	dt.logger.Debug().Str("package_id", rec.PackageID).Msg("seeded record")

	return nil
}

// Get a record given its package id
func (dt *Table) Get(packageID string) (*Record, error) {
	return dt.GetWithContext(context.Background(), packageID)
}

// GetWithContext a record given its package id using a consistent read
func (dt *Table) GetWithContext(ctx context.Context, packageID string) (*Record, error) {
	if packageID == "" {
		return nil, fmt.Errorf("%w: package_id is required", ErrInvalidArgument)
	}

	ctx = setOperationName(ctx, "Get")

	res, err := dt.getKey(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get by key: %w", err)
	}

	if res.Item == nil || isMarkerItem(res.Item) {
		return nil, ErrRecordNotFound
	}

	rec, err := DecodeRecord(res.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to decode item: %w", err)
	}

	return rec, nil
}

// Search the records owned by a user
func (dt *Table) Search(userID string, options ...SearchOption) (*SearchResult, error) {
	return dt.SearchWithContext(context.Background(), userID, options...)
}

// SearchWithContext scan the table for records owned by the user, optionally matching a free text filter
//
// Every page of the scan is read, the page and page size options are returned with the result but not applied.
// A failed scan is returned as an error, no matches is an empty result.
func (dt *Table) SearchWithContext(ctx context.Context, userID string, options ...SearchOption) (*SearchResult, error) {
	searchOptions := NewSearchOptions(options...)

	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is a mandatory field", ErrInvalidArgument)
	}

	ctx = setOperationName(ctx, "Search")

	expr, err := dexp.NewBuilder().WithFilter(buildSearchFilter(userID, searchOptions.filter)).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build filter expression: %w", err)
	}

	scan := &dynamodb.ScanInput{
		TableName:                 aws.String(dt.GetTableName()),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(searchOptions.consistent),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, scan)

	var items []map[string]*dynamodb.AttributeValue

	err = dt.session.ScanPagesWithContext(ctx, scan,
		func(page *dynamodb.ScanOutput, lastPage bool) bool {
			items = append(items, page.Items...)
			return true
		})
	if err != nil {
		dt.logger.Error().Err(err).Str("user_id", userID).Msg("failed to scan table")
		return nil, fmt.Errorf("failed to scan table: %w", err)
	}

	records := make([]*Record, 0, len(items))

	for _, item := range items {
		rec, err := DecodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("failed to decode item: %w", err)
		}

		records = append(records, rec)
	}

	if searchOptions.sortByName {
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].BusinessName < records[j].BusinessName
		})
	}

	return &SearchResult{
		Records:  records,
		Page:     searchOptions.page,
		PageSize: searchOptions.pageSize,
	}, nil
}

// CreateTable create the table and its business name and received date index
func (dt *Table) CreateTable() error {
	return dt.CreateTableWithContext(context.Background())
}

// CreateTableWithContext create the table and its index then wait for it to become active
//
// A table which already exists is not an error.
func (dt *Table) CreateTableWithContext(ctx context.Context) error {
	ctx = setOperationName(ctx, "CreateTable")

	createTable := &dynamodb.CreateTableInput{
		TableName:   aws.String(dt.GetTableName()),
		BillingMode: aws.String(dynamodb.BillingModePayPerRequest),
		KeySchema: []*dynamodb.KeySchemaElement{
			{AttributeName: aws.String(attrPackageID), KeyType: aws.String(dynamodb.KeyTypeHash)},
		},
		GlobalSecondaryIndexes: []*dynamodb.GlobalSecondaryIndex{
			{
				IndexName: aws.String(dt.GetIndexName()),
				KeySchema: []*dynamodb.KeySchemaElement{
					{AttributeName: aws.String(attrBusinessName), KeyType: aws.String(dynamodb.KeyTypeHash)},
					{AttributeName: aws.String(attrReceivedDate), KeyType: aws.String(dynamodb.KeyTypeRange)},
				},
				Projection: &dynamodb.Projection{ProjectionType: aws.String(dynamodb.ProjectionTypeAll)},
			},
		},
		AttributeDefinitions: []*dynamodb.AttributeDefinition{
			{AttributeName: aws.String(attrPackageID), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			{AttributeName: aws.String(attrBusinessName), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
			{AttributeName: aws.String(attrReceivedDate), AttributeType: aws.String(dynamodb.ScalarAttributeTypeS)},
		},
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, createTable)

	_, err := dt.session.CreateTableWithContext(ctx, createTable)
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeResourceInUseException {
			return nil
		}
		return fmt.Errorf("failed to create table: %w", err)
	}

	err = dt.session.WaitUntilTableExistsWithContext(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(dt.GetTableName()),
	})
	if err != nil {
		return fmt.Errorf("failed to wait for table: %w", err)
	}

	dt.logger.Info().Str("index", dt.GetIndexName()).Msg("created table")

	return nil
}

func (dt *Table) getKey(ctx context.Context, packageID string) (*dynamodb.GetItemOutput, error) {
	getItem := &dynamodb.GetItemInput{
		TableName:      aws.String(dt.GetTableName()),
		ConsistentRead: aws.Bool(true),
		Key:            buildKey(packageID),
	}

	ctx = dt.session.storeHooks.requestBuilt(ctx, getItem)

	return dt.session.GetItemWithContext(ctx, getItem)
}

func (dt *Table) logDuplicate(rec *Record) {
	dt.logger.Info().
		Str("b_name", rec.BusinessName).
		Str("received_date", rec.ReceivedDate).
		Str("mode", dt.uniqueMode.String()).
		Msg("record already exists with the same received_date and b_name")
}

func buildSearchFilter(userID, filter string) dexp.ConditionBuilder {
	owner := dexp.Name(attrUserID).Equal(dexp.Value(userID))

	if filter == "" {
		return owner
	}

	matches := dexp.Or(
		dexp.Name(attrBusinessName).Contains(filter),
		dexp.Name(attrEmail).Contains(filter),
		dexp.Name(attrTelephone).Contains(filter),
		dexp.Name(attrWebsite).Contains(filter),
		dexp.Name(attrAddress).Contains(filter),
	)

	return dexp.And(owner, matches)
}

func isConditionalCheckFailed(err error) bool {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException
	}

	return false
}

// conditionFailures reports which items of a cancelled transaction failed their condition check
func conditionFailures(err error) ([]bool, bool) {
	var tce *dynamodb.TransactionCanceledException
	if !errors.As(err, &tce) {
		return nil, false
	}

	failed := make([]bool, len(tce.CancellationReasons))

	for n, reason := range tce.CancellationReasons {
		failed[n] = aws.StringValue(reason.Code) == cancellationConditionalCheckFailed
	}

	return failed, true
}
