package cardstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
)

type contextKey int

const (
	OperationNameKey contextKey = 1 + iota
)

// DecodeRecord decode a DDB item into a Record
func DecodeRecord(item map[string]*dynamodb.AttributeValue) (*Record, error) {
	rec := new(Record)

	err := dynamodbattribute.UnmarshalMap(item, rec)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// isMarkerItem marker items reference the record which owns them
func isMarkerItem(item map[string]*dynamodb.AttributeValue) bool {
	_, ok := item[attrRefPackageID]
	return ok
}

func buildKey(packageID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		attrPackageID: {S: aws.String(packageID)},
	}
}

// isUniqueKey package ids with the marker prefix are reserved for marker items
func isUniqueKey(packageID string) bool {
	return strings.HasPrefix(packageID, uniqueKeyPrefix)
}

// buildUniqueKey the name length prefix keeps "a#b"/"c" and "a"/"b#c" apart
func buildUniqueKey(businessName, receivedDate string) string {
	return fmt.Sprintf("%s%d#%s#%s", uniqueKeyPrefix, len(businessName), businessName, receivedDate)
}

// OperationName extracts the name of the operation being handled in the given
// context. If it is not known, it returns ("").
func OperationName(ctx context.Context) string {
	name, _ := ctx.Value(OperationNameKey).(string)
	return name
}

func setOperationName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, OperationNameKey, name)
}
