package cardstore

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/rs/zerolog"
)

// Session holds the DynamoDB client shared by every table created from it
type Session struct {
	dynamodbiface.DynamoDBAPI
	storeHooks *StoreHooks
	logger     zerolog.Logger
}

// Table returns a table which uses this session's client
func (ds *Session) Table(tableName string, options ...StoreOption) *Table {
	storeOptions := NewStoreOptions(options...)

	logger := ds.logger
	if storeOptions.logger != nil {
		logger = *storeOptions.logger
	}

	return &Table{
		session:    ds,
		tableName:  tableName,
		indexName:  storeOptions.indexName,
		uniqueMode: storeOptions.uniqueMode,
		logger:     logger.With().Str("table", tableName).Logger(),
	}
}

// New construct a DynamoDB backed session with default service
func New(cfgs ...*aws.Config) *Session {
	sess := session.Must(session.NewSession(cfgs...))
	dynamoSvc := dynamodb.New(sess)

	return &Session{
		DynamoDBAPI: dynamoSvc,
		storeHooks:  defaultHooks,
		logger:      zerolog.Nop(),
	}
}

// NewWithOptions construct a DynamoDB backed session with the session options provided
func NewWithOptions(awscfg *aws.Config, options ...SessionOption) *Session {
	sessionOptions := NewSessionOptions(options...)

	sess := session.Must(session.NewSession(awscfg))
	dynamoSvc := dynamodb.New(sess)

	return &Session{
		DynamoDBAPI: dynamoSvc,
		storeHooks:  sessionOptions.storeHooks,
		logger:      sessionOptions.logger,
	}
}

// NewWithClient construct a session around an existing client
func NewWithClient(dynamoSvc dynamodbiface.DynamoDBAPI, storeHooks *StoreHooks) *Session {
	if storeHooks == nil {
		storeHooks = defaultHooks
	}

	return &Session{
		DynamoDBAPI: dynamoSvc,
		storeHooks:  storeHooks,
		logger:      zerolog.Nop(),
	}
}
