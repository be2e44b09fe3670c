package cardstore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// StoreHooks callbacks invoked by the table while building requests
type StoreHooks struct {
	// RequestBuilt is passed each DynamoDB input before it is sent, the returned context is used for the request.
	RequestBuilt func(ctx context.Context, params interface{}) context.Context
}

var defaultHooks = &StoreHooks{}

func (sh *StoreHooks) requestBuilt(ctx context.Context, params interface{}) context.Context {
	if sh == nil || sh.RequestBuilt == nil {
		return ctx
	}

	return sh.RequestBuilt(ctx, params)
}

// LoggingHooks log every request built by the table at debug level, the logger is also attached to the request context
func LoggingHooks(logger zerolog.Logger) *StoreHooks {
	return &StoreHooks{
		RequestBuilt: func(ctx context.Context, params interface{}) context.Context {
			logger.Debug().
				Str("operation", OperationName(ctx)).
				Str("input", fmt.Sprintf("%T", params)).
				Msg("request built")

			return logger.WithContext(ctx)
		},
	}
}
