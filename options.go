package cardstore

import (
	"fmt"

	"github.com/rs/zerolog"
)

const (
	// DefaultIndexName global secondary index keyed by business name and received date
	DefaultIndexName = "b_name-received_date-index"

	// DefaultPage page number echoed in search results when none is supplied
	DefaultPage = 1

	// DefaultPageSize page size echoed in search results when none is supplied
	DefaultPageSize = 10
)

// UniqueMode selects how the business name and received date pair is kept unique on store
type UniqueMode int

const (
	// UniqueTransaction reserve the pair with a marker item written in the same transaction as the record
	UniqueTransaction UniqueMode = iota

	// UniqueIndexQuery query the index before an unconditional put, concurrent stores of the same pair can both succeed
	UniqueIndexQuery
)

func (m UniqueMode) String() string {
	switch m {
	case UniqueIndexQuery:
		return "index"
	default:
		return "transaction"
	}
}

// ParseUniqueMode parse the name of a unique mode, an empty string selects UniqueTransaction
func ParseUniqueMode(s string) (UniqueMode, error) {
	switch s {
	case "", "transaction":
		return UniqueTransaction, nil
	case "index":
		return UniqueIndexQuery, nil
	}

	return UniqueTransaction, fmt.Errorf("%w: unknown unique mode %q", ErrInvalidArgument, s)
}

// SessionOption assign various settings to the session options
type SessionOption func(opts *SessionOptions)

// SessionOptions contains optional session parameters
type SessionOptions struct {
	storeHooks *StoreHooks
	logger     zerolog.Logger
}

// NewSessionOptions create session options, assign defaults then accept overrides
func NewSessionOptions(opts ...SessionOption) *SessionOptions {
	sessionOpts := &SessionOptions{
		storeHooks: defaultHooks,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(sessionOpts)
	}

	return sessionOpts
}

// SessionWithHooks hooks invoked for every request built by tables in the session
func SessionWithHooks(storeHooks *StoreHooks) SessionOption {
	return func(opts *SessionOptions) {
		if storeHooks != nil {
			opts.storeHooks = storeHooks
		}
	}
}

// SessionWithLogger logger shared by tables in the session
func SessionWithLogger(logger zerolog.Logger) SessionOption {
	return func(opts *SessionOptions) {
		opts.logger = logger
	}
}

// StoreOption assign various settings to the table options
type StoreOption func(opts *StoreOptions)

// StoreOptions contains optional table parameters
type StoreOptions struct {
	indexName  string
	uniqueMode UniqueMode
	logger     *zerolog.Logger
}

// NewStoreOptions create table options, assign defaults then accept overrides
func NewStoreOptions(opts ...StoreOption) *StoreOptions {
	storeOpts := &StoreOptions{
		indexName:  DefaultIndexName,
		uniqueMode: UniqueTransaction,
	}

	for _, opt := range opts {
		opt(storeOpts)
	}

	return storeOpts
}

// WithIndexName name of the business name and received date index
func WithIndexName(name string) StoreOption {
	return func(opts *StoreOptions) {
		if name != "" {
			opts.indexName = name
		}
	}
}

// WithUniqueMode strategy used to keep the business name and received date pair unique
func WithUniqueMode(mode UniqueMode) StoreOption {
	return func(opts *StoreOptions) {
		opts.uniqueMode = mode
	}
}

// WithLogger logger for this table, overrides the session logger
func WithLogger(logger zerolog.Logger) StoreOption {
	return func(opts *StoreOptions) {
		opts.logger = &logger
	}
}

// SearchOption assign various settings to the search options
type SearchOption func(opts *SearchOptions)

// SearchOptions contains optional search parameters
type SearchOptions struct {
	filter     string
	page       int
	pageSize   int
	sortByName bool
	consistent bool
}

// Append append more options which supports conditional addition
func (so *SearchOptions) Append(opts ...SearchOption) {
	for _, opt := range opts {
		opt(so)
	}
}

// NewSearchOptions create search options, assign defaults then accept overrides
// enable the read consistent flag by default
func NewSearchOptions(opts ...SearchOption) *SearchOptions {
	searchOpts := &SearchOptions{
		page:       DefaultPage,
		pageSize:   DefaultPageSize,
		consistent: true,
	}

	for _, opt := range opts {
		opt(searchOpts)
	}

	return searchOpts
}

// SearchWithFilter free text matched against the name, email, telephone, website and address of each record
func SearchWithFilter(filter string) SearchOption {
	return func(opts *SearchOptions) {
		opts.filter = filter
	}
}

// SearchWithPage page number returned with the result, it is not applied to the scan
func SearchWithPage(page int) SearchOption {
	return func(opts *SearchOptions) {
		if page > 0 {
			opts.page = page
		}
	}
}

// SearchWithPageSize page size returned with the result, it is not applied to the scan
func SearchWithPageSize(pageSize int) SearchOption {
	return func(opts *SearchOptions) {
		if pageSize > 0 {
			opts.pageSize = pageSize
		}
	}
}

// SearchWithSortByName sort the matched records by business name rather than scan order
func SearchWithSortByName() SearchOption {
	return func(opts *SearchOptions) {
		opts.sortByName = true
	}
}

// SearchConsistentDisable disable consistent reads
func SearchConsistentDisable() SearchOption {
	return func(opts *SearchOptions) {
		opts.consistent = false
	}
}
