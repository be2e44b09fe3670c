package cardstore

import "context"

// OwnerScope records in a table which are owned by a single user
type OwnerScope struct {
	table  *Table
	userID string
}

func (ow *OwnerScope) GetTableName() string {
	return ow.table.GetTableName()
}

func (ow *OwnerScope) GetUserID() string {
	return ow.userID
}

// Store a record owned by this user
func (ow *OwnerScope) Store(rec *Record) (bool, error) {
	return ow.StoreWithContext(context.Background(), rec)
}

// StoreWithContext a record owned by this user, the user id of the record is overwritten
func (ow *OwnerScope) StoreWithContext(ctx context.Context, rec *Record) (bool, error) {
	if rec != nil {
		rec.UserID = ow.userID
	}

	return ow.table.StoreWithContext(ctx, rec)
}

// Search the records owned by this user
func (ow *OwnerScope) Search(options ...SearchOption) (*SearchResult, error) {
	return ow.SearchWithContext(context.Background(), options...)
}

// SearchWithContext the records owned by this user
func (ow *OwnerScope) SearchWithContext(ctx context.Context, options ...SearchOption) (*SearchResult, error) {
	return ow.table.SearchWithContext(ctx, ow.userID, options...)
}

// Delete the record with the given package id
func (ow *OwnerScope) Delete(packageID string) (bool, error) {
	return ow.DeleteWithContext(context.Background(), packageID)
}

// DeleteWithContext the record with the given package id
func (ow *OwnerScope) DeleteWithContext(ctx context.Context, packageID string) (bool, error) {
	return ow.table.DeleteWithContext(ctx, ow.userID, packageID)
}
