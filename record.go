package cardstore

const (
	attrPackageID    = "package_id"
	attrBusinessName = "b_name"
	attrReceivedDate = "received_date"
	attrEmail        = "Email"
	attrAddress      = "Address"
	attrTrackingID   = "tracking_id"
	attrUserID       = "user_id"
	attrTelephone    = "Telephone"
	attrWebsite      = "Website"
	attrUniqueKey    = "unique_key"
	attrRefPackageID = "ref_package_id"

	uniqueKeyPrefix = "unique#"
)

// Record represents a business card received as a package scan
//
// Empty fields are omitted when written, DynamoDB rejects empty strings in index key attributes.
type Record struct {
	PackageID    string `dynamodbav:"package_id" json:"package_id"`
	BusinessName string `dynamodbav:"b_name,omitempty" json:"b_name,omitempty"`
	ReceivedDate string `dynamodbav:"received_date,omitempty" json:"received_date,omitempty"`
	Email        string `dynamodbav:"Email,omitempty" json:"Email,omitempty"`
	Address      string `dynamodbav:"Address,omitempty" json:"Address,omitempty"`
	TrackingID   string `dynamodbav:"tracking_id,omitempty" json:"tracking_id,omitempty"`
	UserID       string `dynamodbav:"user_id,omitempty" json:"user_id,omitempty"`
	Telephone    string `dynamodbav:"Telephone,omitempty" json:"Telephone,omitempty"`
	Website      string `dynamodbav:"Website,omitempty" json:"Website,omitempty"`
	// key of the marker item reserving the business name and received date, set on transactional stores
	UniqueKey string `dynamodbav:"unique_key,omitempty" json:"-"`
}

// SearchResult records matched by a search along with the requested page details
type SearchResult struct {
	Records  []*Record `json:"records"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// uniqueMarker reserves a business name and received date pair for a single record
type uniqueMarker struct {
	PackageID    string `dynamodbav:"package_id"`
	RefPackageID string `dynamodbav:"ref_package_id"`
}
