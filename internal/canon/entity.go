package canon

import "time"

// Region is the closed enumeration of sales regions. Raw values that do
// not map onto one of the four compass regions land in RegionUnknown.
type Region string

const (
	RegionNorth   Region = "North"
	RegionSouth   Region = "South"
	RegionEast    Region = "East"
	RegionWest    Region = "West"
	RegionUnknown Region = "Unknown"
)

// KnownRegions lists every canonical region including the Unknown bucket.
var KnownRegions = []Region{RegionNorth, RegionSouth, RegionEast, RegionWest, RegionUnknown}

// IsKnownRegion reports whether r is a member of the canonical enumeration.
func IsKnownRegion(r Region) bool {
	for _, k := range KnownRegions {
		if r == k {
			return true
		}
	}
	return false
}

// Customer is a canonicalized customer record.
//
// Mobile is either a digit string of exactly the configured national length
// or empty (the null case) - never a raw unvalidated value.
type Customer struct {
	ID        int64     `json:"customer_id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile_number"`
	Region    Region    `json:"region"`
	CreatedAt time.Time `json:"created_at"`
}

// Order is a canonicalized order record. Its CustomerID always resolves to
// a canonical Customer from the same run, and AmountMinor is non-negative.
type Order struct {
	ID          int64  `json:"order_id"`
	CustomerID  int64  `json:"customer_id"`
	Date        Date   `json:"order_date"`
	AmountMinor int64  `json:"amount_minor"`
	Status      string `json:"status,omitempty"`
}

// RawRecord is an untyped source record: field name to raw textual value.
// Nothing in a RawRecord is assumed valid until the Canonicalizer has
// processed it.
type RawRecord map[string]string

// Raw field names shared by the ingestion readers and the Canonicalizer.
const (
	FieldCustomerID = "customer_id"
	FieldName       = "name"
	FieldMobile     = "mobile_number"
	FieldRegion     = "region"
	FieldCreatedAt  = "created_at"
	FieldOrderID    = "order_id"
	FieldOrderDate  = "order_date"
	FieldAmount     = "amount"
	FieldStatus     = "status"
)
