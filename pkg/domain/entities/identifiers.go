package entities

// ProductID represents a unique product identifier
type ProductID string

// LocationID represents a stocking location (plant, warehouse, DC)
type LocationID string

// CustomerID represents a customer in the collaborative forecast
type CustomerID string

// AllCustomers is the pseudo-customer that aggregates every real customer for a month
const AllCustomers CustomerID = "ALL"

// ItemKey identifies a (product, location) pair
type ItemKey struct {
	ProductID  ProductID
	LocationID LocationID
}

// String returns the "product|location" form used in logs and map keys
func (k ItemKey) String() string {
	return string(k.ProductID) + "|" + string(k.LocationID)
}
