package domain

// Category determines which booking rules apply to an item.
// It is fixed when the item is created.
type Category string

const (
	// CategorySingleUse covers one-shot items (gifts, sale goods): a single
	// pending request blocks the item, acceptance retires it.
	CategorySingleUse Category = "SINGLE_USE"
	// CategoryRepeatable covers orderable items: any number of concurrent
	// pending orders, the item is never blocked.
	CategoryRepeatable Category = "REPEATABLE"
	// CategoryDateBased covers calendar-scheduled items (loans, rentals,
	// shared items): availability is governed by date-range overlap.
	CategoryDateBased Category = "DATE_BASED"
)

func (c Category) Valid() bool {
	switch c {
	case CategorySingleUse, CategoryRepeatable, CategoryDateBased:
		return true
	}
	return false
}

type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "ACTIVE"
	ItemStatusTaken    ItemStatus = "TAKEN"
	ItemStatusInactive ItemStatus = "INACTIVE"
)

// Item is the slice of the external item record the engine is allowed to
// see. All item mutation goes through the availability gateway; the engine
// never holds a reference to an item beyond its code.
type Item struct {
	Code      string
	OwnerCode string
	Category  Category
	Status    ItemStatus
	Visible   bool
}
