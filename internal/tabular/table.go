package tabular

import "github.com/ledgerline/orderpulse/internal/canon"

// customerTable holds customers column-wise with a hash index on ID.
type customerTable struct {
	ids     []int64
	names   []string
	mobiles []string
	regions []string

	byID map[int64]int // ID -> row index
}

func newCustomerTable(customers []canon.Customer) *customerTable {
	t := &customerTable{
		ids:     make([]int64, len(customers)),
		names:   make([]string, len(customers)),
		mobiles: make([]string, len(customers)),
		regions: make([]string, len(customers)),
		byID:    make(map[int64]int, len(customers)),
	}
	for i, c := range customers {
		t.ids[i] = c.ID
		t.names[i] = c.Name
		t.mobiles[i] = c.Mobile
		t.regions[i] = string(c.Region)
		t.byID[c.ID] = i
	}
	return t
}

func (t *customerTable) len() int { return len(t.ids) }

// lookup returns the row index for a customer ID. The canonicalizer
// guarantees every order resolves, so a miss only happens on datasets
// built outside the canonical path.
func (t *customerTable) lookup(id int64) (int, bool) {
	i, ok := t.byID[id]
	return i, ok
}

// orderTable holds orders column-wise.
type orderTable struct {
	ids         []int64
	customerIDs []int64
	dates       []canon.Date
	amounts     []int64 // minor units
}

func newOrderTable(orders []canon.Order) *orderTable {
	t := &orderTable{
		ids:         make([]int64, len(orders)),
		customerIDs: make([]int64, len(orders)),
		dates:       make([]canon.Date, len(orders)),
		amounts:     make([]int64, len(orders)),
	}
	for i, o := range orders {
		t.ids[i] = o.ID
		t.customerIDs[i] = o.CustomerID
		t.dates[i] = o.Date
		t.amounts[i] = o.AmountMinor
	}
	return t
}

func (t *orderTable) len() int { return len(t.ids) }

// filter returns the row indices for which keep is true.
func (t *orderTable) filter(keep func(row int) bool) []int {
	var rows []int
	for i := 0; i < t.len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return rows
}

// allRows returns every row index.
func (t *orderTable) allRows() []int {
	rows := make([]int, t.len())
	for i := range rows {
		rows[i] = i
	}
	return rows
}

// groupBy partitions rows by an int64 key, preserving first-seen key
// order. Callers re-sort per the contract, so the map iteration order
// never leaks into results.
func groupBy(rows []int, key func(row int) int64) (keys []int64, groups map[int64][]int) {
	groups = make(map[int64][]int)
	for _, r := range rows {
		k := key(r)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	return keys, groups
}
