package canon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		MobileLength: 10,
		MobilePrefix: "91",
		DateFormats:  testLayouts,
		Regions: map[string]Region{
			"north": RegionNorth, "n": RegionNorth,
			"south": RegionSouth, "s": RegionSouth,
			"east": RegionEast,
			"west": RegionWest,
		},
	}
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)
}

func newTestCanonicalizer() *Canonicalizer {
	return NewCanonicalizer(testConfig(), fixedNow)
}

func TestCanonicalize_SpecExample(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{{
			FieldCustomerID: "1",
			FieldName:       "Amit Sharma",
			FieldMobile:     "9876543210",
			FieldRegion:     "North",
		}},
		[]RawRecord{
			{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "2024-01-05", FieldAmount: "100"},
			{FieldOrderID: "11", FieldCustomerID: "1", FieldOrderDate: "2024-02-10", FieldAmount: "200"},
		},
	)

	require.Empty(t, res.Issues)
	require.Len(t, res.Customers, 1)
	require.Len(t, res.Orders, 2)

	cust := res.Customers[0]
	assert.Equal(t, int64(1), cust.ID)
	assert.Equal(t, "Amit Sharma", cust.Name)
	assert.Equal(t, "9876543210", cust.Mobile)
	assert.Equal(t, RegionNorth, cust.Region)

	assert.Equal(t, int64(10000), res.Orders[0].AmountMinor)
	assert.Equal(t, "2024-01-05", res.Orders[0].Date.String())
	assert.Equal(t, int64(20000), res.Orders[1].AmountMinor)
}

func TestCanonicalize_NameCleaning(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run([]RawRecord{{
		FieldCustomerID: "1",
		FieldName:       "  aMit    SHARMA ",
		FieldRegion:     "north",
	}}, nil)

	require.Len(t, res.Customers, 1)
	assert.Equal(t, "Amit Sharma", res.Customers[0].Name)
}

func TestNormalizeMobile(t *testing.T) {
	c := newTestCanonicalizer()

	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"plain", "9876543210", "9876543210", true},
		{"formatted", "(987) 654-3210", "9876543210", true},
		{"country_prefix", "+91 98765 43210", "9876543210", true},
		{"empty_is_null", "", "", true},
		{"blank_is_null", "   ", "", true},
		{"too_short", "98765", "", false},
		{"too_long", "98765432101", "", false},
		{"wrong_prefix", "929876543210", "", false},
		{"letters_only", "not-a-number", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.normalizeMobile(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_InvalidMobileIsNulledNotFatal(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run([]RawRecord{{
		FieldCustomerID: "7",
		FieldName:       "Chirag Patel",
		FieldMobile:     "12345",
		FieldRegion:     "east",
	}}, nil)

	require.Len(t, res.Customers, 1)
	assert.Equal(t, "", res.Customers[0].Mobile)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueInvalidMobileNumber, res.Issues[0].Kind)
	assert.Equal(t, "customer 7", res.Issues[0].RecordID)
	assert.Equal(t, "12345", res.Issues[0].RawValue)
}

func TestCanonicalize_RegionSynonymsAndUnknown(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run([]RawRecord{
		{FieldCustomerID: "1", FieldName: "A", FieldRegion: "NORTH"},
		{FieldCustomerID: "2", FieldName: "B", FieldRegion: " s "},
		{FieldCustomerID: "3", FieldName: "C", FieldRegion: "Midlands"},
		{FieldCustomerID: "4", FieldName: "D", FieldRegion: ""},
	}, nil)

	require.Len(t, res.Customers, 4)
	assert.Equal(t, RegionNorth, res.Customers[0].Region)
	assert.Equal(t, RegionSouth, res.Customers[1].Region)
	assert.Equal(t, RegionUnknown, res.Customers[2].Region)
	assert.Equal(t, RegionUnknown, res.Customers[3].Region)

	counts := CountByKind(res.Issues)
	assert.Equal(t, 2, counts[IssueUnrecognizedRegion])
}

func TestCanonicalize_RejectsNegativeAmount(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{{FieldCustomerID: "1", FieldName: "A", FieldRegion: "north"}},
		[]RawRecord{
			{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "2024-01-05", FieldAmount: "-5"},
			{FieldOrderID: "11", FieldCustomerID: "1", FieldOrderDate: "2024-01-06", FieldAmount: "ten"},
		},
	)

	assert.Empty(t, res.Orders)
	counts := CountByKind(res.Issues)
	assert.Equal(t, 2, counts[IssueInvalidAmount])
}

func TestCanonicalize_RejectsUnparseableDate(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{{FieldCustomerID: "1", FieldName: "A", FieldRegion: "north"}},
		[]RawRecord{{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "sometime", FieldAmount: "5"}},
	)

	assert.Empty(t, res.Orders)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueUnparseableDate, res.Issues[0].Kind)
	assert.Equal(t, "sometime", res.Issues[0].RawValue)
}

func TestCanonicalize_RejectsOrphanOrder(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{{FieldCustomerID: "1", FieldName: "A", FieldRegion: "north"}},
		[]RawRecord{
			{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "2024-01-05", FieldAmount: "5"},
			{FieldOrderID: "11", FieldCustomerID: "99", FieldOrderDate: "2024-01-05", FieldAmount: "5"},
			{FieldOrderID: "12", FieldCustomerID: "", FieldOrderDate: "2024-01-05", FieldAmount: "5"},
		},
	)

	require.Len(t, res.Orders, 1)
	assert.Equal(t, int64(10), res.Orders[0].ID)
	counts := CountByKind(res.Issues)
	assert.Equal(t, 2, counts[IssueOrphanOrder])
}

func TestCanonicalize_DuplicateIDsFirstWins(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{
			{FieldCustomerID: "1", FieldName: "First Entry", FieldRegion: "north"},
			{FieldCustomerID: "1", FieldName: "Second Entry", FieldRegion: "south"},
		},
		[]RawRecord{
			{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "2024-01-05", FieldAmount: "5"},
			{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "2024-01-06", FieldAmount: "9"},
		},
	)

	require.Len(t, res.Customers, 1)
	assert.Equal(t, "First Entry", res.Customers[0].Name)
	require.Len(t, res.Orders, 1)
	assert.Equal(t, "2024-01-05", res.Orders[0].Date.String())

	counts := CountByKind(res.Issues)
	assert.Equal(t, 2, counts[IssueDuplicateID])
}

func TestCanonicalize_DroppedDuplicateContributesOnlyDuplicateIssue(t *testing.T) {
	c := newTestCanonicalizer()

	// The later record has a bad mobile and an unmapped region; since the
	// record never enters the dataset, those must not inflate the counts.
	res := c.Run(
		[]RawRecord{
			{FieldCustomerID: "1", FieldName: "First Entry", FieldMobile: "9876543210", FieldRegion: "north"},
			{FieldCustomerID: "1", FieldName: "Second Entry", FieldMobile: "12345", FieldRegion: "atlantis"},
		},
		nil,
	)

	require.Len(t, res.Customers, 1)
	assert.Equal(t, "9876543210", res.Customers[0].Mobile)

	counts := CountByKind(res.Issues)
	assert.Equal(t, map[IssueKind]int{IssueDuplicateID: 1}, counts)
}

func TestCanonicalize_RejectsBadIdentifier(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run(
		[]RawRecord{{FieldCustomerID: "abc", FieldName: "A", FieldRegion: "north"}},
		[]RawRecord{{FieldOrderID: "", FieldCustomerID: "1", FieldOrderDate: "2024-01-05", FieldAmount: "5"}},
	)

	assert.Empty(t, res.Customers)
	assert.Empty(t, res.Orders)
	counts := CountByKind(res.Issues)
	assert.Equal(t, 2, counts[IssueInvalidID])
	assert.Equal(t, "order row 1", res.Issues[1].RecordID)
}

func TestCanonicalize_CreatedAtDefaultsToIngestionTime(t *testing.T) {
	c := newTestCanonicalizer()

	res := c.Run([]RawRecord{
		{FieldCustomerID: "1", FieldName: "A", FieldRegion: "north"},
		{FieldCustomerID: "2", FieldName: "B", FieldRegion: "north", FieldCreatedAt: "2023-12-01"},
		{FieldCustomerID: "3", FieldName: "C", FieldRegion: "north", FieldCreatedAt: "2023-12-01T08:30:00Z"},
	}, nil)

	require.Len(t, res.Customers, 3)
	assert.Equal(t, fixedNow(), res.Customers[0].CreatedAt)
	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), res.Customers[1].CreatedAt)
	assert.Equal(t, time.Date(2023, time.December, 1, 8, 30, 0, 0, time.UTC), res.Customers[2].CreatedAt)
}

func TestCanonicalize_Idempotent(t *testing.T) {
	rawCustomers := []RawRecord{
		{FieldCustomerID: "1", FieldName: " amit  sharma", FieldMobile: "+91 9876543210", FieldRegion: "NORTH"},
		{FieldCustomerID: "2", FieldName: "bhavna rao", FieldMobile: "bad", FieldRegion: "nowhere"},
	}
	rawOrders := []RawRecord{
		{FieldOrderID: "10", FieldCustomerID: "1", FieldOrderDate: "05/01/2024", FieldAmount: "100.50"},
		{FieldOrderID: "11", FieldCustomerID: "9", FieldOrderDate: "2024-01-05", FieldAmount: "1"},
	}

	first := NewCanonicalizer(testConfig(), fixedNow).Run(rawCustomers, rawOrders)
	second := NewCanonicalizer(testConfig(), fixedNow).Run(rawCustomers, rawOrders)
	assert.Equal(t, first, second)
}

func TestParseAmountMinor(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"100", 10000, false},
		{"100.5", 10050, false},
		{"100.50", 10050, false},
		{"0.1", 10, false},
		{"0", 0, false},
		{" 75.25 ", 7525, false},
		{"1.005", 100, false}, // half-even
		{"1.015", 102, false}, // half-even
		{"-5", 0, true},
		{"", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmountMinor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
