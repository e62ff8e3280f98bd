package ingest

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledgerline/orderpulse/internal/canon"
)

// rawOrder mirrors one <order> element. Every field is a raw string;
// typing happens in the Canonicalizer.
type rawOrder struct {
	ID         string `xml:"order_id"`
	CustomerID string `xml:"customer_id"`
	Date       string `xml:"order_date"`
	Amount     string `xml:"amount"`
	Status     string `xml:"status"`
}

// XMLResult holds the raw records read from one XML source.
type XMLResult struct {
	Records []canon.RawRecord
	Skipped int // elements that failed to decode
}

// ReadOrdersXML streams <order> elements from an <orders> document.
// Missing child elements simply leave the corresponding raw field empty;
// only elements the decoder cannot read at all are skipped and counted.
func ReadOrdersXML(r io.Reader) (XMLResult, error) {
	dec := xml.NewDecoder(r)

	var res XMLResult
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || !strings.EqualFold(start.Name.Local, "order") {
			continue
		}

		var o rawOrder
		if err := dec.DecodeElement(&o, &start); err != nil {
			res.Skipped++
			continue
		}
		res.Records = append(res.Records, canon.RawRecord{
			canon.FieldOrderID:    o.ID,
			canon.FieldCustomerID: o.CustomerID,
			canon.FieldOrderDate:  o.Date,
			canon.FieldAmount:     o.Amount,
			canon.FieldStatus:     o.Status,
		})
	}
	return res, nil
}
