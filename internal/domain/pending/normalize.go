package pending

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"szafa/internal/core/apperror"
	"szafa/internal/core/types"
)

// DefaultProductName is used for staged products that arrive without a name.
const DefaultProductName = "Unnamed"

// Line is one normalized ingestion line.
type Line struct {
	Code              string
	Name              string
	UnitPrice         types.Money
	Size              string
	Description       string
	QuantityOrdered   int
	QuantityDelivered int

	// PriceInvalid is set when a price was present but unreadable and zero was used
	PriceInvalid bool
}

// Header is the normalized document metadata of a payload.
type Header struct {
	SellerName      string
	OrderDate       string
	DeliveryDate    string
	ReferenceNumber string
	DocumentNumber  string
}

// LineError reports the field that made an ingestion line unusable.
type LineError struct {
	Field  string
	Reason string
}

func (e *LineError) Error() string {
	return e.Field + ": " + e.Reason
}

// RejectedLine is a line left out of staging because one of its values was invalid.
type RejectedLine struct {
	Line   int    `json:"line"`
	Code   string `json:"code"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Payload is a decoded ingestion body.
type Payload struct {
	Header Header
	Lines  []Line
	// Skipped counts lines dropped for lacking a product code
	Skipped int
	// Rejected lists coded lines dropped for invalid values; the rest of the batch still stages
	Rejected []RejectedLine
}

// DecodePayload parses a loosely typed ingestion body. The body must be a JSON object whose
// optional "items" member is an array of objects; anything else is a shape error. Within
// that shape every field is tolerant: aliases are accepted, comma decimals parse, missing
// prices and quantities are zero, and lines without a code are skipped. A coded line with a
// negative or unreadable quantity, or a negative price, lands in Rejected.
func DecodePayload(raw []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return Payload{}, apperror.NewValidation("payload must be a JSON object").WithCause(err)
	}
	if body == nil {
		return Payload{}, apperror.NewValidation("payload must be a JSON object")
	}

	var p Payload
	seller, _ := body["seller"].(map[string]any)
	dates, _ := body["dates"].(map[string]any)
	p.Header = Header{
		SellerName:      textOf(seller["name"]),
		OrderDate:       textOf(dates["order_date"]),
		DeliveryDate:    textOf(dates["delivery_date"]),
		ReferenceNumber: textOf(body["reference_number"]),
		DocumentNumber:  textOf(body["document_number"]),
	}

	rawItems, present := body["items"]
	if !present || rawItems == nil {
		return p, nil
	}
	items, ok := rawItems.([]any)
	if !ok {
		return Payload{}, apperror.NewValidation("items must be an array").WithDetail("field", "items")
	}

	for i, rawItem := range items {
		fields, ok := rawItem.(map[string]any)
		if !ok {
			return Payload{}, apperror.NewValidation("every item must be an object").
				WithDetail("field", "items").
				WithDetail("line", i+1)
		}
		line, ok, err := NormalizeLine(fields)
		var lineErr *LineError
		if errors.As(err, &lineErr) {
			p.Rejected = append(p.Rejected, RejectedLine{
				Line:   i + 1,
				Code:   line.Code,
				Field:  lineErr.Field,
				Reason: lineErr.Reason,
			})
			continue
		}
		if !ok {
			p.Skipped++
			continue
		}
		p.Lines = append(p.Lines, line)
	}
	return p, nil
}

// NormalizeLine maps one raw line onto Line. ok is false when the line has no product code.
// A *LineError is returned, with Code still set on line, when a value is present but unusable.
func NormalizeLine(fields map[string]any) (line Line, ok bool, err error) {
	line.Code = textOf(pick(fields, "code", "sku"))
	if line.Code == "" {
		return Line{}, false, nil
	}
	rejected := Line{Code: line.Code}

	line.Name = textOf(pick(fields, "name", "product_name"))
	line.Size = textOf(fields["size"])
	line.Description = textOf(fields["description"])

	if rawPrice := textOf(pick(fields, "unit_price", "price")); rawPrice != "" {
		price, valid := types.ParseMoneyLoose(rawPrice)
		if valid && price.IsNegative() {
			return rejected, false, &LineError{Field: "unit_price", Reason: "must not be negative"}
		}
		line.UnitPrice = price
		line.PriceInvalid = !valid
	} else {
		line.UnitPrice = types.Zero()
	}

	quantities := []struct {
		field string
		raw   any
		dst   *int
	}{
		{"quantity_ordered", pick(fields, "quantity_ordered", "quantity"), &line.QuantityOrdered},
		{"quantity_delivered", pick(fields, "quantity_delivered"), &line.QuantityDelivered},
	}
	for _, q := range quantities {
		if q.raw == nil {
			continue
		}
		n, valid := intOf(q.raw)
		if !valid {
			return rejected, false, &LineError{Field: q.field, Reason: "must be a number"}
		}
		if n < 0 {
			return rejected, false, &LineError{Field: q.field, Reason: "must not be negative"}
		}
		*q.dst = n
	}
	return line, true, nil
}

// pick returns the first alias holding a non-empty value.
func pick(fields map[string]any, keys ...string) any {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func textOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// intOf reads a quantity; fractions are truncated. valid is false for unreadable values.
func intOf(v any) (n int, valid bool) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
		if f, err := val.Float64(); err == nil {
			return int(f), true
		}
	case string:
		s := strings.TrimSpace(val)
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
		if d, ok := types.ParseMoneyLoose(s); ok {
			return int(d.IntPart()), true
		}
	}
	return 0, false
}

// dateLayouts are the accepted ingestion date formats, tried in order.
var dateLayouts = []string{"02.01.2006", "2006-01-02", "02/01/2006"}

// ParseDate reads an ingestion date. ok is false when no layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
