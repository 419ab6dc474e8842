package papertrade

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// DefaultPricesPath resolves a symbol as a top level key: {"AAPL": 150.0}.
const DefaultPricesPath = `$["%s"]`

// JSONPrices is a PriceOracle reading prices out of a JSON document.
//
// The price of a symbol is found by evaluating a JSONPath built from a
// template, e.g. `$.quotes["%s"].last`. The value can be a number or a
// numeric string.
type JSONPrices struct {
	doc      any
	path     string
	currency string
}

// NewJSONPrices decodes the JSON document in r.
func NewJSONPrices(r io.Reader, pathTemplate, currency string) (*JSONPrices, error) {
	if pathTemplate == "" {
		pathTemplate = DefaultPricesPath
	}
	if strings.Count(pathTemplate, "%s") != 1 {
		return nil, fmt.Errorf("%w: price path %q must contain exactly one %%s", ErrInvalidArgument, pathTemplate)
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(r)
	dec.UseNumber() // keep prices exact.
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode price document: %w", err)
	}
	return &JSONPrices{doc: doc, path: pathTemplate, currency: currency}, nil
}

// LoadJSONPrices reads the price document from a file.
func LoadJSONPrices(filename, pathTemplate, currency string) (*JSONPrices, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("cannot open price file %q: %w", filename, err)
	}
	defer f.Close()
	p, err := NewJSONPrices(f, pathTemplate, currency)
	if err != nil {
		return nil, fmt.Errorf("in price file %q: %w", filename, err)
	}
	return p, nil
}

// Price implements PriceOracle.
func (p *JSONPrices) Price(symbol string) (Money, bool) {
	// the symbol is spliced into the path, only accept well formed ones.
	if !symbolPattern.MatchString(symbol) {
		return Money{}, false
	}
	jval, err := jsonpath.Get(fmt.Sprintf(p.path, symbol), p.doc)
	if err != nil {
		return Money{}, false
	}
	// jsonpath may return a list of one answer or the answer itself:
	// keep the first one if any.
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return Money{}, false
		}
		jval = jlist[0]
	}

	var d decimal.Decimal
	switch v := jval.(type) {
	case json.Number:
		d, err = decimal.NewFromString(v.String())
	case string:
		d, err = decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(v), ",", ""))
	default:
		return Money{}, false
	}
	if err != nil {
		return Money{}, false
	}
	return Money{value: d, cur: p.currency}, true
}
