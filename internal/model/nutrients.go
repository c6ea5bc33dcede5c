package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Nutrients maps a nutrient name (calories, fatContent, ...) to its amount.
// Amounts are whatever the source dataset stored: numbers or strings such
// as "389 kcal".
type Nutrients map[string]any

var ErrNutrientsMissing = errors.New("nutrients column is null")

// DecodeNutrients parses the serialized nutrients document of a row. A JSON
// null decodes to an empty mapping; SQL NULL, malformed JSON and non-object
// documents are errors.
func DecodeNutrients(raw []byte) (Nutrients, error) {
	if raw == nil {
		return nil, ErrNutrientsMissing
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var n Nutrients
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decoding nutrients: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decoding nutrients: unexpected data after document")
	}
	if n == nil {
		n = Nutrients{}
	}
	return n, nil
}
