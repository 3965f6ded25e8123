package report

import (
	"encoding/json"
	"fmt"

	"github.com/newthinker/bondcalc/internal/valuation"
)

// RenderValuationsJSON renders valuations as an indented JSON array.
func RenderValuationsJSON(valuations []valuation.Valuation) ([]byte, error) {
	rows := make([]ValuationRow, len(valuations))
	for i, v := range valuations {
		rows[i] = NewValuationRow(v)
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal valuations: %w", err)
	}
	return data, nil
}

// RenderProfileJSON renders a profile as indented JSON.
func RenderProfileJSON(p Profile) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}
