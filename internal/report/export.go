package report

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/newthinker/bondcalc/internal/amortization"
	"github.com/newthinker/bondcalc/internal/storage/archive"
)

// Prefix is where exported reports live in the archive.
const Prefix = "reports"

// Export writes samples as CSV to reports/<position>/<uuid>.csv and returns
// the path.
func Export(ctx context.Context, store archive.Storage, positionID string, samples []amortization.Sample) (string, error) {
	name := path.Join(Prefix, positionID, uuid.NewString()+".csv")
	if err := store.Write(ctx, name, []byte(RenderProfileCSV(samples))); err != nil {
		return "", fmt.Errorf("export profile of %s: %w", positionID, err)
	}
	return name, nil
}

// List returns the exported reports of a position.
func List(ctx context.Context, store archive.Storage, positionID string) ([]string, error) {
	return store.List(ctx, path.Join(Prefix, positionID))
}
