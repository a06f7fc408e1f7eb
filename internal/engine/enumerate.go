package engine

import (
	"context"
	"fmt"

	"github.com/shearops/shear/internal/store"
)

// enumerate collects the run's work list: every file item in every
// target library, in target order, paging through the store's listing.
// A failed page fetch is fatal for the run; a partially enumerated
// work list would silently break batch coverage.
func (e *Engine) enumerate(ctx context.Context, targets []store.Library) ([]store.Item, error) {
	var items []store.Item
	for _, lib := range targets {
		token := ""
		for {
			page, err := e.Store.Items(ctx, lib, token)
			if err != nil {
				return nil, fmt.Errorf("enumerating %q: %w", lib.Title, err)
			}
			items = append(items, page.Items...)
			if page.NextToken == "" {
				break
			}
			token = page.NextToken
		}
	}
	return items, nil
}
