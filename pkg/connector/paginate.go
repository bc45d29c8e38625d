package connector

import "context"

type page[T any] struct {
	results []T
	hasMore bool
	cursor  string
}

// paginate calls fetch with the cursor returned by the previous call until
// there are no more results.
func paginate[T any](ctx context.Context, fetch func(ctx context.Context, cursor string) (page[T], error)) ([]T, error) {
	var (
		all    []T
		cursor string
	)
	for {
		p, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, p.results...)

		if !p.hasMore || p.cursor == "" {
			return all, nil
		}
		cursor = p.cursor
	}
}

func derefCursor(c *string) string {
	if c == nil {
		return ""
	}
	return *c
}
