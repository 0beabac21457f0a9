package builder

import (
	"context"
)

// FindByID loads the row of src with the given primary key. Sessions with an
// identity map answer from it without a query when the row is already managed.
func FindByID[T any](ctx context.Context, s Session, src EntitySource[T], id int64) (T, error) {
	root := src.Root()
	if im, ok := s.(IdentityMap); ok {
		if existing, found := im.Lookup(root.TableName(), id); found {
			if e, ok := existing.(T); ok {
				return e, nil
			}
		}
	}
	return SelectFrom[T](s, root).Where(root.IDPath().Eq(id)).FetchOne(ctx)
}
