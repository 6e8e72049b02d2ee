package content

import (
	"context"
	"fmt"

	domainPost "github.com/imbizlab/groomflo-app/domains/post"
	"golang.org/x/sync/errgroup"
)

// GenerateFunc produces the content of a single post.
type GenerateFunc func(ctx context.Context, postType domainPost.Type) (GeneratedPost, error)

// Fill runs gen once per entry of WeeklyOrder with at most limit calls in
// flight. Results keep WeeklyOrder; the first error cancels the rest.
func Fill(ctx context.Context, limit int, gen GenerateFunc) ([]GeneratedPost, error) {
	order := WeeklyOrder()
	out := make([]GeneratedPost, len(order))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, t := range order {
		g.Go(func() error {
			item, err := gen(gctx, t)
			if err != nil {
				return fmt.Errorf("%s post %d: %w", t, i+1, err)
			}
			item.PostType = t
			out[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
