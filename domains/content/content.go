package content

import (
	"context"
	"fmt"

	domainBusiness "github.com/imbizlab/groomflo-app/domains/business"
	domainPost "github.com/imbizlab/groomflo-app/domains/post"
)

// GeneratedPost is one piece of generated content.
type GeneratedPost struct {
	PostType domainPost.Type `json:"post_type"`
	Content  string          `json:"content"`
	ImageURL string          `json:"image_url,omitempty"`
}

// IContentGenerator produces a week of content for a business.
// Items come back ordered informative x3, fun_fact x2, promotional x2.
type IContentGenerator interface {
	GenerateWeeklyContent(ctx context.Context, business domainBusiness.Business) ([]GeneratedPost, error)
}

// WeeklyOrder is the order in which generators return items.
func WeeklyOrder() []domainPost.Type {
	order := make([]domainPost.Type, 0, domainPost.PostsPerWeek)
	for _, t := range []domainPost.Type{domainPost.TypeInformative, domainPost.TypeFunFact, domainPost.TypePromotional} {
		for i := 0; i < domainPost.WeeklyMix[t]; i++ {
			order = append(order, t)
		}
	}
	return order
}

// ValidateMix checks that items match the weekly type multiset.
func ValidateMix(items []GeneratedPost) error {
	if len(items) != domainPost.PostsPerWeek {
		return fmt.Errorf("expected %d generated posts, got %d", domainPost.PostsPerWeek, len(items))
	}
	counts := make(map[domainPost.Type]int)
	for _, it := range items {
		counts[it.PostType]++
	}
	for t, want := range domainPost.WeeklyMix {
		if counts[t] != want {
			return fmt.Errorf("expected %d %s posts, got %d", want, t, counts[t])
		}
	}
	return nil
}
