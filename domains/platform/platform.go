package platform

import "context"

// IPlatformPoster publishes content to a social page.
type IPlatformPoster interface {
	// Publish returns the platform id of the created post.
	Publish(ctx context.Context, pageID, accessToken, content, imageURL string) (string, error)
	ValidatePageAccess(ctx context.Context, pageID, accessToken string) (bool, error)
}
