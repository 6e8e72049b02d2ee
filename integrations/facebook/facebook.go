package facebook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imbizlab/groomflo-app/domains/platform"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const DefaultGraphURL = "https://graph.facebook.com/v18.0"

// GraphError is the error envelope returned by the Graph API.
type GraphError struct {
	HTTPStatus   int    `json:"-"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("facebook api error (http %d, code %d, %s): %s", e.HTTPStatus, e.Code, e.Type, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ platform.IPlatformPoster = (*Client)(nil)

// NewClient returns a Graph API poster. httpClient is the base transport the
// per-page oauth2 client wraps; nil uses a client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type photoResponse struct {
	ID     string `json:"id"`
	PostID string `json:"post_id"`
}

// ErrMissingPostID is returned when Graph accepts a post without returning its id.
var ErrMissingPostID = errors.New("facebook response did not include a post id")

type feedResponse struct {
	ID string `json:"id"`
}

// Publish posts a photo with caption when imageURL is set, a text post otherwise.
func (c *Client) Publish(ctx context.Context, pageID, accessToken, content, imageURL string) (string, error) {
	if pageID == "" {
		return "", errors.New("facebook page id not configured")
	}
	if accessToken == "" {
		return "", errors.New("facebook access token not configured")
	}

	if imageURL != "" {
		var res photoResponse
		form := url.Values{"url": {imageURL}, "caption": {content}}
		if err := c.do(ctx, accessToken, http.MethodPost, "/"+url.PathEscape(pageID)+"/photos", form, &res); err != nil {
			return "", err
		}
		if res.PostID != "" {
			return res.PostID, nil
		}
		if res.ID == "" {
			return "", ErrMissingPostID
		}
		return res.ID, nil
	}

	var res feedResponse
	form := url.Values{"message": {content}}
	if err := c.do(ctx, accessToken, http.MethodPost, "/"+url.PathEscape(pageID)+"/feed", form, &res); err != nil {
		return "", err
	}
	if res.ID == "" {
		return "", ErrMissingPostID
	}
	return res.ID, nil
}

// ValidatePageAccess reports whether the token can read the page. A Graph
// error means no access; transport failures are returned as errors.
func (c *Client) ValidatePageAccess(ctx context.Context, pageID, accessToken string) (bool, error) {
	if pageID == "" || accessToken == "" {
		return false, nil
	}
	var res struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	err := c.do(ctx, accessToken, http.MethodGet, "/"+url.PathEscape(pageID)+"?fields=id,name", nil, &res)
	if err != nil {
		var gErr *GraphError
		if errors.As(err, &gErr) {
			logrus.WithError(err).Debugf("[FACEBOOK] page %s is not accessible", pageID)
			return false, nil
		}
		return false, err
	}
	return res.ID != "", nil
}

func (c *Client) do(ctx context.Context, accessToken, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.tokenClient(ctx, accessToken).Do(req)
	if err != nil {
		return fmt.Errorf("facebook request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read facebook response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope struct {
			Error *GraphError `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != nil {
			envelope.Error.HTTPStatus = resp.StatusCode
			return envelope.Error
		}
		return &GraphError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode facebook response: %w", err)
	}
	return nil
}

// tokenClient wraps the base client with a bearer token transport for one page token.
func (c *Client) tokenClient(ctx context.Context, accessToken string) *http.Client {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.httpClient.Timeout
	return client
}
