package closeio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/imbizlab/groomflo-app/domains/notification"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://api.close.com/api/v1"

// Client sends emails as Close.com email activities on a lead found (or
// created) by recipient address.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ notification.INotifier = (*Client)(nil)

func NewClient(apiKey, baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type lead struct {
	ID string `json:"id"`
}

type emailAddress struct {
	Email string `json:"email"`
	Type  string `json:"type"`
}

type contact struct {
	Name   string         `json:"name"`
	Emails []emailAddress `json:"emails"`
}

type createLeadRequest struct {
	Name     string    `json:"name"`
	Contacts []contact `json:"contacts"`
}

type emailActivityRequest struct {
	LeadID   string   `json:"lead_id"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	BodyHTML string   `json:"body_html"`
	Status   string   `json:"status"`
}

func (c *Client) Send(ctx context.Context, email notification.Email) error {
	if !c.Enabled() {
		return notification.ErrNotifierDisabled
	}

	leadID, err := c.getOrCreateLead(ctx, email.To, email.Name)
	if err != nil {
		return err
	}

	var res struct {
		ID string `json:"id"`
	}
	err = c.do(ctx, http.MethodPost, "/activity/email/", emailActivityRequest{
		LeadID:   leadID,
		To:       []string{email.To},
		Subject:  email.Subject,
		BodyHTML: email.HTML,
		Status:   "outbox",
	}, &res)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"to":          email.To,
		"lead_id":     leadID,
		"activity_id": res.ID,
	}).Info("[CLOSEIO] Email queued")
	return nil
}

func (c *Client) getOrCreateLead(ctx context.Context, email, name string) (string, error) {
	var found struct {
		Data []lead `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, "/lead/?query="+url.QueryEscape("email:"+email), nil, &found)
	if err == nil && len(found.Data) > 0 && found.Data[0].ID != "" {
		return found.Data[0].ID, nil
	}
	if err != nil {
		logrus.WithError(err).Debugf("[CLOSEIO] Lead lookup for %s failed, creating one", email)
	}

	if name == "" {
		name = email
	}
	var created lead
	err = c.do(ctx, http.MethodPost, "/lead/", createLeadRequest{
		Name: name,
		Contacts: []contact{{
			Name:   name,
			Emails: []emailAddress{{Email: email, Type: "office"}},
		}},
	}, &created)
	if err != nil {
		return "", fmt.Errorf("failed to create lead: %w", err)
	}
	logrus.Infof("[CLOSEIO] Created lead %s for %s", created.ID, email)
	return created.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("close api returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode close api response: %w", err)
		}
	}
	return nil
}
