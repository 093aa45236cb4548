// internal/apiclient/client.go
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/unclebandit/attestation-tracker/internal/errors"
	"github.com/unclebandit/attestation-tracker/internal/model"
)

// Client talks to the attestation API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// BulkRemindResult is the aggregate reported by the bulk remind endpoint.
type BulkRemindResult struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ResendInvitesResult is the aggregate reported by the bulk invite resend endpoint.
type ResendInvitesResult struct {
	EmailsSent int `json:"emailsSent"`
}

// New creates a client with a transport tuned for service-to-service calls.
func New(baseURL, token string, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Dashboard(ctx context.Context, campaignID int64) (*model.Dashboard, error) {
	var out model.Dashboard
	path := "/api/attestation/campaigns/" + itoa(campaignID) + "/dashboard"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		var apiErr *appErrors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, appErrors.NewCampaignNotFound(campaignID)
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemindRecord(ctx context.Context, recordID int64) error {
	return c.do(ctx, http.MethodPost, "/api/attestation/records/"+itoa(recordID)+"/remind", nil, nil)
}

func (c *Client) BulkRemind(ctx context.Context, campaignID int64, recordIDs []int64) (BulkRemindResult, error) {
	var out BulkRemindResult
	body := map[string]interface{}{"record_ids": recordIDs}
	err := c.do(ctx, http.MethodPost, "/api/attestation/campaigns/"+itoa(campaignID)+"/bulk-remind", body, &out)
	return out, batchErr(campaignID, err)
}

func (c *Client) ResendInvite(ctx context.Context, inviteID int64) error {
	return c.do(ctx, http.MethodPost, "/api/attestation/pending-invites/"+itoa(inviteID)+"/resend", nil, nil)
}

func (c *Client) BulkResendInvites(ctx context.Context, campaignID int64, inviteIDs []int64) (ResendInvitesResult, error) {
	var out ResendInvitesResult
	body := map[string]interface{}{"invite_ids": inviteIDs}
	err := c.do(ctx, http.MethodPost, "/api/attestation/campaigns/"+itoa(campaignID)+"/resend-invites", body, &out)
	return out, batchErr(campaignID, err)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return appErrors.NewAPIError(resp.StatusCode, readMessage(resp.Body))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// readMessage pulls the error text out of a failed response. The API
// answers with {"error": "..."} but plain text bodies are accepted too.
func readMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// batchErr marks a missing batch route so callers can fall back to per-item
// calls. A 404 names an unknown campaign, not a missing route.
func batchErr(campaignID int64, err error) error {
	var apiErr *appErrors.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %v", appErrors.NewCampaignNotFound(campaignID), err)
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		return fmt.Errorf("%w: %v", appErrors.ErrBatchUnsupported, err)
	}
	return err
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
