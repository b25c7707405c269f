package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CaseStore is the surface the orchestrator needs from the CRM.
type CaseStore interface {
	// FetchCases returns the account's support cases created since the
	// given time, newest first, up to limit rows.
	FetchCases(ctx context.Context, accountExternalID string, since time.Time, limit int) ([]CaseRecord, error)
}

// Client queries a Salesforce-style REST API for case records.
type Client struct {
	tokens     TokenProvider
	apiVersion string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ CaseStore = (*Client)(nil)

// NewClient creates a new case store client.
func NewClient(tokens TokenProvider, apiVersion string, logger *zap.Logger) *Client {
	return &Client{
		tokens:     tokens,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger.Named("crm"),
	}
}

// queryResponse is the wire shape of a SOQL query result page.
type queryResponse struct {
	TotalSize int             `json:"totalSize"`
	Done      bool            `json:"done"`
	Records   []rawCaseRecord `json:"records"`
}

// FetchCases implements CaseStore. The limit makes the fetch (and thus the
// scoring denominator) an approximation for very high-volume accounts,
// which is accepted: the window is re-fetched every run.
func (c *Client) FetchCases(ctx context.Context, accountExternalID string, since time.Time, limit int) ([]CaseRecord, error) {
	token, instanceURL, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire access token: %w", err)
	}

	soql := fmt.Sprintf(
		"SELECT Id, CaseNumber, Subject, Description, Status, Priority, Origin, CreatedDate "+
			"FROM Case WHERE AccountId = '%s' AND CreatedDate >= %s "+
			"ORDER BY CreatedDate DESC LIMIT %d",
		sanitizeSOQLString(accountExternalID),
		since.UTC().Format("2006-01-02T15:04:05Z"),
		limit,
	)

	endpoint := fmt.Sprintf("%s/services/data/%s/query?q=%s",
		strings.TrimSuffix(instanceURL, "/"), c.apiVersion, url.QueryEscape(soql))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("case query request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("case query failed with status %d", resp.StatusCode)
	}

	var page queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode case query response: %w", err)
	}

	records := make([]CaseRecord, 0, len(page.Records))
	for _, raw := range page.Records {
		if rec, ok := raw.toCaseRecord(); ok {
			records = append(records, rec)
		}
	}

	c.logger.Debug("fetched case records",
		zap.String("account_external_id", accountExternalID),
		zap.Int("count", len(records)),
		zap.Duration("elapsed", time.Since(start)))

	return records, nil
}

// sanitizeSOQLString escapes quotes and strips backslashes from a value
// interpolated into a SOQL string literal.
func sanitizeSOQLString(s string) string {
	s = strings.ReplaceAll(s, `\`, "")
	return strings.ReplaceAll(s, `'`, `\'`)
}
