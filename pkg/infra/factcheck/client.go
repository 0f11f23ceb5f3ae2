package factcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/infra/httpx"
)

const defaultEndpoint = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// falsityIndicators is the denylist of textual ratings that mark a claim as
// debunked. Matching is substring based and case insensitive.
var falsityIndicators = []string{
	"false", "incorrect", "misleading", "fake", "rumor", "untrue", "error", "debunked",
}

type searchResponse struct {
	Claims []claim `json:"claims"`
}

type claim struct {
	Text        string        `json:"text"`
	ClaimReview []claimReview `json:"claimReview"`
}

type claimReview struct {
	Publisher     publisher `json:"publisher"`
	TextualRating string    `json:"textualRating"`
}

type publisher struct {
	Name string `json:"name"`
}

// Client queries an external claim-verification service. It fails open: a
// missing credential, a transport error, or an empty claim set all yield a
// verified result, since wrongly branding speech as a rumor is worse than
// missing one.
type Client struct {
	apiKey    string
	endpoint  string
	client    httpx.Client
	logger    *logrus.Logger
	warnNoKey sync.Once
}

func NewClient(apiKey string, timeout time.Duration, client httpx.Client, logger *logrus.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:   apiKey,
		endpoint: defaultEndpoint,
		client:   client,
		logger:   logger,
	}
}

// SetEndpoint overrides the claim-search endpoint. Used by tests.
func (c *Client) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

func (c *Client) Check(ctx context.Context, text string) moderation.FactCheckResult {
	verified := moderation.FactCheckResult{Verified: true}

	if c.apiKey == "" {
		c.warnNoKey.Do(func() {
			c.logger.Warn("No fact check API key configured, treating claims as correct")
		})
		return verified
	}

	claims, err := c.search(ctx, text)
	if err != nil {
		c.logger.WithError(err).Warn("Fact check lookup failed, treating claim as correct")
		return verified
	}

	for _, cl := range claims {
		for _, review := range cl.ClaimReview {
			if ratingIndicatesFalsity(review.TextualRating) {
				return moderation.FactCheckResult{
					Verified: false,
					Reason: fmt.Sprintf("Fact Check: This claim was rated '%s' by %s.",
						review.TextualRating, review.Publisher.Name),
				}
			}
		}
	}

	return verified
}

func (c *Client) search(ctx context.Context, text string) ([]claim, error) {
	query := url.Values{}
	query.Set("query", text)
	query.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fact check request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fact check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check service returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode fact check response: %w", err)
	}
	return parsed.Claims, nil
}

func ratingIndicatesFalsity(rating string) bool {
	lower := strings.ToLower(rating)
	for _, indicator := range falsityIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
