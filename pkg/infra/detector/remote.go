package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streamsentry/streamsentry/pkg/domain/moderation"
	"github.com/streamsentry/streamsentry/pkg/infra/httpx"
	"github.com/valyala/fastjson"
)

const (
	defaultModerationEndpoint = "https://api.openai.com/v1/moderations"

	maxAttempts = 3

	// flaggedTermThreshold selects evidence categories when the provider
	// itself flagged the text; highConfidenceThreshold is the secondary
	// verdict independent of the provider's flagged bit.
	flaggedTermThreshold    = 0.5
	highConfidenceThreshold = 0.7

	breakerTimeout     = 30 * time.Second
	breakerMaxFailures = 5
)

// apiError carries the remote status so the retry loop can tell rate limits
// apart from terminal failures.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("moderation api returned status %d: %s", e.StatusCode, e.Message)
}

func (e *apiError) rateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		strings.Contains(strings.ToLower(e.Message), "too many requests")
}

// RemoteClassifier calls an external moderation endpoint. Every failure path
// degrades to the keyword classifier; callers never observe an error.
type RemoteClassifier struct {
	apiKey      string
	endpoint    string
	client      httpx.Client
	breaker     httpx.CircuitBreaker
	fallback    moderation.Classifier
	logger      *logrus.Logger
	timeout     time.Duration
	backoffUnit time.Duration

	parserPool fastjson.ParserPool
	warnNoKey  sync.Once
}

func NewRemoteClassifier(apiKey string, timeout time.Duration, fallback moderation.Classifier, client httpx.Client, logger *logrus.Logger) *RemoteClassifier {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteClassifier{
		apiKey:      apiKey,
		endpoint:    defaultModerationEndpoint,
		client:      client,
		breaker:     httpx.NewCircuitBreaker("moderation-api", breakerTimeout, breakerMaxFailures),
		fallback:    fallback,
		logger:      logger,
		timeout:     timeout,
		backoffUnit: time.Second,
	}
}

// SetEndpoint overrides the moderation endpoint. Used by tests.
func (c *RemoteClassifier) SetEndpoint(endpoint string) {
	c.endpoint = endpoint
}

// SetBackoffUnit overrides the base retry delay. Used by tests.
func (c *RemoteClassifier) SetBackoffUnit(unit time.Duration) {
	c.backoffUnit = unit
}

func (c *RemoteClassifier) Detect(ctx context.Context, text string) moderation.Result {
	if c.apiKey == "" {
		c.warnNoKey.Do(func() {
			c.logger.Warn("No moderation API key configured, using keyword classifier")
		})
		return c.fallback.Detect(ctx, text)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	delay := c.backoffUnit
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := c.callOnce(ctx, text)
		if err == nil {
			return result
		}

		var apiErr *apiError
		if !errors.As(err, &apiErr) || !apiErr.rateLimited() {
			c.logger.WithError(err).Warn("Moderation API call failed, using keyword classifier")
			return c.fallback.Detect(ctx, text)
		}

		c.logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("Moderation API rate limited")

		if attempt == maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
			delay *= 2
		case <-ctx.Done():
			c.logger.WithError(ctx.Err()).Warn("Moderation deadline reached, using keyword classifier")
			return c.fallback.Detect(ctx, text)
		}
	}

	c.logger.Warn("Moderation API retries exhausted, using keyword classifier")
	return c.fallback.Detect(ctx, text)
}

// DetectAsync runs Detect on its own goroutine so the caller is never blocked
// on the network round trip. The channel is buffered and closed after the
// single result.
func (c *RemoteClassifier) DetectAsync(ctx context.Context, text string) <-chan moderation.Result {
	ch := make(chan moderation.Result, 1)
	go func() {
		defer close(ch)
		ch <- c.Detect(ctx, text)
	}()
	return ch
}

func (c *RemoteClassifier) callOnce(ctx context.Context, text string) (moderation.Result, error) {
	var result moderation.Result
	err := c.breaker.Execute(func() error {
		res, err := c.post(ctx, text)
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return moderation.Result{}, err
	}
	return result, nil
}

func (c *RemoteClassifier) post(ctx context.Context, text string) (moderation.Result, error) {
	payload, err := json.Marshal(map[string]string{"input": text})
	if err != nil {
		return moderation.Result{}, fmt.Errorf("failed to marshal moderation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return moderation.Result{}, fmt.Errorf("failed to create moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("moderation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("failed to read moderation response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return moderation.Result{}, &apiError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return c.normalize(body)
}

// normalize extracts the flagged bit and a category score mapping from the
// provider response. Providers disagree on shape, so three are tolerated:
// a category_scores object of numbers, parallel categories/scores arrays,
// and an array of {category, score} objects.
func (c *RemoteClassifier) normalize(body []byte) (moderation.Result, error) {
	parser := c.parserPool.Get()
	defer c.parserPool.Put(parser)

	root, err := parser.ParseBytes(body)
	if err != nil {
		return moderation.Result{}, fmt.Errorf("failed to parse moderation response: %w", err)
	}

	entry := root
	if results := root.GetArray("results"); len(results) > 0 {
		entry = results[0]
	}

	flagged := entry.GetBool("flagged")
	scores := categoryScores(entry)

	maxScore := 0.0
	for _, score := range scores {
		if score > maxScore {
			maxScore = score
		}
	}

	isToxic := flagged || maxScore > highConfidenceThreshold
	termThreshold := flaggedTermThreshold
	if !flagged {
		termThreshold = highConfidenceThreshold
	}

	var detected []string
	if isToxic {
		for category, score := range scores {
			if score > termThreshold {
				detected = append(detected, category)
			}
		}
	}

	return moderation.Result{
		IsToxic:       isToxic,
		Score:         moderation.Clamp(maxScore),
		Categories:    scores,
		DetectedTerms: detected,
		Method:        moderation.MethodRemote,
	}, nil
}

func categoryScores(entry *fastjson.Value) map[string]float64 {
	scores := make(map[string]float64)

	if obj := entry.GetObject("category_scores"); obj != nil {
		obj.Visit(func(key []byte, v *fastjson.Value) {
			scores[string(key)] = v.GetFloat64()
		})
		return scores
	}

	categories := entry.GetArray("categories")
	values := entry.GetArray("scores")
	if len(categories) > 0 && len(categories) == len(values) {
		for i, category := range categories {
			scores[string(category.GetStringBytes())] = values[i].GetFloat64()
		}
		return scores
	}

	for _, item := range entry.GetArray("category_results") {
		name := string(item.GetStringBytes("category"))
		if name != "" {
			scores[name] = item.GetFloat64("score")
		}
	}
	return scores
}
