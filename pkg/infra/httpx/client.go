package httpx

import "net/http"

// Client abstracts the HTTP transport so callers can swap in test doubles.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}
