package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/streamsentry/streamsentry/pkg/domain/violation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeViolationRepo struct {
	byStream map[uuid.UUID][]*violation.Violation
}

func (f *fakeViolationRepo) Create(ctx context.Context, v *violation.Violation) error { return nil }

func (f *fakeViolationRepo) CountByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeViolationRepo) ListByStream(ctx context.Context, streamID uuid.UUID) ([]*violation.Violation, error) {
	return f.byStream[streamID], nil
}

func (f *fakeViolationRepo) ListByUserAndStream(ctx context.Context, userID, streamID uuid.UUID) ([]*violation.Violation, error) {
	var out []*violation.Violation
	for _, v := range f.byStream[streamID] {
		if v.UserID == userID {
			out = append(out, v)
		}
	}
	return out, nil
}

type violationListResponse struct {
	Count      int                    `json:"count"`
	Violations []*violation.Violation `json:"violations"`
}

func TestListViolationsHandlers(t *testing.T) {
	streamID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	repo := &fakeViolationRepo{byStream: map[uuid.UUID][]*violation.Violation{
		streamID: {
			{ID: uuid.New(), UserID: userA, StreamID: streamID, Kind: violation.KindWarning},
			{ID: uuid.New(), UserID: userA, StreamID: streamID, Kind: violation.KindWarning},
			{ID: uuid.New(), UserID: userB, StreamID: streamID, Kind: violation.KindWarning},
		},
	}}

	app := fiber.New()
	app.Get("/api/v1/streams/:stream_id/violations", NewListStreamViolationsHandler(testLogger(), repo).Handle)
	app.Get("/api/v1/streams/:stream_id/users/:user_id/violations", NewListUserViolationsHandler(testLogger(), repo).Handle)

	t.Run("Lists all violations for a stream", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/streams/"+streamID.String()+"/violations", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var parsed violationListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.Equal(t, 3, parsed.Count)
	})

	t.Run("Filters by user", func(t *testing.T) {
		url := "/api/v1/streams/" + streamID.String() + "/users/" + userA.String() + "/violations"
		req := httptest.NewRequest(fiber.MethodGet, url, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var parsed violationListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
		assert.Equal(t, 2, parsed.Count)
		for _, v := range parsed.Violations {
			assert.Equal(t, userA, v.UserID)
		}
	})

	t.Run("Rejects malformed stream id", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/streams/not-a-uuid/violations", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
