package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hotel-portfolio-api/internal/model"
	"hotel-portfolio-api/internal/repository"
	"hotel-portfolio-api/internal/service"
	"hotel-portfolio-api/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActions struct {
	service.PendingActionService
	filter repository.PendingActionFilter
	reason string
	err    error
}

func (s *stubActions) FindAll(ctx context.Context, viewer *model.User, filter repository.PendingActionFilter) (*service.PendingActionPage, error) {
	s.filter = filter
	return &service.PendingActionPage{Data: []service.PendingActionResponse{}, Page: 1, Limit: 20}, s.err
}

func (s *stubActions) Reject(ctx context.Context, id uuid.UUID, approver *model.User, reason string) (*service.PendingActionResponse, error) {
	s.reason = reason
	if s.err != nil {
		return nil, s.err
	}
	return &service.PendingActionResponse{PendingAction: model.PendingAction{ID: id, Status: model.PendingActionStatusRejected}}, nil
}

func newTestApp(actions service.PendingActionService) *fiber.App {
	log := logrus.New()
	log.SetOutput(io.Discard)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Use(func(c *fiber.Ctx) error {
		user := &model.User{FullName: "Admin"}
		user.ID = uuid.New()
		c.Locals("user", user)
		return c.Next()
	})
	h := NewPendingActionHandler(actions)
	app.Get("/pending-actions", h.FindAll)
	app.Post("/pending-actions/:id/reject", h.Reject)
	return app
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestFindAllParsesFilter(t *testing.T) {
	actions := &stubActions{}
	app := newTestApp(actions)
	propertyID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/pending-actions?status=PENDING&action_type=PROPERTY_TRANSFER&page=2&limit=5&sort_order=asc&property_id="+propertyID.String(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, model.PendingActionStatusPending, actions.filter.Status)
	assert.Equal(t, model.ActionTypePropertyTransfer, actions.filter.ActionType)
	assert.Equal(t, 2, actions.filter.Page)
	assert.Equal(t, 5, actions.filter.Limit)
	require.NotNil(t, actions.filter.PropertyID)
	assert.Equal(t, propertyID, *actions.filter.PropertyID)
	assert.Nil(t, actions.filter.RequestedUserID)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/pending-actions?property_id=nope", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRejectMapsErrors(t *testing.T) {
	actions := &stubActions{}
	app := newTestApp(actions)
	id := uuid.New()

	post := func(path, body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	resp := post("/pending-actions/"+id.String()+"/reject", `{"rejection_reason":"duplicate"}`)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "duplicate", actions.reason)

	resp = post("/pending-actions/not-a-uuid/reject", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	actions.err = apperror.Wrap(apperror.KindBadRequest, service.ErrInvalidTransition, "cannot reject action with status: APPROVED")
	resp = post("/pending-actions/"+id.String()+"/reject", `{"rejection_reason":"late"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cannot reject action with status: APPROVED", decodeError(t, resp))

	actions.err = apperror.Wrap(apperror.KindUnrecoverable, service.ErrActionNotImplemented, "Portfolio deactivation is not implemented yet")
	resp = post("/pending-actions/"+id.String()+"/reject", `{"rejection_reason":"x"}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	actions.err = errors.New("connection reset")
	resp = post("/pending-actions/"+id.String()+"/reject", `{"rejection_reason":"x"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodeError(t, resp))
}
