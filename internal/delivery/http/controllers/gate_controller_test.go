package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaterepo/internal/delivery/http/helpers"
	"gaterepo/internal/delivery/http/middleware"
	"gaterepo/internal/domain"
)

// fakeGateService implements domain.GateService for handler tests.
type fakeGateService struct {
	createErr   error
	createdGate *domain.Gate
	lastParams  domain.CreateGateParams
	listResult  []*domain.Gate
	listErr     error
	deleteErr   error
	lastDelete  string
}

func (f *fakeGateService) Create(ctx context.Context, creatorID string, params domain.CreateGateParams) (*domain.Gate, error) {
	f.lastParams = params
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createdGate != nil {
		return f.createdGate, nil
	}
	return &domain.Gate{ID: "gate-new"}, nil
}

func (f *fakeGateService) ListByCreator(ctx context.Context, userID string) ([]*domain.Gate, error) {
	return f.listResult, f.listErr
}

func (f *fakeGateService) Delete(ctx context.Context, userID, gateID string) error {
	f.lastDelete = gateID
	return f.deleteErr
}

func validCreateBody() CreateGateRequest {
	return CreateGateRequest{
		Owner:    "octocat",
		Repo:     "secret",
		Contract: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Tokens:   100,
		Invites:  5,
		ReadOnly: true,
	}
}

func postGateRequest(t *testing.T, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/gates", bytes.NewReader(raw))
	return req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
}

func TestGateController_CreateGate(t *testing.T) {
	svc := &fakeGateService{}
	controller := NewGateController(testLogger, svc)

	rec := httptest.NewRecorder()
	controller.CreateGate(rec, postGateRequest(t, validCreateBody()))

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.Nil(t, resp.Error)
	assert.Equal(t, "octocat", svc.lastParams.RepoOwner)
	assert.Equal(t, float64(100), svc.lastParams.NumTokens)
	assert.True(t, svc.lastParams.ReadOnly)
}

func TestGateController_CreateGate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateGateRequest)
	}{
		{"missing owner", func(r *CreateGateRequest) { r.Owner = "" }},
		{"missing repo", func(r *CreateGateRequest) { r.Repo = "" }},
		{"bad contract", func(r *CreateGateRequest) { r.Contract = "0x123" }},
		{"zero tokens", func(r *CreateGateRequest) { r.Tokens = 0 }},
		{"negative invites", func(r *CreateGateRequest) { r.Invites = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller := NewGateController(testLogger, &fakeGateService{})
			body := validCreateBody()
			tt.mutate(&body)

			rec := httptest.NewRecorder()
			controller.CreateGate(rec, postGateRequest(t, body))
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGateController_CreateGate_RepoNotFound(t *testing.T) {
	controller := NewGateController(testLogger, &fakeGateService{createErr: domain.ErrRepoNotFound})

	rec := httptest.NewRecorder()
	controller.CreateGate(rec, postGateRequest(t, validCreateBody()))

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, helpers.ErrCodeNotFound, resp.Error.Code)
}

func TestGateController_ListGates_EmptyIsArray(t *testing.T) {
	controller := NewGateController(testLogger, &fakeGateService{})

	req := httptest.NewRequest(http.MethodGet, "/gates", nil)
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
	rec := httptest.NewRecorder()
	controller.ListGates(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// nil from the service serializes as [], not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestGateController_DeleteGate_NotCreator(t *testing.T) {
	controller := NewGateController(testLogger, &fakeGateService{deleteErr: domain.ErrNotGateCreator})

	req := httptest.NewRequest(http.MethodDelete, "/gates/gate-1", nil)
	req.SetPathValue("gateID", "gate-1")
	req = req.WithContext(middleware.SetUserID(req.Context(), "user-2"))
	rec := httptest.NewRecorder()
	controller.DeleteGate(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Equal(t, helpers.ErrCodeForbidden, resp.Error.Code)
}
