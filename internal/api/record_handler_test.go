package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/mocks"
	"github.com/phrazzld/finance-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedRecordID = uuid.MustParse("22222222-2222-2222-2222-222222222222")

func testRecord(owner uuid.UUID) *domain.Record {
	now := time.Date(2025, time.April, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Record{
		ID:          fixedRecordID,
		UserID:      owner,
		Type:        domain.RecordTypeIncome,
		Value:       10000,
		Description: "salary",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// withPathParam attaches a chi route context carrying one URL parameter.
func withPathParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRecordHandler_Create(t *testing.T) {
	user := testUser()

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedValue  float64
		expectCall     bool
	}{
		{
			name:           "numeric value",
			body:           `{"type":"income","value":10000,"description":"salary"}`,
			expectedStatus: http.StatusCreated,
			expectedValue:  10000,
			expectCall:     true,
		},
		{
			name:           "numeric string value",
			body:           `{"type":"outcome","value":"3.1415"}`,
			expectedStatus: http.StatusCreated,
			expectedValue:  3.1415,
			expectCall:     true,
		},
		{
			name:           "client owner is ignored",
			body:           `{"type":"income","value":5,"user":"33333333-3333-3333-3333-333333333333"}`,
			expectedStatus: http.StatusCreated,
			expectedValue:  5,
			expectCall:     true,
		},
		{
			name:           "invalid type",
			body:           `{"type":"gift","value":5}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "array value",
			body:           `{"type":"income","value":[1]}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "non numeric value",
			body:           `{"type":"income","value":"lots"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing value",
			body:           `{"type":"income"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			records := &mocks.MockRecordService{
				CreateFn: func(ctx context.Context, ownerID uuid.UUID, input service.RecordInput) (*domain.Record, error) {
					called = true
					assert.Equal(t, user.ID, ownerID)
					assert.Equal(t, tt.expectedValue, input.Value)
					rec := testRecord(ownerID)
					rec.Type = input.Type
					rec.Value = input.Value
					return rec, nil
				},
			}
			h := NewRecordHandler(records, nil)

			req := httptest.NewRequest(http.MethodPost, "/api/financials", bytes.NewBufferString(tt.body))
			req = withSession(req, user, "token-1")
			rr := httptest.NewRecorder()
			h.Create(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, tt.expectCall, called)
			if tt.expectedStatus == http.StatusCreated {
				var resp RecordResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, user.ID, resp.UserID)
				assert.Equal(t, tt.expectedValue, resp.Value)
			}
		})
	}
}

func TestRecordHandler_List(t *testing.T) {
	user := testUser()

	t.Run("empty list is an empty array", func(t *testing.T) {
		records := &mocks.MockRecordService{
			ListOwnedFn: func(ctx context.Context, ownerID uuid.UUID) ([]*domain.Record, error) {
				return []*domain.Record{}, nil
			},
		}
		h := NewRecordHandler(records, nil)

		rr := httptest.NewRecorder()
		h.List(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/financials", nil), user, "t"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})

	t.Run("service failure is a 500", func(t *testing.T) {
		records := &mocks.MockRecordService{Err: errors.New("db down")}
		h := NewRecordHandler(records, nil)

		rr := httptest.NewRecorder()
		h.List(rr, withSession(httptest.NewRequest(http.MethodGet, "/api/financials", nil), user, "t"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "db down")
	})
}

func TestRecordHandler_Update(t *testing.T) {
	user := testUser()

	tests := []struct {
		name           string
		pathID         string
		body           string
		serviceErr     error
		expectedStatus int
		expectedErrMsg string
		checkPatch     func(t *testing.T, patch domain.RecordPatch)
	}{
		{
			name:           "update value",
			pathID:         fixedRecordID.String(),
			body:           `{"value":"250"}`,
			expectedStatus: http.StatusOK,
			checkPatch: func(t *testing.T, patch domain.RecordPatch) {
				require.NotNil(t, patch.Value)
				assert.Equal(t, 250.0, *patch.Value)
				assert.Nil(t, patch.Type)
				assert.False(t, patch.OwnerSet)
			},
		},
		{
			name:           "owner field is flagged",
			pathID:         fixedRecordID.String(),
			body:           `{"user":"33333333-3333-3333-3333-333333333333"}`,
			serviceErr:     service.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			checkPatch: func(t *testing.T, patch domain.RecordPatch) {
				assert.True(t, patch.OwnerSet)
			},
		},
		{
			name:           "not owned",
			pathID:         fixedRecordID.String(),
			body:           `{"description":"rent"}`,
			serviceErr:     service.ErrNotFound,
			expectedStatus: http.StatusNotFound,
			expectedErrMsg: "Financial record not found",
		},
		{
			name:           "malformed id",
			pathID:         "not-a-uuid",
			body:           `{"value":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "id has invalid format",
		},
		{
			name:           "invalid value",
			pathID:         fixedRecordID.String(),
			body:           `{"value":true}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "null description",
			pathID:         fixedRecordID.String(),
			body:           `{"description":null}`,
			expectedStatus: http.StatusBadRequest,
			expectedErrMsg: "description must be a string",
		},
		{
			name:           "non object body",
			pathID:         fixedRecordID.String(),
			body:           `[1,2]`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := &mocks.MockRecordService{
				UpdateFn: func(
					ctx context.Context,
					ownerID, recordID uuid.UUID,
					patch domain.RecordPatch,
				) (*domain.Record, error) {
					assert.Equal(t, user.ID, ownerID)
					assert.Equal(t, fixedRecordID, recordID)
					if tt.checkPatch != nil {
						tt.checkPatch(t, patch)
					}
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					rec := testRecord(ownerID)
					patch.Apply(rec)
					return rec, nil
				},
			}
			h := NewRecordHandler(records, nil)

			req := httptest.NewRequest(http.MethodPatch, "/api/financials/"+tt.pathID, bytes.NewBufferString(tt.body))
			req = withPathParam(withSession(req, user, "t"), RecordIDParam, tt.pathID)
			rr := httptest.NewRecorder()
			h.Update(rr, req)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedErrMsg != "" {
				assert.Equal(t, tt.expectedErrMsg, decodeError(t, rr).Error)
			}
		})
	}
}

func TestRecordHandler_Delete(t *testing.T) {
	user := testUser()

	t.Run("returns deleted record", func(t *testing.T) {
		records := &mocks.MockRecordService{
			DeleteFn: func(ctx context.Context, ownerID, recordID uuid.UUID) (*domain.Record, error) {
				return testRecord(ownerID), nil
			},
		}
		h := NewRecordHandler(records, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/financials/"+fixedRecordID.String(), nil)
		req = withPathParam(withSession(req, user, "t"), RecordIDParam, fixedRecordID.String())
		rr := httptest.NewRecorder()
		h.Delete(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp RecordResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, fixedRecordID, resp.ID)
	})

	t.Run("absent record", func(t *testing.T) {
		h := NewRecordHandler(&mocks.MockRecordService{Err: service.ErrNotFound}, nil)

		req := httptest.NewRequest(http.MethodDelete, "/api/financials/"+fixedRecordID.String(), nil)
		req = withPathParam(withSession(req, user, "t"), RecordIDParam, fixedRecordID.String())
		rr := httptest.NewRecorder()
		h.Delete(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestRequireUUIDParam(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mw := RequireUUIDParam(RecordIDParam)(next)

	t.Run("valid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withPathParam(httptest.NewRequest(http.MethodDelete, "/", nil), RecordIDParam, fixedRecordID.String())
		mw.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withPathParam(httptest.NewRequest(http.MethodDelete, "/", nil), RecordIDParam, "123")
		mw.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestParseRecordPatch(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, p domain.RecordPatch)
	}{
		{
			name: "all fields",
			body: `{"type":"outcome","value":12.5,"description":"<b>rent</b>"}`,
			check: func(t *testing.T, p domain.RecordPatch) {
				require.NotNil(t, p.Type)
				assert.Equal(t, domain.RecordTypeOutcome, *p.Type)
				require.NotNil(t, p.Value)
				assert.Equal(t, 12.5, *p.Value)
				require.NotNil(t, p.Description)
				assert.Equal(t, "<b>rent</b>", *p.Description)
			},
		},
		{
			name: "null owner still counts as present",
			body: `{"user":null,"value":1}`,
			check: func(t *testing.T, p domain.RecordPatch) {
				assert.True(t, p.OwnerSet)
			},
		},
		{
			name: "unknown keys are ignored",
			body: `{"color":"blue"}`,
			check: func(t *testing.T, p domain.RecordPatch) {
				assert.ErrorIs(t, p.Validate(), domain.ErrEmptyPatch)
			},
		},
		{name: "numeric type", body: `{"type":1}`, wantErr: true},
		{name: "object description", body: `{"description":{}}`, wantErr: true},
		{name: "null description", body: `{"description":null}`, wantErr: true},
		{name: "null type", body: `{"type":null}`, wantErr: true},
		{name: "null value", body: `{"value":null}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))

			patch, err := parseRecordPatch(body)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			tt.check(t, patch)
		})
	}
}
