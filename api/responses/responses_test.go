package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/types"
)

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	return envelope
}

func TestWriteErrorRendersDependencyFailureAsServerError(t *testing.T) {
	rec := httptest.NewRecorder()
	cause := errors.New("connection refused")
	WriteError(context.Background(), nil, rec, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "create request"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	envelope := decodeErrorEnvelope(t, rec)
	if envelope.Error.Code != string(pkgerrors.CodeServer) {
		t.Fatalf("expected code SERVER_ERROR, got %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("expected generic message, got %q", envelope.Error.Message)
	}
	if envelope.Error.Details != nil {
		t.Fatalf("expected no details, got %v", envelope.Error.Details)
	}
}

func TestWriteErrorKeepsClientFacingCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   pkgerrors.Code
		wantMsg    string
	}{
		{
			name:       "not found keeps its message",
			err:        pkgerrors.New(pkgerrors.CodeNotFound, "demande introuvable"),
			wantStatus: http.StatusNotFound,
			wantCode:   pkgerrors.CodeNotFound,
			wantMsg:    "demande introuvable",
		},
		{
			name:       "validation keeps its message",
			err:        pkgerrors.New(pkgerrors.CodeValidation, "validation failed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   pkgerrors.CodeValidation,
			wantMsg:    "validation failed",
		},
		{
			name:       "untyped errors map to server error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   pkgerrors.CodeServer,
			wantMsg:    "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			envelope := decodeErrorEnvelope(t, rec)
			if envelope.Error.Code != string(tc.wantCode) {
				t.Fatalf("expected code %s, got %q", tc.wantCode, envelope.Error.Code)
			}
			if envelope.Error.Message != tc.wantMsg {
				t.Fatalf("expected message %q, got %q", tc.wantMsg, envelope.Error.Message)
			}
		})
	}
}
