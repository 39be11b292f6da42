package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/promolink/promolink-backend/api/responses"
	"github.com/promolink/promolink-backend/api/validators"
	"github.com/promolink/promolink-backend/internal/requests"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/logger"
)

type requestCreateBody struct {
	OfferID string  `json:"offerId" validate:"required,uuid"`
	Type    string  `json:"type" validate:"required,oneof=INFO ORDER"`
	Message *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// StoreCreateRequest lets a store send an INFO or ORDER request on an offer.
func StoreCreateRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body requestCreateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := uuid.Parse(body.OfferID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid offer id"))
			return
		}

		result, err := svc.Create(r.Context(), requests.CreateInput{
			StoreUserID: userID,
			OfferID:     offerID,
			Type:        enums.RequestType(body.Type),
			Message:     body.Message,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// SupplierTreatRequest marks a pending request as handled.
func SupplierTreatRequest(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := pathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Treat(r.Context(), requests.TreatInput{
			SupplierUserID: userID,
			RequestID:      requestID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func SupplierListRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return listRequests(svc.ListForSupplier, logg)
}

func StoreListRequests(svc requests.Service, logg *logger.Logger) http.HandlerFunc {
	return listRequests(svc.ListForStore, logg)
}

func listRequests(list func(ctx context.Context, params requests.ListParams) (*requests.ListResult, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := requests.ListParams{UserID: userID}

		limit, err := queryLimit(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params.Limit = limit
		params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

		if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
			value := enums.RequestStatus(status)
			if !value.IsValid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status"))
				return
			}
			params.Status = &value
		}

		result, err := list(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
