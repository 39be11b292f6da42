package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/promolink/promolink-backend/api/middleware"
	"github.com/promolink/promolink-backend/api/responses"
	"github.com/promolink/promolink-backend/api/validators"
	"github.com/promolink/promolink-backend/internal/offers"
	"github.com/promolink/promolink-backend/pkg/enums"
	pkgerrors "github.com/promolink/promolink-backend/pkg/errors"
	"github.com/promolink/promolink-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type offerCreateBody struct {
	Name            string           `json:"name" validate:"required,max=200"`
	PromoPrice      decimal.Decimal  `json:"promoPrice" validate:"required"`
	DiscountPercent decimal.Decimal  `json:"discountPercent" validate:"required"`
	StartDate       string           `json:"startDate" validate:"required"`
	EndDate         string           `json:"endDate" validate:"required"`
	Category        string           `json:"category" validate:"required"`
	Subcategory     *string          `json:"subcategory,omitempty"`
	MarginPercent   *decimal.Decimal `json:"marginPercent,omitempty"`
	Volume          *string          `json:"volume,omitempty"`
	Conditions      *string          `json:"conditions,omitempty"`
	Animation       *string          `json:"animation,omitempty"`
	PhotoURL        *string          `json:"photoUrl,omitempty"`
	Status          *string          `json:"status,omitempty"`
}

type offerUpdateBody struct {
	Name            *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	PromoPrice      *decimal.Decimal `json:"promoPrice,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discountPercent,omitempty"`
	StartDate       *string          `json:"startDate,omitempty"`
	EndDate         *string          `json:"endDate,omitempty"`
	Category        *string          `json:"category,omitempty"`
	Subcategory     *string          `json:"subcategory,omitempty"`
	MarginPercent   *decimal.Decimal `json:"marginPercent,omitempty"`
	Volume          *string          `json:"volume,omitempty"`
	Conditions      *string          `json:"conditions,omitempty"`
	Animation       *string          `json:"animation,omitempty"`
	PhotoURL        *string          `json:"photoUrl,omitempty"`
	Status          *string          `json:"status,omitempty"`
}

func SupplierCreateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body offerCreateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Create(r.Context(), userID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

func SupplierUpdateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body offerUpdateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Update(r.Context(), userID, offerID, *input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

func SupplierDeleteOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, offerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"offerId": offerID.String()})
	}
}

func SupplierListOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := offerListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOwn(r.Context(), userID, *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListOffers is the public catalog view; only ACTIVE offers are served.
func ListOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := offerListParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := enums.OfferStatusActive
		params.Status = &active

		result, err := svc.List(r.Context(), *params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Get(r.Context(), offerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func (b offerCreateBody) toInput() (*offers.CreateInput, error) {
	startDate, err := parseDate(b.StartDate, "startDate")
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(b.EndDate, "endDate")
	if err != nil {
		return nil, err
	}

	input := offers.CreateInput{
		Name:            b.Name,
		PromoPrice:      b.PromoPrice,
		DiscountPercent: b.DiscountPercent,
		StartDate:       startDate,
		EndDate:         endDate,
		Category:        enums.OfferCategory(b.Category),
		Subcategory:     b.Subcategory,
		MarginPercent:   b.MarginPercent,
		Volume:          b.Volume,
		Conditions:      b.Conditions,
		Animation:       b.Animation,
		PhotoURL:        b.PhotoURL,
		Status:          enums.OfferStatusDraft,
	}
	if b.Status != nil {
		input.Status = enums.OfferStatus(*b.Status)
	}
	return &input, nil
}

func (b offerUpdateBody) toInput() (*offers.UpdateInput, error) {
	input := offers.UpdateInput{
		Name:          b.Name,
		Subcategory:   b.Subcategory,
		MarginPercent: b.MarginPercent,
		Volume:        b.Volume,
		Conditions:    b.Conditions,
		Animation:     b.Animation,
		PhotoURL:      b.PhotoURL,
	}
	input.PromoPrice = b.PromoPrice
	input.DiscountPercent = b.DiscountPercent
	if b.StartDate != nil {
		startDate, err := parseDate(*b.StartDate, "startDate")
		if err != nil {
			return nil, err
		}
		input.StartDate = &startDate
	}
	if b.EndDate != nil {
		endDate, err := parseDate(*b.EndDate, "endDate")
		if err != nil {
			return nil, err
		}
		input.EndDate = &endDate
	}
	if b.Category != nil {
		category := enums.OfferCategory(*b.Category)
		input.Category = &category
	}
	if b.Status != nil {
		status := enums.OfferStatus(*b.Status)
		input.Status = &status
	}
	return &input, nil
}

func offerListParams(r *http.Request) (*offers.ListParams, error) {
	params := offers.ListParams{}

	limit, err := queryLimit(r)
	if err != nil {
		return nil, err
	}
	params.Limit = limit
	params.Cursor = strings.TrimSpace(r.URL.Query().Get("cursor"))

	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		value := enums.OfferCategory(category)
		if !value.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
		}
		params.Category = &value
	}
	if supplier := strings.TrimSpace(r.URL.Query().Get("supplierId")); supplier != "" {
		id, err := uuid.Parse(supplier)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
		}
		params.SupplierID = &id
	}
	return &params, nil
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, field+" must be YYYY-MM-DD")
	}
	return parsed, nil
}

func actorUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}
