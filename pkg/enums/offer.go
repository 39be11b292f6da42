package enums

import "fmt"

// OfferStatus is the stored lifecycle status of an offer. The display
// status is derived: expiration by end date overrides ACTIVE and DRAFT.
type OfferStatus string

const (
	OfferStatusDraft   OfferStatus = "DRAFT"
	OfferStatusActive  OfferStatus = "ACTIVE"
	OfferStatusExpired OfferStatus = "EXPIRED"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusDraft,
	OfferStatusActive,
	OfferStatusExpired,
}

// IsValid reports whether the value matches the canonical offer_status enum.
func (o OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}

// OfferCategory is the closed set of merchandising categories.
type OfferCategory string

const (
	OfferCategoryEpicerie  OfferCategory = "EPICERIE"
	OfferCategoryFrais     OfferCategory = "FRAIS"
	OfferCategorySurgeles  OfferCategory = "SURGELES"
	OfferCategoryBoissons  OfferCategory = "BOISSONS"
	OfferCategoryHygiene   OfferCategory = "HYGIENE"
	OfferCategoryEntretien OfferCategory = "ENTRETIEN"
	OfferCategoryBazar     OfferCategory = "BAZAR"
)

var validOfferCategories = []OfferCategory{
	OfferCategoryEpicerie,
	OfferCategoryFrais,
	OfferCategorySurgeles,
	OfferCategoryBoissons,
	OfferCategoryHygiene,
	OfferCategoryEntretien,
	OfferCategoryBazar,
}

// IsValid reports whether the value matches the canonical category enum.
func (o OfferCategory) IsValid() bool {
	for _, candidate := range validOfferCategories {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOfferCategory converts raw input into an OfferCategory.
func ParseOfferCategory(value string) (OfferCategory, error) {
	for _, candidate := range validOfferCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer category %q", value)
}
