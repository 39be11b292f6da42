package enums

import "fmt"

// RequestType maps to the request_type enum in Postgres.
type RequestType string

const (
	RequestTypeInfo  RequestType = "INFO"
	RequestTypeOrder RequestType = "ORDER"
)

var validRequestTypes = []RequestType{
	RequestTypeInfo,
	RequestTypeOrder,
}

// IsValid reports whether the value matches the canonical request_type enum.
func (r RequestType) IsValid() bool {
	for _, candidate := range validRequestTypes {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRequestType converts raw input into a RequestType.
func ParseRequestType(value string) (RequestType, error) {
	for _, candidate := range validRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request type %q", value)
}

// RequestStatus maps to the request_status enum in Postgres.
type RequestStatus string

const (
	RequestStatusPending RequestStatus = "PENDING"
	RequestStatusTreated RequestStatus = "TREATED"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusTreated,
}

// IsValid reports whether the value matches the canonical request_status enum.
func (r RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}
