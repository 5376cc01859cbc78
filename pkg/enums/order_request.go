package enums

import "fmt"

// OrderRequestType distinguishes creation approvals from cancellation requests.
type OrderRequestType string

const (
	OrderRequestTypeCreate OrderRequestType = "CREATE"
	OrderRequestTypeCancel OrderRequestType = "CANCEL"
)

var validOrderRequestTypes = []OrderRequestType{
	OrderRequestTypeCreate,
	OrderRequestTypeCancel,
}

func (t OrderRequestType) String() string {
	return string(t)
}

func (t OrderRequestType) IsValid() bool {
	for _, candidate := range validOrderRequestTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

func ParseOrderRequestType(value string) (OrderRequestType, error) {
	for _, candidate := range validOrderRequestTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order request type %q", value)
}

// RequestStatus is shared by order requests and the decision payloads staff send.
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
}

func (s RequestStatus) String() string {
	return string(s)
}

func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsDecision reports whether the status can be the outcome of a decision.
func (s RequestStatus) IsDecision() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
