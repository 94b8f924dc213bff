package enums

import (
	"fmt"
	"strings"
)

// VerificationStatus tracks whether an admin has verified a user.
type VerificationStatus string

const (
	VerificationVerified   VerificationStatus = "verified"
	VerificationPending    VerificationStatus = "pending"
	VerificationUnverified VerificationStatus = "unverified"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationVerified,
	VerificationPending,
	VerificationUnverified,
}

func (v VerificationStatus) String() string {
	return string(v)
}

func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

func ParseVerificationStatus(value string) (VerificationStatus, error) {
	normalized := VerificationStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}

// VendorType distinguishes individual sellers from registered businesses.
type VendorType string

const (
	VendorTypeIndividual VendorType = "individual"
	VendorTypeBusiness   VendorType = "business"
)

func (v VendorType) IsValid() bool {
	return v == VendorTypeIndividual || v == VendorTypeBusiness
}

func ParseVendorType(value string) (VendorType, error) {
	normalized := VendorType(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid vendor type %q", value)
}
