package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies why processing of a file stopped.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureStructural       FailureKind = "structural"
	FailureOwnerNotFound    FailureKind = "owner_not_found"
	FailureOwnerNoAgreement FailureKind = "owner_no_agreement"
	FailureRegistryContract FailureKind = "registry_contract"
	FailurePersistence      FailureKind = "persistence"
	FailureInternal         FailureKind = "internal"
)

// IngestError is a fatal-for-the-file condition.
type IngestError struct {
	Kind FailureKind
	Msg  string
	Err  error
}

func NewIngestError(kind FailureKind, msg string, err error) *IngestError {
	return &IngestError{Kind: kind, Msg: msg, Err: err}
}

func (e *IngestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, errors that are not IngestError are internal.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var ie *IngestError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return FailureInternal
}

// Outcome counts what a successful entity walk did.
type Outcome struct {
	CertID                  int64 `json:"cert_id"`
	ZonesProcessed          int   `json:"zones_processed"`
	ZonesSkipped            int   `json:"zones_skipped"`
	OrganizationsCreated    int   `json:"organizations_created"`
	ContactsWritten         int   `json:"contacts_written"`
	ResourcesCreated        int   `json:"resources_created"`
	ResourcesUpdated        int   `json:"resources_updated"`
	ResponsibilitiesCreated int   `json:"responsibilities_created"`
	ResponsibilitiesSkipped int   `json:"responsibilities_skipped"`
	DateOrderViolations     int   `json:"date_order_violations"`
}

// FileResult is what a caller learns about one processed input file.
type FileResult struct {
	File    string      `json:"file"`
	LogFile string      `json:"log_file"`
	OK      bool        `json:"ok"`
	Failure FailureKind `json:"failure,omitempty"`
	Outcome *Outcome    `json:"outcome,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}
