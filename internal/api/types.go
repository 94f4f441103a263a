package api

import (
	"github.com/shopspring/decimal"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/protocol"
	"github.com/lodecraft/lode-verify-go/internal/scan"
	"github.com/lodecraft/lode-verify-go/internal/scripting"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

// VerifierVersion identifies the verifier build in responses and headers.
const VerifierVersion = "1.0.0"

// VerifierError is the structured error body every failing endpoint returns.
type VerifierError struct {
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty"`
}

// Error implements the error interface.
func (e VerifierError) Error() string {
	return e.Message
}

// Error types with categorization.
const (
	ErrTypeValidation   = "validation_error"
	ErrTypeInvalidWord  = "invalid_word"
	ErrTypeInvalidHash  = "invalid_hash"
	ErrTypePuzzle       = "puzzle_not_found"
	ErrTypeVerification = "verification_error"
	ErrTypeProtocol     = "protocol_error"
	ErrTypeScript       = "script_error"
	ErrTypeUnauthorized = "unauthorized"
	ErrTypeTimeout      = "timeout"
	ErrTypeInternal     = "internal_error"
)

// ErrorCategory groups error types for monitoring.
type ErrorCategory string

const (
	CategoryValidation ErrorCategory = "validation"
	CategoryDomain     ErrorCategory = "domain"
	CategoryAuth       ErrorCategory = "auth"
	CategoryTimeout    ErrorCategory = "timeout"
	CategorySystem     ErrorCategory = "system"
)

// GetErrorCategory returns the category for an error type.
func GetErrorCategory(errType string) ErrorCategory {
	switch errType {
	case ErrTypeValidation, ErrTypeInvalidWord, ErrTypeInvalidHash:
		return CategoryValidation
	case ErrTypePuzzle, ErrTypeVerification, ErrTypeProtocol, ErrTypeScript:
		return CategoryDomain
	case ErrTypeUnauthorized:
		return CategoryAuth
	case ErrTypeTimeout:
		return CategoryTimeout
	default:
		return CategorySystem
	}
}

// VerifyRequest verifies one encoded solution against a puzzle set.
type VerifyRequest struct {
	PuzzleIDs [4]u256.Word `json:"puzzle_ids"`
	SetupData uint16       `json:"setup_data"`
	Solution  []u256.Word  `json:"solution"`
}

// VerifyResponse is the simulation verdict.
type VerifyResponse struct {
	Valid           bool   `json:"valid"`
	Failure         string `json:"failure,omitempty"`
	Moves           int    `json:"moves"`
	VerifierVersion string `json:"verifier_version"`
}

// MintRequest registers a descriptor under its puzzle id.
type MintRequest struct {
	ID    u256.Word    `json:"id"`
	Words [4]u256.Word `json:"words"`
}

// PuzzleResponse returns a stored descriptor.
type PuzzleResponse struct {
	ID    u256.Word    `json:"id"`
	Words [4]u256.Word `json:"words"`
}

// StartRequest opens a competition.
type StartRequest struct {
	PuzzleIDs [4]u256.Word    `json:"puzzle_ids"`
	SetupData uint16          `json:"setup_data"`
	Prize     decimal.Decimal `json:"prize"`
}

// CommitRequest binds a submitter to a solution hash (hex, 32 bytes).
type CommitRequest struct {
	Submitter string `json:"submitter"`
	Hash      string `json:"hash"`
}

// RevealRequest discloses a committed solution.
type RevealRequest struct {
	Submitter string      `json:"submitter"`
	Solution  []u256.Word `json:"solution"`
}

// ChallengeRequest disputes the outstanding submission.
type ChallengeRequest struct {
	Challenger string `json:"challenger"`
}

// StatusResponse wraps the protocol snapshot.
type StatusResponse struct {
	protocol.Status
	VerifierVersion string `json:"verifier_version"`
}

// ScanResponse wraps a batch verification run.
type ScanResponse struct {
	Verdicts        []scan.Verdict `json:"verdicts"`
	Summary         scan.Summary   `json:"summary"`
	VerifierVersion string         `json:"verifier_version"`
}

// ScriptBuildRequest runs a move-builder script.
type ScriptBuildRequest struct {
	Source string `json:"source"`
}

// ScriptBuildResponse returns the composed moves and their wire encoding.
type ScriptBuildResponse struct {
	Moves           []string             `json:"moves"`
	Words           []u256.Word          `json:"words"`
	Logs            []scripting.LogEntry `json:"logs,omitempty"`
	VerifierVersion string               `json:"verifier_version"`
}

func moveStrings(moves []codec.Move) []string {
	out := make([]string, len(moves))
	for i, m := range moves {
		out[i] = m.String()
	}
	return out
}
