package domain

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	dErrors "transparency/pkg/domain-errors"
)

// Tenant and user identifiers are positive integers allocated by the
// persistence layer. Entity identifiers owned by this service are UUIDs.
//
// Distinct named types keep a TenantID from being passed where a UserID is
// expected; construct them via the Parse functions at trust boundaries.
type (
	TenantID  int64
	UserID    int64
	RequestID uuid.UUID
	RecordID  uuid.UUID
)

const maxIDLength = 19

func parsePositive(kind, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(s) > maxIDLength {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	return n, nil
}

func parseUUID(kind, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be empty", kind)
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s cannot be nil", kind)
	}
	return u, nil
}

// ParseTenantID parses a positive decimal tenant identifier.
func ParseTenantID(s string) (TenantID, error) {
	n, err := parsePositive("tenant id", s)
	return TenantID(n), err
}

// ParseUserID parses a positive decimal user identifier.
func ParseUserID(s string) (UserID, error) {
	n, err := parsePositive("user id", s)
	return UserID(n), err
}

// ParseRequestID parses a non-nil UUID information request identifier.
func ParseRequestID(s string) (RequestID, error) {
	u, err := parseUUID("request id", s)
	return RequestID(u), err
}

// ParseRecordID parses a non-nil UUID financial record identifier.
func ParseRecordID(s string) (RecordID, error) {
	u, err := parseUUID("record id", s)
	return RecordID(u), err
}

func NewRequestID() RequestID { return RequestID(uuid.New()) }
func NewRecordID() RecordID   { return RecordID(uuid.New()) }

func (id TenantID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id UserID) String() string   { return strconv.FormatInt(int64(id), 10) }

func (id TenantID) IsNil() bool { return id <= 0 }
func (id UserID) IsNil() bool   { return id <= 0 }

func (id RequestID) String() string { return uuid.UUID(id).String() }
func (id RequestID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RequestID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *RequestID) UnmarshalText(b []byte) error {
	parsed, err := ParseRequestID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id RecordID) String() string { return uuid.UUID(id).String() }
func (id RecordID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id RecordID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *RecordID) UnmarshalText(b []byte) error {
	parsed, err := ParseRecordID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
