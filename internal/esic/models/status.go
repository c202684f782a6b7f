package models

import (
	"fmt"

	dErrors "transparency/pkg/domain-errors"
)

// Status is the lifecycle state of an information request.
// Invariant: only the values below exist; movement between them is governed
// by the transitions table.
type Status string

const (
	StatusPending        Status = "pending"
	StatusInProgress     Status = "in_progress"
	StatusAnswered       Status = "answered"
	StatusAppealed       Status = "appealed"
	StatusAppealAnswered Status = "appeal_answered"
	StatusClosed         Status = "closed"
	StatusExpired        Status = "expired"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusAnswered,
		StatusAppealed,
		StatusAppealAnswered,
		StatusClosed,
		StatusExpired,
	}
}

// ParseStatus constructs a Status from external input (query strings, rows).
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.Field("status", fmt.Sprintf("unknown status %q", s))
	}
	return st, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAnswered, StatusAppealed,
		StatusAppealAnswered, StatusClosed, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether no operation can leave s.
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusExpired
}

// AwaitingResponse reports whether the request still waits for its first answer.
func (s Status) AwaitingResponse() bool {
	return s == StatusPending || s == StatusInProgress
}

func (s Status) String() string {
	return string(s)
}

// Operation names a lifecycle mutation.
type Operation string

const (
	OpStartProcessing Operation = "start_processing"
	OpRespond         Operation = "respond"
	OpFileAppeal      Operation = "file_appeal"
	OpResolveAppeal   Operation = "resolve_appeal"
	OpClose           Operation = "close"
	OpExpire          Operation = "expire"
)

// Operations lists every status-changing operation.
func Operations() []Operation {
	return []Operation{OpStartProcessing, OpRespond, OpFileAppeal, OpResolveAppeal, OpClose, OpExpire}
}

func (o Operation) String() string {
	return string(o)
}

// transitions maps each operation to the statuses it may start from and the
// status it produces. Anything absent is illegal.
var transitions = map[Operation]map[Status]Status{
	OpStartProcessing: {
		StatusPending: StatusInProgress,
	},
	OpRespond: {
		StatusPending:    StatusAnswered,
		StatusInProgress: StatusAnswered,
	},
	OpFileAppeal: {
		StatusAnswered: StatusAppealed,
	},
	OpResolveAppeal: {
		StatusAppealed: StatusAppealAnswered,
	},
	OpClose: {
		StatusAnswered:       StatusClosed,
		StatusAppealAnswered: StatusClosed,
	},
	OpExpire: {
		StatusPending:    StatusExpired,
		StatusInProgress: StatusExpired,
	},
}

// Next returns the status op produces from s, or a *TransitionError when the
// pair is not in the table.
func (s Status) Next(op Operation) (Status, error) {
	if to, ok := transitions[op][s]; ok {
		return to, nil
	}
	return "", &TransitionError{Op: op, From: s}
}

// CanApply reports whether op is legal from s.
func (s Status) CanApply(op Operation) bool {
	_, ok := transitions[op][s]
	return ok
}

// TransitionError reports an operation attempted from a status that does not
// permit it. It unwraps to a CodeInvalidTransition domain error.
type TransitionError struct {
	Op   Operation
	From Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a request in status %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error {
	return dErrors.New(dErrors.CodeInvalidTransition, e.Error())
}
