// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the transport layer.
type Kind string

const (
	// ingestion
	MalformedPayload     Kind = "MalformedPayload"
	MissingCredential    Kind = "MissingCredential"
	MissingOriginURL     Kind = "MissingOriginURL"
	UnsupportedEventKind Kind = "UnsupportedEventKind"

	// roster reconciliation
	UpstreamUnavailable Kind = "UpstreamUnavailable"
	EmptyUpstreamRoster Kind = "EmptyUpstreamRoster"
	TeamNotFound        Kind = "TeamNotFound"
	InvalidArgument     Kind = "InvalidArgument"

	// admin api
	Validation   Kind = "Validation"
	NotFound     Kind = "NotFound"
	Unauthorized Kind = "Unauthorized"

	Internal Kind = "Internal"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建指定类型的错误
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to err.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a kind to its transport status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case MalformedPayload, MissingCredential, MissingOriginURL, UnsupportedEventKind,
		InvalidArgument, Validation, EmptyUpstreamRoster, UpstreamUnavailable:
		return http.StatusBadRequest
	case TeamNotFound, NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the caller-visible reason for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == Internal {
			return "internal error"
		}
		if e.Msg != "" {
			return e.Msg
		}
		return string(e.Kind)
	}
	return "internal error"
}
