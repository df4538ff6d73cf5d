// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Error kinds surfaced by every component. Callers match them with errors.Is;
// the underlying cause is always wrapped alongside.
var (
	// ErrInvalidArgument indicates malformed input: an empty text, a missing
	// identifier, a vector of the wrong length.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrModelUnavailable indicates the embedding or completion model failed
	// after retries were exhausted.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrSearchUnavailable indicates the vector index is missing or the search
	// could not be executed.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrStoreUnavailable indicates the document store could not be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrTransactionAborted indicates an atomic commit was rolled back.
	ErrTransactionAborted = errors.New("transaction aborted")

	// ErrConfiguration indicates missing or invalid connection parameters.
	ErrConfiguration = errors.New("configuration error")
)

// Domain validation errors
var (
	// ErrEmptyID indicates an identifier field is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyTitle indicates an item has no title.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrNegativeValue indicates a numeric field that must be >= 0 is negative.
	ErrNegativeValue = errors.New("value cannot be negative")

	// ErrEmptyText indicates a message or prompt with no text.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrInvalidRole indicates a message role other than User or Assistant.
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidDocumentType indicates a wrong type discriminator.
	ErrInvalidDocumentType = errors.New("invalid document type")

	// ErrSessionMismatch indicates a message belongs to a different session.
	ErrSessionMismatch = errors.New("message does not belong to session")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")
)
