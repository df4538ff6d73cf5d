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


package catalog

import "errors"

var (
	// ErrCatalogRepositoryRequired is returned when a catalog repository is not provided.
	ErrCatalogRepositoryRequired = errors.New("catalog repository required")

	// ErrVectorRepositoryRequired is returned when a vector repository is not provided.
	ErrVectorRepositoryRequired = errors.New("vector repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrItemChanged is returned when an item is deleted or replaced while its
	// embedding is being computed.
	ErrItemChanged = errors.New("item changed during embedding")

	// ErrNotJSONArray is returned when bulk import data is not a JSON array.
	ErrNotJSONArray = errors.New("bulk import data must be a JSON array")

	// ErrUnsupportedCollection is returned when importing into a collection
	// other than the catalog.
	ErrUnsupportedCollection = errors.New("collection does not accept imports")
)
