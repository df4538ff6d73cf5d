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


// Package storage provides the storage abstraction layer for recall.
//
// This package defines repository interfaces that decouple the document store
// from the catalog, search and chat services built on top of it.
//
// # Collections
//
// Documents are grouped in three collections:
//
//   - movies: base catalog records (CatalogRepository)
//   - vectors: one vector record per catalog item, same ID (VectorRepository)
//   - completions: sessions and messages, discriminated by type (SessionRepository)
//
// Index descriptors for each collection are managed by IndexRepository.
//
// # Serialization
//
// Every document is stored as JSON. The catalog's bulk import format is a
// JSON array of the same documents, so the stored form and the wire form
// never diverge.
//
// # Usage
//
//	store, err := badger.OpenStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryStore()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support.
package storage
