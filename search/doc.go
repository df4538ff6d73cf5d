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


// Package search provides the vector index manager and the nearest-neighbour
// search engine over catalog vectors.
//
// IndexManager.EnsureIndex defines the vector index once, tolerating
// concurrent creators. Engine.Search refuses to run until that index exists
// and the query vector matches its dimensions, then returns the k most
// cosine-similar records as Hits. Hits.Grounding renders the hit payloads
// as newline-separated JSON documents for the completion model.
package search
