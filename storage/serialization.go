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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/poiesic/recall/core"
)

// MarshalDocument serializes any stored document to its JSON form.
func MarshalDocument(doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalDocument deserializes a stored JSON document into a new T.
func UnmarshalDocument[T any](data []byte) (*T, error) {
	var doc T
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &doc, nil
}

// MarshalItem serializes an item without its vector. Vectors are kept in
// the vector collection only.
func MarshalItem(item *core.Item) ([]byte, error) {
	stored := *item
	stored.Vector = nil
	return MarshalDocument(&stored)
}

// UnmarshalItem deserializes an Item.
func UnmarshalItem(data []byte) (*core.Item, error) {
	return UnmarshalDocument[core.Item](data)
}

// UnmarshalVectorRecord deserializes a VectorRecord.
func UnmarshalVectorRecord(data []byte) (*core.VectorRecord, error) {
	return UnmarshalDocument[core.VectorRecord](data)
}

// UnmarshalSession deserializes a Session.
func UnmarshalSession(data []byte) (*core.Session, error) {
	return UnmarshalDocument[core.Session](data)
}

// UnmarshalMessage deserializes a Message.
func UnmarshalMessage(data []byte) (*core.Message, error) {
	return UnmarshalDocument[core.Message](data)
}

// UnmarshalIndexSpec deserializes an IndexSpec.
func UnmarshalIndexSpec(data []byte) (*IndexSpec, error) {
	return UnmarshalDocument[IndexSpec](data)
}
