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
	"errors"
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

const float32Size = 4

var errTrailingBytes = errors.New("trailing bytes after record")

// PointMUS encodes a Point as
//
//	varint(id.Num) ord(id.UUID) ord(text) ord(category) varint(len(vector)) raw(float32)...
//
// Vectors are written as fixed-width floats so a record is roughly 4 bytes per dimension.
var PointMUS = pointMUS{}

type pointMUS struct{}

func (s pointMUS) Marshal(v Point, bs []byte) (n int) {
	n = varint.Uint64.Marshal(v.ID.Num, bs)
	n += ord.String.Marshal(v.ID.UUID, bs[n:])
	n += ord.String.Marshal(v.Payload.Text, bs[n:])
	n += ord.String.Marshal(v.Payload.Category, bs[n:])
	n += varint.Uint64.Marshal(uint64(len(v.Vector)), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return
}

func (s pointMUS) Unmarshal(bs []byte) (v Point, n int, err error) {
	v.ID.Num, n, err = varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.ID.UUID, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Payload.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Payload.Category, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var length uint64
	length, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	if length > uint64(len(bs)-n)/float32Size {
		err = fmt.Errorf("vector of %d dimensions exceeds record", length)
		return
	}
	v.Vector = make([]float32, length)
	for i := range v.Vector {
		v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

func (s pointMUS) Size(v Point) (size int) {
	size = varint.Uint64.Size(v.ID.Num)
	size += ord.String.Size(v.ID.UUID)
	size += ord.String.Size(v.Payload.Text)
	size += ord.String.Size(v.Payload.Category)
	size += varint.Uint64.Size(uint64(len(v.Vector)))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	return
}

// CollectionMUS encodes a CollectionConfig as ord(name) varint(dimension) ord(distance).
var CollectionMUS = collectionMUS{}

type collectionMUS struct{}

func (s collectionMUS) Marshal(v CollectionConfig, bs []byte) (n int) {
	n = ord.String.Marshal(v.Name, bs)
	n += varint.Uint64.Marshal(uint64(v.Dimension), bs[n:])
	n += ord.String.Marshal(string(v.Distance), bs[n:])
	return
}

func (s collectionMUS) Unmarshal(bs []byte) (v CollectionConfig, n int, err error) {
	v.Name, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1        int
		dimension uint64
		distance  string
	)
	dimension, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Dimension = int(dimension)
	distance, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	v.Distance = Distance(distance)
	return
}

func (s collectionMUS) Size(v CollectionConfig) (size int) {
	size = ord.String.Size(v.Name)
	size += varint.Uint64.Size(uint64(v.Dimension))
	return size + ord.String.Size(string(v.Distance))
}

// MarshalPoint serializes a Point to bytes.
func MarshalPoint(point *Point) ([]byte, error) {
	if point == nil {
		return nil, fmt.Errorf("%w: nil point", ErrSerializationFailed)
	}
	buf := make([]byte, PointMUS.Size(*point))
	PointMUS.Marshal(*point, buf)
	return buf, nil
}

// UnmarshalPoint deserializes a Point from bytes.
func UnmarshalPoint(data []byte) (*Point, error) {
	point, n, err := PointMUS.Unmarshal(data)
	if err == nil && n != len(data) {
		err = errTrailingBytes
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &point, nil
}

// MarshalCollection serializes a CollectionConfig to bytes.
func MarshalCollection(config *CollectionConfig) ([]byte, error) {
	if config == nil {
		return nil, fmt.Errorf("%w: nil collection config", ErrSerializationFailed)
	}
	if config.Dimension < 0 {
		return nil, fmt.Errorf("%w: negative dimension %d", ErrSerializationFailed, config.Dimension)
	}
	buf := make([]byte, CollectionMUS.Size(*config))
	CollectionMUS.Marshal(*config, buf)
	return buf, nil
}

// UnmarshalCollection deserializes a CollectionConfig from bytes.
func UnmarshalCollection(data []byte) (*CollectionConfig, error) {
	config, n, err := CollectionMUS.Unmarshal(data)
	if err == nil && n != len(data) {
		err = errTrailingBytes
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &config, nil
}
