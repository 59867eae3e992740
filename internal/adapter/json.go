package adapter

import (
	gojson "github.com/goccy/go-json"
)

// JSON defines an interface for JSON operations to enable mocking
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

// RealJSON implements JSON using goccy/go-json, a drop-in encoding/json replacement
type RealJSON struct{}

// NewJSON creates a new real JSON implementation
func NewJSON() JSON {
	return &RealJSON{}
}

func (j *RealJSON) Marshal(v interface{}) ([]byte, error) {
	return gojson.Marshal(v)
}

func (j *RealJSON) Unmarshal(data []byte, v interface{}) error {
	return gojson.Unmarshal(data, v)
}
