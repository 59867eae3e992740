package adapter

import (
	"fmt"

	"github.com/gowebpki/jcs"
)

// JCS produces RFC 8785 canonical JSON so that signed payloads are byte-stable
//
//go:generate mockgen -source=jcs.go -destination=../mocks/jcs.go -package=mocks -mock_names=JCS=MockJCS
type JCS interface {
	// Transform canonicalizes an already encoded JSON document
	Transform(data []byte) ([]byte, error)
	// Canonicalize encodes v and canonicalizes the result
	Canonicalize(v interface{}) ([]byte, error)
}

// RealJCS implements JCS on top of the gowebpki/jcs package
type RealJCS struct {
	json JSON
}

// NewJCS creates a new real JCS implementation
func NewJCS(jsonAdapter JSON) JCS {
	return &RealJCS{json: jsonAdapter}
}

func (j *RealJCS) Transform(data []byte) ([]byte, error) {
	return jcs.Transform(data)
}

func (j *RealJCS) Canonicalize(v interface{}) ([]byte, error) {
	data, err := j.json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	return jcs.Transform(data)
}
