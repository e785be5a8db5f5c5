// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/siftkit/sift/domain"
)

// Decoder implements [domain.Decoder].
type Decoder struct{}

// NewDecoder returns a new implementation of [domain.Decoder].
func NewDecoder() domain.Decoder {
	return &Decoder{}
}

// Decode implements [domain.Decoder]. Struct fields map through the "sift"
// tag.
func (d *Decoder) Decode(src any, tgt any) error {
	if tgt == nil {
		return domain.ErrTargetNil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "sift",
		Result:  tgt,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode{Source: src, Target: tgt}, err)
	}
	if err := dec.Decode(src); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDecode{Source: src, Target: tgt}, err)
	}
	return nil
}
