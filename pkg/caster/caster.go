package caster

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Caster converts values to and from the frames exchanged with web clients.
type Caster[T any] interface {
	From([]byte) (T, error)
	To(T) ([]byte, error)
}

type JSONCaster[T any] struct{}

func (jc JSONCaster[T]) From(data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrap(err, "decode frame")
	}
	return v, nil
}

func (jc JSONCaster[T]) To(v T) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encode frame")
	}
	return data, nil
}
