package pipeline

import (
	"encoding/json"
	"fmt"
)

// bundle is the cached form of a finished run: the encoded artifacts in
// product order.
type bundle struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	Artifacts []bundleArtifact `json:"artifacts"`
}

type bundleArtifact struct {
	Product Product `json:"product"`
	Data    []byte  `json:"data"`
}

func marshalBundle(b bundle) ([]byte, error) {
	return json.Marshal(b)
}

func unmarshalBundle(data []byte) (bundle, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return bundle{}, err
	}
	for _, a := range b.Artifacts {
		if a.Product < 0 || a.Product >= numProducts {
			return bundle{}, fmt.Errorf("bundle: unknown product %d", int(a.Product))
		}
	}
	return b, nil
}

// recorder captures encoded artifacts while they are written so the run can
// be stored as a bundle.
type recorder struct {
	artifacts []bundleArtifact
}

func (r *recorder) add(p Product, data []byte) {
	r.artifacts = append(r.artifacts, bundleArtifact{Product: p, Data: data})
}
