package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/iterlab/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Points []ExportPoint `json:"points"`
}

type ExportPoint struct {
	Step  int     `json:"step"`
	Value []Value `json:"value"`
}

func ExportJSON(w io.Writer, meta RunMetadata, trace *dynamo.Trace) error {
	data := ExportData{RunMetadata: meta}
	if trace != nil {
		data.Points = make([]ExportPoint, len(trace.Points))
		for i, p := range trace.Points {
			data.Points[i] = ExportPoint{Step: p.Step, Value: Values(p.Value)}
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
