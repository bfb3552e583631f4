package store

import (
	"encoding/json"
	"math"
)

// encoding/json rejects NaN and ±Inf. Scores and parameters of a diverged run
// are stored as null instead and read back as NaN.

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func finiteSlice(vs []float64) []*float64 {
	if vs == nil {
		return nil
	}
	out := make([]*float64, len(vs))
	for i, v := range vs {
		out[i] = finite(v)
	}
	return out
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

func orNaNSlice(ps []*float64) []float64 {
	if ps == nil {
		return nil
	}
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = orNaN(p)
	}
	return out
}

type traceEntryFields TraceEntry

type traceEntryJSON struct {
	traceEntryFields
	BestScore *float64   `json:"best"`
	MeanScore *float64   `json:"mean"`
	StdScore  *float64   `json:"std"`
	Params    []*float64 `json:"params,omitempty"`
}

func (e TraceEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(traceEntryJSON{
		traceEntryFields: traceEntryFields(e),
		BestScore:        finite(e.BestScore),
		MeanScore:        finite(e.MeanScore),
		StdScore:         finite(e.StdScore),
		Params:           finiteSlice(e.Params),
	})
}

func (e *TraceEntry) UnmarshalJSON(data []byte) error {
	var raw traceEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = TraceEntry(raw.traceEntryFields)
	e.BestScore = orNaN(raw.BestScore)
	e.MeanScore = orNaN(raw.MeanScore)
	e.StdScore = orNaN(raw.StdScore)
	e.Params = orNaNSlice(raw.Params)
	return nil
}

type runRecordFields RunRecord

type runRecordJSON struct {
	runRecordFields
	InitialParams []*float64 `json:"initialParams"`
	FinalParams   []*float64 `json:"finalParams"`
	FinalScore    *float64   `json:"finalScore"`
}

func (r RunRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(runRecordJSON{
		runRecordFields: runRecordFields(r),
		InitialParams:   finiteSlice(r.InitialParams),
		FinalParams:     finiteSlice(r.FinalParams),
		FinalScore:      finite(r.FinalScore),
	})
}

func (r *RunRecord) UnmarshalJSON(data []byte) error {
	var raw runRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = RunRecord(raw.runRecordFields)
	r.InitialParams = orNaNSlice(raw.InitialParams)
	r.FinalParams = orNaNSlice(raw.FinalParams)
	r.FinalScore = orNaN(raw.FinalScore)
	return nil
}
