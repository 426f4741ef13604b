package driver

import (
	"encoding/json"
	"fmt"

	"wlbind/internal/diag"
	"wlbind/internal/observ"
	"wlbind/internal/source"
)

type timingPayload struct {
	Kind      string               `json:"kind"`
	Root      string               `json:"root,omitempty"`
	Documents int                  `json:"documents"`
	CacheHit  bool                 `json:"cache_hit,omitempty"`
	TotalMS   float64              `json:"total_ms"`
	Phases    []observ.PhaseReport `json:"phases"`
}

// appendTimingDiagnostic records the timer report as an ObsTimings info
// diagnostic whose single note carries the JSON payload.
func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "compile"
	}
	msg := fmt.Sprintf("timings (%s): %d documents, total %.2f ms", payload.Kind, payload.Documents, payload.TotalMS)
	if payload.CacheHit {
		msg += ", cache hit"
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
