// Package metrics holds the Prometheus collectors describing workspace state.
// A nil *Workspace is valid and records nothing, so components can run without a registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Workspace groups the collectors updated by the workspace engine.
type Workspace struct {
	documents      prometheus.Gauge
	selected       prometheus.Gauge
	liveReferences prometheus.Gauge
	ingestedFiles  *prometheus.CounterVec
	drops          *prometheus.CounterVec
	uploadNotices  *prometheus.CounterVec
}

// NewWorkspace creates the collectors and registers them with reg.
func NewWorkspace(reg prometheus.Registerer) (*Workspace, error) {
	m := &Workspace{
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workspace_documents",
			Help: "Number of documents currently in the workspace.",
		}),
		selected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workspace_selected_documents",
			Help: "Number of documents currently selected as sources.",
		}),
		liveReferences: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workspace_live_object_references",
			Help: "Number of acquired, unreleased object references.",
		}),
		ingestedFiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_ingested_files_total",
				Help: "Files processed by the ingestion pipeline, by outcome.",
			},
			[]string{"outcome"},
		),
		drops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_drops_total",
				Help: "Drop events seen by the coordinator, by the listener that claimed them.",
			},
			[]string{"listener"},
		),
		uploadNotices: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "workspace_upload_notices_total",
				Help: "Upload notifications, by result.",
			},
			[]string{"result"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.documents, m.selected, m.liveReferences, m.ingestedFiles, m.drops, m.uploadNotices,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveState records the document and selection counts after a store mutation.
func (m *Workspace) ObserveState(documents, selected int) {
	if m == nil {
		return
	}
	m.documents.Set(float64(documents))
	m.selected.Set(float64(selected))
}

// SetLiveReferences records the number of live object references.
func (m *Workspace) SetLiveReferences(n int) {
	if m == nil {
		return
	}
	m.liveReferences.Set(float64(n))
}

// IngestOutcome counts one file leaving the pipeline.
func (m *Workspace) IngestOutcome(ok bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "document"
	}
	m.ingestedFiles.WithLabelValues(outcome).Inc()
}

// Drop counts one drop event; listener is "local", "page" or "duplicate".
func (m *Workspace) Drop(listener string) {
	if m == nil {
		return
	}
	m.drops.WithLabelValues(listener).Inc()
}

// UploadNotice counts one upload notification outcome.
func (m *Workspace) UploadNotice(ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.uploadNotices.WithLabelValues(result).Inc()
}
