package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics contadores del motor de inventario. Un valor nil es válido y no registra nada.
type InventoryMetrics struct {
	capacityDeltas   *prometheus.CounterVec
	capacityRejected *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	splits           prometheus.Counter
	scanUnmatched    *prometheus.CounterVec
}

// NewInventoryMetrics registra las métricas en el registerer dado.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	m := &InventoryMetrics{
		capacityDeltas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capacity_deltas_total",
			Help: "Capacity deltas applied to storage locations.",
		}, []string{"direction"}),
		capacityRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "capacity_deltas_rejected_total",
			Help: "Capacity deltas rejected by bounds checks.",
		}, []string{"reason"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lot_transitions_total",
			Help: "Lot status transitions committed.",
		}, []string{"from", "to"}),
		splits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lot_splits_total",
			Help: "Lots split into two tracked lots.",
		}),
		scanUnmatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scan_unmatched_codes_total",
			Help: "Scanned codes that did not match a lot in the workflow.",
		}, []string{"workflow"}),
	}
	reg.MustRegister(m.capacityDeltas, m.capacityRejected, m.transitions, m.splits, m.scanUnmatched)
	return m
}

// IncCapacityDelta cuenta un delta aplicado.
func (m *InventoryMetrics) IncCapacityDelta(direction string) {
	if m == nil || m.capacityDeltas == nil {
		return
	}
	m.capacityDeltas.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncCapacityRejected cuenta un delta rechazado (exceeded, underflow).
func (m *InventoryMetrics) IncCapacityRejected(reason string) {
	if m == nil || m.capacityRejected == nil {
		return
	}
	m.capacityRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncTransition cuenta una transición confirmada.
func (m *InventoryMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// IncSplit cuenta un split confirmado.
func (m *InventoryMetrics) IncSplit() {
	if m == nil || m.splits == nil {
		return
	}
	m.splits.Inc()
}

// AddScanUnmatched suma códigos no encontrados en un escaneo.
func (m *InventoryMetrics) AddScanUnmatched(workflow string, n int) {
	if m == nil || m.scanUnmatched == nil || n <= 0 {
		return
	}
	m.scanUnmatched.WithLabelValues(normalizeLabel(workflow)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
