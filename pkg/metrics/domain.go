package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Settlement outcomes.
const (
	OutcomeSettled      = "settled"
	OutcomeReplayed     = "replayed"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeNoWallet     = "wallet_missing"
	OutcomeFailed       = "failed"
)

// DomainMetrics counts marketplace business events. A nil receiver is a no-op
// so services can run without a registry in tests.
type DomainMetrics struct {
	settlements *prometheus.CounterVec
	bids        *prometheus.CounterVec
	redemptions prometheus.Counter
	orders      *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "settlements_total",
		Help:      "Wallet settlement attempts by outcome.",
	}, []string{"outcome"})
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bids_total",
		Help:      "Bid lifecycle events.",
	}, []string{"event"})
	redemptions := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discount_redemptions_total",
		Help:      "Discount codes redeemed at checkout.",
	})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_transitions_total",
		Help:      "Orders entering each status.",
	}, []string{"status"})
	reg.MustRegister(settlements, bids, redemptions, orders)
	return &DomainMetrics{
		settlements: settlements,
		bids:        bids,
		redemptions: redemptions,
		orders:      orders,
	}
}

func (m *DomainMetrics) Settlement(outcome string) {
	if m == nil || m.settlements == nil {
		return
	}
	m.settlements.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *DomainMetrics) Bid(event string) {
	if m == nil || m.bids == nil {
		return
	}
	m.bids.WithLabelValues(normalizeLabel(event)).Inc()
}

func (m *DomainMetrics) Redemption() {
	if m == nil || m.redemptions == nil {
		return
	}
	m.redemptions.Inc()
}

func (m *DomainMetrics) OrderStatus(status string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(status)).Inc()
}
