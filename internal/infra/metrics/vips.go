package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		vouchersIssuedTotal,
		vouchersRedeemedTotal,
		voucherRejectionsTotal,
		vipsActivatedTotal,
		vipsExpiredTotal,
		vipsRemovedTotal,
		remindersSentTotal,
		vipsActive,
		sweepDuration,
	)
}

var (
	vouchersIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_vouchers_issued_total",
			Help: "Total number of vouchers issued.",
		},
	)

	vouchersRedeemedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vip_vouchers_redeemed_total",
			Help: "Total number of vouchers successfully redeemed.",
		},
	)

	voucherRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vip_voucher_rejections_total",
			Help: "Voucher redemption rejections by reason.",
		},
		[]string{"reason"},
	)

	vipsActivatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vips_activated_total",
			Help: "VIP activations and stack extensions by mode.",
		},
		[]string{"mode"}, // 'voucher', 'admin'
	)

	vipsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vips_expired_total",
			Help: "Total number of entitlements expired by the sweep.",
		},
	)

	vipsRemovedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vips_removed_total",
			Help: "Total number of entitlements removed by an admin.",
		},
	)

	remindersSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vip_reminders_sent_total",
			Help: "Expiry reminders emitted by window.",
		},
		[]string{"window"}, // '7d', '1d', '1h'
	)

	vipsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vips_active",
			Help: "Current number of players with an active entitlement.",
		},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vip_sweep_duration_seconds",
			Help:    "Duration of one full sweep (reminder + expiry pass).",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncVouchersIssued() { vouchersIssuedTotal.Inc() }

func IncVouchersRedeemed() { vouchersRedeemedTotal.Inc() }

func IncVoucherRejections(reason string) { voucherRejectionsTotal.WithLabelValues(reason).Inc() }

func IncVipsActivated(mode string) { vipsActivatedTotal.WithLabelValues(mode).Inc() }

func IncVipsExpired(count int) { vipsExpiredTotal.Add(float64(count)) }

func IncVipsRemoved() { vipsRemovedTotal.Inc() }

func IncRemindersSent(window string) { remindersSentTotal.WithLabelValues(window).Inc() }

func SetVipsActive(count int) { vipsActive.Set(float64(count)) }

func ObserveSweepDuration(d time.Duration) { sweepDuration.Observe(d.Seconds()) }
