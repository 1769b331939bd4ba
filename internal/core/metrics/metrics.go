package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// 分发结果标签
const (
	ResultHandled   = "handled"
	ResultUnhandled = "unhandled"
	ResultControl   = "control"
	ResultRejected  = "rejected"
)

// 出站帧类型标签
const (
	SentRegister   = "register"
	SentUnregister = "unregister"
	SentPayload    = "payload"
)

// Metrics chanmux 指标集合
type Metrics struct {
	framesDispatched *prometheus.CounterVec
	framesSent       *prometheus.CounterVec
	listenerFailures *prometheus.CounterVec
	sessionsActive   prometheus.Gauge

	bytesIn  prometheus.Counter
	bytesOut prometheus.Counter

	tagViews   *prometheus.CounterVec
	tagReloads prometheus.Counter
}

// New 创建指标并注册到 reg
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		framesDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "frames_dispatched_total",
			Help:      "Inbound frames by dispatch result.",
		}, []string{"result"}),
		framesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "frames_sent_total",
			Help:      "Outbound frames by kind.",
		}, []string{"kind"}),
		listenerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "listener_failures_total",
			Help:      "Lifecycle listener failures by event.",
		}, []string{"event"}),
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      "sessions_active",
			Help:      "Open sessions.",
		}),
		bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "bytes_in_total",
			Help:      "Inbound payload bytes.",
		}),
		bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transport",
			Name:      "bytes_out_total",
			Help:      "Outbound payload bytes.",
		}),
		tagViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tag",
			Name:      "view_lookups_total",
			Help:      "Tag view lookups by cache result.",
		}, []string{"result"}),
		tagReloads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tag",
			Name:      "reloads_total",
			Help:      "Full tag dataset reloads.",
		}),
	}

	collectors := []prometheus.Collector{
		m.framesDispatched, m.framesSent, m.listenerFailures, m.sessionsActive,
		m.bytesIn, m.bytesOut, m.tagViews, m.tagReloads,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveDispatch 记录一次入站帧分发
func (m *Metrics) ObserveDispatch(result string, size int) {
	if m == nil {
		return
	}
	m.framesDispatched.WithLabelValues(result).Inc()
	m.bytesIn.Add(float64(size))
}

// ObserveSent 记录一次出站帧
func (m *Metrics) ObserveSent(kind string, size int) {
	if m == nil {
		return
	}
	m.framesSent.WithLabelValues(kind).Inc()
	m.bytesOut.Add(float64(size))
}

// ObserveListenerFailure 记录一次监听器失败
func (m *Metrics) ObserveListenerFailure(event string) {
	if m == nil {
		return
	}
	m.listenerFailures.WithLabelValues(event).Inc()
}

// SessionOpened 活跃会话 +1
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

// SessionClosed 活跃会话 -1
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// ObserveTagView 记录一次标签视图读取
func (m *Metrics) ObserveTagView(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.tagViews.WithLabelValues("hit").Inc()
		return
	}
	m.tagViews.WithLabelValues("recompute").Inc()
}

// ObserveTagReload 记录一次完整重新加载
func (m *Metrics) ObserveTagReload() {
	if m == nil {
		return
	}
	m.tagReloads.Inc()
}
