// internal/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"

	"github.com/tamzrod/atem-replicator/internal/atem"
)

// NewRegistry creates a private registry with the runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics are the replicator metrics.
type AppMetrics struct {
	Datagrams      *prometheus.CounterVec // labels: device
	BytesReceived  *prometheus.CounterVec // labels: device
	ReceiveErrors  *prometheus.CounterVec // labels: device
	TagsDecoded    *prometheus.CounterVec // labels: device, tag
	DecodeFailures *prometheus.CounterVec // labels: device, tag
	BytesSent      *prometheus.CounterVec // labels: device
	SendErrors     *prometheus.CounterVec // labels: device

	DeviceHealth *prometheus.GaugeVec   // labels: device; status health code
	MirrorWrites *prometheus.CounterVec // labels: kind, endpoint, result=ok|error
	BreakerState *prometheus.GaugeVec   // labels: endpoint; 0 closed, 1 half-open, 2 open
}

// NewAppMetrics registers and returns the replicator metrics.
func NewAppMetrics(reg prometheus.Registerer) *AppMetrics {
	device := []string{"device"}

	m := &AppMetrics{
		Datagrams: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_datagrams_received_total",
			Help: "Datagrams received from the switcher.",
		}, device),
		BytesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_bytes_received_total",
			Help: "Bytes received from the switcher.",
		}, device),
		ReceiveErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_receive_errors_total",
			Help: "Receive faults absorbed as no data.",
		}, device),
		TagsDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_tags_decoded_total",
			Help: "Recorder status tags recognised, by tag.",
		}, []string{"device", "tag"}),
		DecodeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_decode_failures_total",
			Help: "Status windows skipped as malformed, by tag.",
		}, []string{"device", "tag"}),
		BytesSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_bytes_sent_total",
			Help: "Bytes sent to the switcher.",
		}, device),
		SendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atem_send_errors_total",
			Help: "Send faults.",
		}, device),
		DeviceHealth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "replicator_device_health",
			Help: "Device health code as published in the health block.",
		}, device),
		MirrorWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "replicator_register_writes_total",
			Help: "Register block writes by kind, endpoint and result.",
		}, []string{"kind", "endpoint", "result"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "replicator_endpoint_breaker_state",
			Help: "Endpoint circuit breaker state: 0 closed, 1 half-open, 2 open.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(
		m.Datagrams, m.BytesReceived, m.ReceiveErrors, m.TagsDecoded, m.DecodeFailures,
		m.BytesSent, m.SendErrors, m.DeviceHealth, m.MirrorWrites, m.BreakerState,
	)
	return m
}

// Observer returns an atem.Observer that counts into the device's series.
func (m *AppMetrics) Observer(deviceID string) atem.Observer {
	return &deviceObserver{
		datagrams:     m.Datagrams.WithLabelValues(deviceID),
		bytesReceived: m.BytesReceived.WithLabelValues(deviceID),
		receiveErrors: m.ReceiveErrors.WithLabelValues(deviceID),
		tags:          m.TagsDecoded.MustCurryWith(prometheus.Labels{"device": deviceID}),
		failures:      m.DecodeFailures.MustCurryWith(prometheus.Labels{"device": deviceID}),
		bytesSent:     m.BytesSent.WithLabelValues(deviceID),
		sendErrors:    m.SendErrors.WithLabelValues(deviceID),
	}
}

// ObserveWrite counts one register write. Its signature matches writer.WriteHook.
func (m *AppMetrics) ObserveWrite(kind, endpoint string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.MirrorWrites.WithLabelValues(kind, endpoint, result).Inc()
}

// ObserveBreaker records an endpoint breaker transition.
func (m *AppMetrics) ObserveBreaker(endpoint string, to gobreaker.State) {
	m.BreakerState.WithLabelValues(endpoint).Set(float64(to))
}

// SetHealth publishes a device health code.
func (m *AppMetrics) SetHealth(deviceID string, health uint16) {
	m.DeviceHealth.WithLabelValues(deviceID).Set(float64(health))
}

type deviceObserver struct {
	datagrams     prometheus.Counter
	bytesReceived prometheus.Counter
	receiveErrors prometheus.Counter
	tags          *prometheus.CounterVec
	failures      *prometheus.CounterVec
	bytesSent     prometheus.Counter
	sendErrors    prometheus.Counter
}

func (o *deviceObserver) DatagramReceived(n int) {
	o.datagrams.Inc()
	o.bytesReceived.Add(float64(n))
}

func (o *deviceObserver) ReceiveFailed()          { o.receiveErrors.Inc() }
func (o *deviceObserver) TagDecoded(tag string)   { o.tags.WithLabelValues(tag).Inc() }
func (o *deviceObserver) DecodeFailed(tag string) { o.failures.WithLabelValues(tag).Inc() }
func (o *deviceObserver) Sent(n int)              { o.bytesSent.Add(float64(n)) }
func (o *deviceObserver) SendFailed()             { o.sendErrors.Inc() }
