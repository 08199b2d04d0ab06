package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// 실행 결과 관련 메트릭
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netapply_runs_total",
			Help: "Total number of apply workflow runs by outcome",
		},
		[]string{"outcome"}, // applied, applied_forced, rolled_back, ...
	)

	WorkflowDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netapply_workflow_duration_seconds",
			Help:    "Time spent in a full apply workflow run",
			Buckets: prometheus.DefBuckets,
		},
	)

	// 연결성 검사 관련 메트릭
	ProbeChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "netapply_probe_checks_total",
			Help: "Total number of connectivity probe checks by result",
		},
		[]string{"check", "result"}, // dns_server/external_host/default_gateway, pass/fail
	)

	ProbeScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "netapply_probe_score",
			Help: "Number of passed checks in the most recent probe",
		},
	)

	// 롤백 관련 메트릭
	RollbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "netapply_rollbacks_total",
			Help: "Total number of rollbacks performed",
		},
	)

	// 시스템 정보
	AgentInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "netapply_agent_info",
			Help: "Agent information",
		},
		[]string{"version", "node_name"},
	)
)

// RecordRunOutcome은 실행 결과와 소요 시간을 기록합니다
func RecordRunOutcome(outcome string, duration float64) {
	RunsTotal.WithLabelValues(outcome).Inc()
	WorkflowDuration.Observe(duration)
}

// RecordProbeCheck는 단일 연결성 검사 결과를 기록합니다
func RecordProbeCheck(check string, passed bool) {
	result := "fail"
	if passed {
		result = "pass"
	}
	ProbeChecks.WithLabelValues(check, result).Inc()
}

// RecordRollback은 롤백 수행을 기록합니다
func RecordRollback() {
	RollbacksTotal.Inc()
}

// SetProbeScore는 최근 검사의 성공 수를 설정합니다
func SetProbeScore(score int) {
	ProbeScore.Set(float64(score))
}

// SetAgentInfo는 에이전트 정보를 설정합니다
func SetAgentInfo(version, nodeName string) {
	AgentInfo.WithLabelValues(version, nodeName).Set(1)
}

// PushToGateway는 단발성 실행의 메트릭을 Pushgateway로 전송합니다.
// 전송 실패는 워크플로 결과에 영향을 주지 않습니다.
func PushToGateway(url, nodeName string) error {
	return push.New(url, "netapply").
		Grouping("instance", nodeName).
		Gatherer(prometheus.DefaultGatherer).
		Push()
}
