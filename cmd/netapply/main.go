package main

import (
	"context"
	"os"
	"time"

	"netapply-agent/internal/application/usecases"
	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/infrastructure/config"
	"netapply-agent/internal/infrastructure/container"
	"netapply-agent/internal/infrastructure/metrics"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

func main() {
	os.Exit(run())
}

func run() int {
	// 로거 초기화
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// LOG_LEVEL 환경 변수 설정
	logLevelStr := os.Getenv("LOG_LEVEL")
	if logLevelStr == "" {
		logLevelStr = constants.DefaultLogLevel
	}
	logLevel, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		logger.WithError(err).Warnf("Unknown LOG_LEVEL value: %s. Using default Info level.", logLevelStr)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	exitCode := 0
	var force bool

	rootCmd := &cobra.Command{
		Use:          "netapply <config-file>",
		Short:        "Apply a declarative network configuration with automatic rollback",
		Long:         "netapply renders an interface configuration file into netplan, applies it, verifies the host stays reachable, and rolls back to the previous configuration when verification fails.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runWorkflow(logger, args[0], force)
			if err != nil {
				return err
			}
			exitCode = code
			return nil
		},
	}
	rootCmd.Flags().BoolVarP(&force, "force", "f", false, "keep the new configuration even when the connectivity probe fails")

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("netapply failed")
		return 1
	}
	return exitCode
}

// runWorkflow는 단일 적용 워크플로를 수행하고 종료 코드를 반환합니다
func runWorkflow(logger *logrus.Logger, configPath string, force bool) (int, error) {
	// 설정 로드
	configLoader := config.NewEnvironmentConfigLoader()
	cfg, err := configLoader.Load()
	if err != nil {
		return 1, err
	}

	// 의존성 주입 컨테이너 생성
	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		return 1, err
	}
	defer func() {
		if closeErr := appContainer.Close(); closeErr != nil {
			logger.WithError(closeErr).Error("Failed to cleanup container")
		}
	}()

	// 관리자 권한 확인 — 부족하면 즉시 종료
	if !appContainer.GetPrivilegeChecker().IsPrivileged() {
		return 1, errors.NewPermissionError("netapply requires administrative privilege (run as root)")
	}

	// netplan 지원 OS인지 확인
	osType, err := appContainer.GetOSDetector().DetectOS()
	if err != nil {
		return 1, err
	}
	logger.WithField("os_type", osType).Info("Operating system detected")

	hostname, _ := os.Hostname()
	metrics.SetAgentInfo(version, hostname)

	ctx := context.Background()
	startedAt := time.Now()

	output, err := appContainer.GetApplyNetworkUseCase().Execute(ctx, usecases.ApplyNetworkInput{
		ConfigPath: configPath,
		Force:      force,
	})
	if err != nil {
		return 1, err
	}

	finishedAt := time.Now()
	reportRun(ctx, logger, appContainer, cfg, hostname, configPath, force, output, startedAt, finishedAt)

	logger.WithFields(logrus.Fields{
		"outcome":   output.Outcome.String(),
		"exit_code": output.Outcome.ExitCode(),
	}).Info("Workflow finished")

	return output.Outcome.ExitCode(), nil
}

// reportRun은 메트릭과 실행 이력을 기록합니다 (실패는 경고로만 처리)
func reportRun(
	ctx context.Context,
	logger *logrus.Logger,
	appContainer *container.Container,
	cfg *config.Config,
	hostname, configPath string,
	force bool,
	output *usecases.ApplyNetworkOutput,
	startedAt, finishedAt time.Time,
) {
	metrics.RecordRunOutcome(output.Outcome.String(), finishedAt.Sub(startedAt).Seconds())

	probeScore, probeTotal := 0, 0
	if output.Probe != nil {
		probeScore = output.Probe.Score()
		probeTotal = len(output.Probe.Checks)
		metrics.SetProbeScore(probeScore)
		for _, check := range output.Probe.Checks {
			metrics.RecordProbeCheck(check.Name, check.Passed)
		}
	}
	if output.RollbackProbe != nil {
		metrics.RecordRollback()
		for _, check := range output.RollbackProbe.Checks {
			metrics.RecordProbeCheck(check.Name, check.Passed)
		}
	}

	if cfg.Metrics.Enabled() {
		if err := metrics.PushToGateway(cfg.Metrics.PushgatewayURL, hostname); err != nil {
			logger.WithError(err).Warn("Failed to push metrics")
		}
	}

	record := entities.RunRecord{
		NodeName:   hostname,
		ConfigPath: configPath,
		Outcome:    output.Outcome,
		ProbeScore: probeScore,
		ProbeTotal: probeTotal,
		Forced:     force,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if err := appContainer.GetRunRecorder().RecordRun(ctx, record); err != nil {
		logger.WithError(err).Warn("Failed to record run history")
	}
}
