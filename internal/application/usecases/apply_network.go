package usecases

import (
	"context"
	"path/filepath"
	"strings"

	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"
	"netapply-agent/internal/domain/services"

	"github.com/sirupsen/logrus"
)

// ApplyNetworkUseCase는 적용→검증→(롤백) 워크플로를 수행하는 유스케이스입니다.
// 상태 전이: Backup → DisableCompetingAgent → Parse → Render →
// AwaitUserConfirmation → Apply → Probe → {Success | Rollback → RollbackProbe} → End
type ApplyNetworkUseCase struct {
	parser          *services.ConfigParser
	renderer        interfaces.NetworkRenderer
	applier         interfaces.NetworkApplier
	probe           interfaces.ConnectivityProbe
	backupStore     interfaces.BackupStore
	agentController interfaces.AgentController
	inspector       interfaces.NetworkInspector
	prompter        interfaces.Prompter
	fileSystem      interfaces.FileSystem
	stateReporter   interfaces.StateReporter
	logger          *logrus.Logger

	configDir      string
	canonicalFile  string
	probeThreshold int
}

// NewApplyNetworkUseCase는 새로운 ApplyNetworkUseCase를 생성합니다
func NewApplyNetworkUseCase(
	parser *services.ConfigParser,
	renderer interfaces.NetworkRenderer,
	applier interfaces.NetworkApplier,
	probe interfaces.ConnectivityProbe,
	backupStore interfaces.BackupStore,
	agentController interfaces.AgentController,
	inspector interfaces.NetworkInspector,
	prompter interfaces.Prompter,
	fs interfaces.FileSystem,
	stateReporter interfaces.StateReporter,
	logger *logrus.Logger,
	configDir string,
	canonicalFile string,
	probeThreshold int,
) *ApplyNetworkUseCase {
	return &ApplyNetworkUseCase{
		parser:          parser,
		renderer:        renderer,
		applier:         applier,
		probe:           probe,
		backupStore:     backupStore,
		agentController: agentController,
		inspector:       inspector,
		prompter:        prompter,
		fileSystem:      fs,
		stateReporter:   stateReporter,
		logger:          logger,
		configDir:       configDir,
		canonicalFile:   canonicalFile,
		probeThreshold:  probeThreshold,
	}
}

// ApplyNetworkInput은 유스케이스의 입력 파라미터입니다
type ApplyNetworkInput struct {
	ConfigPath string
	Force      bool
}

// ApplyNetworkOutput은 유스케이스의 출력 결과입니다
type ApplyNetworkOutput struct {
	Outcome       entities.WorkflowOutcome
	Probe         *entities.ProbeResult
	RollbackProbe *entities.ProbeResult
	Rendered      entities.RenderedState
}

// runContext는 단일 실행 동안만 유지되는 상태입니다.
// 실행 종료와 함께 폐기되며, 프로세스 전역 상태는 남기지 않습니다.
type runContext struct {
	backup   entities.Backup
	rendered entities.RenderedState
}

// Execute는 워크플로를 처음부터 종료 상태까지 수행합니다.
// 변경 전 단계의 에러만 error로 반환하며, Apply 이후의 모든 경로는
// WorkflowOutcome으로 표현됩니다.
func (uc *ApplyNetworkUseCase) Execute(ctx context.Context, input ApplyNetworkInput) (*ApplyNetworkOutput, error) {
	// 어떤 결과로 끝나든 운영자에게 실제 상태를 보여줍니다
	defer uc.stateReporter.Report(ctx)

	run := &runContext{}

	// 1. 기존 설정 백업
	backup, err := uc.backupStore.Snapshot(ctx, uc.configDir)
	if err != nil {
		return nil, err
	}
	run.backup = backup

	// 2. 경쟁 에이전트 비활성화 (실패는 경고)
	if err := uc.agentController.Disable(ctx); err != nil {
		uc.logger.WithError(err).Warn("경쟁 네트워크 에이전트 비활성화 실패")
	}

	// 3. 설정 파일 파싱 및 검증
	doc, err := uc.parser.Parse(input.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, errors.NewValidationError("인터페이스 설정 유효성 검증 실패", err)
	}

	// 4. 호스트 인터페이스 조회 및 렌더링
	hostInterfaces, err := uc.inspector.ListPhysicalInterfaces()
	if err != nil {
		return nil, err
	}

	rendered, err := uc.renderer.Render(doc, hostInterfaces)
	if err != nil {
		return nil, err
	}
	run.rendered = rendered

	uc.logger.WithFields(logrus.Fields{
		"config_path":     input.ConfigPath,
		"host_interfaces": hostInterfaces,
		"target_path":     rendered.Path,
	}).Info("새 네트워크 설정 렌더링 완료")

	output := &ApplyNetworkOutput{Rendered: rendered}

	// 5. 사용자 확인 (유일한 취소 지점 — Apply 이후에는 종료 상태까지 진행)
	confirmed, err := uc.prompter.Confirm("새 네트워크 설정을 적용하시겠습니까?")
	if err != nil {
		return nil, errors.NewSystemError("사용자 확인 입력 읽기 실패", err)
	}
	if !confirmed {
		uc.logger.Info("사용자가 적용을 취소함 — 변경 없음")
		output.Outcome = entities.OutcomeUserCancelled
		return output, nil
	}

	// 6. 적용 — 실패 시 롤백 없음 (새 상태가 자리잡지 않았으므로)
	if err := uc.applier.Apply(ctx, rendered); err != nil {
		uc.logger.WithError(err).Error("네트워크 설정 적용 실패")
		output.Outcome = entities.OutcomeApplyFailed
		return output, nil
	}

	// 7. 연결성 검증
	result := uc.probe.Probe(ctx)
	output.Probe = &result

	if result.Passed(uc.probeThreshold) {
		uc.promoteToCanonical(run)
		uc.logger.WithFields(logrus.Fields{
			"score": result.Score(),
			"total": len(result.Checks),
		}).Info("새 네트워크 설정 적용 및 검증 완료")
		output.Outcome = entities.OutcomeApplied
		return output, nil
	}

	// 8. 검증 실패: force 모드면 새 설정 유지
	if input.Force {
		uc.logger.WithFields(logrus.Fields{
			"score": result.Score(),
			"total": len(result.Checks),
		}).Warn("연결성 검증 실패했으나 force 모드로 새 설정 유지")
		output.Outcome = entities.OutcomeAppliedForced
		return output, nil
	}

	// 9. 롤백 및 재검증
	uc.logger.WithFields(logrus.Fields{
		"score": result.Score(),
		"total": len(result.Checks),
	}).Warn("연결성 검증 실패, 이전 설정으로 롤백 시작")

	second := uc.rollback(ctx, run)
	output.RollbackProbe = &second

	if second.Passed(uc.probeThreshold) {
		output.Outcome = entities.OutcomeRolledBack
	} else {
		output.Outcome = entities.OutcomeRolledBackUnreachable
	}
	return output, nil
}

// promoteToCanonical은 검증된 새 설정을 유일한 표준 설정으로 승격합니다.
// 대상 디렉토리의 다른 선언적 문서를 제거하고 새 문서를 표준 경로로 이동합니다.
func (uc *ApplyNetworkUseCase) promoteToCanonical(run *runContext) {
	files, err := uc.fileSystem.ListFiles(uc.configDir)
	if err != nil {
		uc.logger.WithError(err).Warn("설정 디렉토리 정리 실패")
		return
	}

	newBase := filepath.Base(run.rendered.Path)
	for _, file := range files {
		if file == newBase || !isDeclarativeFile(file) {
			continue
		}
		if err := uc.fileSystem.Remove(filepath.Join(uc.configDir, file)); err != nil {
			uc.logger.WithError(err).WithField("file", file).Warn("이전 설정 파일 제거 실패")
		}
	}

	canonicalPath := filepath.Join(uc.configDir, uc.canonicalFile)
	if err := uc.fileSystem.Rename(run.rendered.Path, canonicalPath); err != nil {
		uc.logger.WithError(err).Warn("표준 설정 경로로 이동 실패 — 스테이징 이름으로 유지됨")
		return
	}

	uc.logger.WithField("canonical_path", canonicalPath).Info("새 설정을 표준 설정으로 승격 완료")
}

// rollback은 백업을 복원하고 재적용한 뒤 두 번째 검증을 수행합니다
func (uc *ApplyNetworkUseCase) rollback(ctx context.Context, run *runContext) entities.ProbeResult {
	// 실패한 새 설정 제거 (복원된 설정이 유일한 문서가 되도록)
	if run.rendered.Path != run.backup.OriginalPath && uc.fileSystem.Exists(run.rendered.Path) {
		if err := uc.fileSystem.Remove(run.rendered.Path); err != nil {
			uc.logger.WithError(err).Warn("실패한 새 설정 파일 제거 실패")
		}
	}

	if err := uc.backupStore.Restore(ctx, run.backup); err != nil {
		// 백업 소실은 경고 — 저장소가 이미 안전한 기본 설정으로 대체함
		if errors.IsRestoreError(err) {
			uc.logger.WithError(err).Warn("백업 복원 실패, 기본 설정으로 대체됨")
		} else {
			uc.logger.WithError(err).Error("백업 복원 중 에러 발생")
		}
	}

	content, err := uc.fileSystem.ReadFile(run.backup.OriginalPath)
	if err != nil {
		// 복원된 문서를 읽을 수 없으면 재적용을 건너뜁니다.
		// 빈 문서를 적용하는 것은 마지막으로 기록된 파일을 그대로 두는 것보다 나쁩니다.
		uc.logger.WithError(err).Error("복원된 설정 읽기 실패 — 재적용 생략")
	} else {
		restored := entities.RenderedState{
			Path:    run.backup.OriginalPath,
			Content: content,
		}
		if err := uc.applier.Apply(ctx, restored); err != nil {
			uc.logger.WithError(err).Error("복원된 설정 적용 실패")
		}
	}

	return uc.probe.Probe(ctx)
}

// isDeclarativeFile은 netplan이 읽는 선언적 문서인지 확인합니다
func isDeclarativeFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
