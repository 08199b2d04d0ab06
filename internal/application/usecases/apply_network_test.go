package usecases

import (
	"context"
	"errors"
	"os"
	"testing"

	"netapply-agent/internal/domain/entities"
	domainErrors "netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock 구현체들

type MockFileSystem struct {
	mock.Mock
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	args := m.Called(path)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm os.FileMode) error {
	args := m.Called(path, data, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Exists(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *MockFileSystem) MkdirAll(path string, perm os.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFileSystem) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockFileSystem) Rename(oldPath, newPath string) error {
	args := m.Called(oldPath, newPath)
	return args.Error(0)
}

func (m *MockFileSystem) ListFiles(path string) ([]string, error) {
	args := m.Called(path)
	return args.Get(0).([]string), args.Error(1)
}

type MockNetworkRenderer struct {
	mock.Mock
}

func (m *MockNetworkRenderer) Render(doc entities.ConfigurationDocument, hostInterfaces []string) (entities.RenderedState, error) {
	args := m.Called(doc, hostInterfaces)
	return args.Get(0).(entities.RenderedState), args.Error(1)
}

type MockNetworkApplier struct {
	mock.Mock
}

func (m *MockNetworkApplier) Apply(ctx context.Context, rendered entities.RenderedState) error {
	args := m.Called(ctx, rendered)
	return args.Error(0)
}

type MockConnectivityProbe struct {
	mock.Mock
}

func (m *MockConnectivityProbe) Probe(ctx context.Context) entities.ProbeResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.ProbeResult)
}

type MockBackupStore struct {
	mock.Mock
}

func (m *MockBackupStore) Snapshot(ctx context.Context, sourceDir string) (entities.Backup, error) {
	args := m.Called(ctx, sourceDir)
	return args.Get(0).(entities.Backup), args.Error(1)
}

func (m *MockBackupStore) Restore(ctx context.Context, backup entities.Backup) error {
	args := m.Called(ctx, backup)
	return args.Error(0)
}

type MockAgentController struct {
	mock.Mock
}

func (m *MockAgentController) Disable(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNetworkInspector struct {
	mock.Mock
}

func (m *MockNetworkInspector) ListPhysicalInterfaces() ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockNetworkInspector) DefaultGateway() (string, bool, error) {
	args := m.Called()
	return args.String(0), args.Bool(1), args.Error(2)
}

type MockPrompter struct {
	mock.Mock
}

func (m *MockPrompter) Confirm(message string) (bool, error) {
	args := m.Called(message)
	return args.Bool(0), args.Error(1)
}

type MockStateReporter struct {
	mock.Mock
}

func (m *MockStateReporter) Report(ctx context.Context) {
	m.Called(ctx)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// workflowFixture는 유스케이스와 모든 모의 의존성을 묶어 둡니다
type workflowFixture struct {
	useCase       *ApplyNetworkUseCase
	fileSystem    *MockFileSystem
	renderer      *MockNetworkRenderer
	applier       *MockNetworkApplier
	probe         *MockConnectivityProbe
	backupStore   *MockBackupStore
	agent         *MockAgentController
	inspector     *MockNetworkInspector
	prompter      *MockPrompter
	stateReporter *MockStateReporter
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		fileSystem:    new(MockFileSystem),
		renderer:      new(MockNetworkRenderer),
		applier:       new(MockNetworkApplier),
		probe:         new(MockConnectivityProbe),
		backupStore:   new(MockBackupStore),
		agent:         new(MockAgentController),
		inspector:     new(MockNetworkInspector),
		prompter:      new(MockPrompter),
		stateReporter: new(MockStateReporter),
	}
	f.useCase = NewApplyNetworkUseCase(
		services.NewConfigParser(f.fileSystem),
		f.renderer,
		f.applier,
		f.probe,
		f.backupStore,
		f.agent,
		f.inspector,
		f.prompter,
		f.fileSystem,
		f.stateReporter,
		testLogger(),
		"/etc/netplan",
		"01-netcfg.yaml",
		2,
	)
	return f
}

const testConfigPath = "/tmp/interfaces.conf"

const testConfigContent = `[eth0]
dhcp4 = false
address = 192.168.1.50
gateway = 192.168.1.1
dns = 8.8.8.8, 1.1.1.1
`

var testBackup = entities.Backup{
	OriginalPath: "/etc/netplan/01-netcfg.yaml",
	BackupPath:   "/var/lib/netapply/backups/01-netcfg.yaml.backup.20250108150405",
}

var testRendered = entities.RenderedState{
	Path:    "/etc/netplan/90-netapply.yaml",
	Content: []byte("network:\n  version: 2\n"),
}

func probeResult(passed ...bool) entities.ProbeResult {
	var checks []entities.ProbeCheck
	for _, p := range passed {
		checks = append(checks, entities.ProbeCheck{Name: "check", Target: "t", Passed: p})
	}
	return entities.ProbeResult{Checks: checks}
}

// setupThroughRender는 확인 프롬프트 직전까지의 공통 단계를 준비합니다
func (f *workflowFixture) setupThroughRender() {
	f.stateReporter.On("Report", mock.Anything).Return()
	f.backupStore.On("Snapshot", mock.Anything, "/etc/netplan").Return(testBackup, nil)
	f.agent.On("Disable", mock.Anything).Return(nil)
	f.fileSystem.On("Exists", testConfigPath).Return(true)
	f.fileSystem.On("ReadFile", testConfigPath).Return([]byte(testConfigContent), nil)
	f.inspector.On("ListPhysicalInterfaces").Return([]string{"eth0", "eth1"}, nil)
	f.renderer.On("Render", mock.Anything, []string{"eth0", "eth1"}).Return(testRendered, nil)
}

func TestApplyNetworkUseCase_SuccessPromotesCanonical(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, testRendered).Return(nil)
	f.probe.On("Probe", mock.Anything).Return(probeResult(true, true, true)).Once()
	f.fileSystem.On("ListFiles", "/etc/netplan").Return([]string{"50-cloud-init.yaml", "90-netapply.yaml", "README"}, nil)
	f.fileSystem.On("Remove", "/etc/netplan/50-cloud-init.yaml").Return(nil)
	f.fileSystem.On("Rename", "/etc/netplan/90-netapply.yaml", "/etc/netplan/01-netcfg.yaml").Return(nil)

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeApplied, output.Outcome)
	assert.Equal(t, 0, output.Outcome.ExitCode())
	require.NotNil(t, output.Probe)
	assert.Equal(t, 3, output.Probe.Score())
	assert.Nil(t, output.RollbackProbe)
	f.fileSystem.AssertExpectations(t)
	f.backupStore.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
	f.stateReporter.AssertCalled(t, "Report", mock.Anything)
}

func TestApplyNetworkUseCase_UserCancelLeavesSystemUntouched(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(false, nil)

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeUserCancelled, output.Outcome)
	assert.Equal(t, 0, output.Outcome.ExitCode())
	f.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
	f.probe.AssertNotCalled(t, "Probe", mock.Anything)
}

func TestApplyNetworkUseCase_ApplyFailureSkipsRollback(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, testRendered).
		Return(domainErrors.NewNetworkError("netplan apply failed", errors.New("exit status 1")))

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeApplyFailed, output.Outcome)
	assert.Equal(t, 1, output.Outcome.ExitCode())
	// 새 상태가 자리잡지 않았으므로 복원/재검증은 수행되지 않음
	f.backupStore.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
	f.probe.AssertNotCalled(t, "Probe", mock.Anything)
}

func TestApplyNetworkUseCase_ProbeFailureRollsBack(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, testRendered).Return(nil).Once()
	// 첫 검증 1/3 실패 → 롤백 → 두 번째 검증 3/3 통과
	f.probe.On("Probe", mock.Anything).Return(probeResult(true, false, false)).Once()
	f.fileSystem.On("Exists", testRendered.Path).Return(true)
	f.fileSystem.On("Remove", testRendered.Path).Return(nil)
	f.backupStore.On("Restore", mock.Anything, testBackup).Return(nil)
	f.fileSystem.On("ReadFile", testBackup.OriginalPath).Return([]byte("network: {version: 2}"), nil)
	restored := entities.RenderedState{Path: testBackup.OriginalPath, Content: []byte("network: {version: 2}")}
	f.applier.On("Apply", mock.Anything, restored).Return(nil).Once()
	f.probe.On("Probe", mock.Anything).Return(probeResult(true, true, true)).Once()

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeRolledBack, output.Outcome)
	assert.Equal(t, 1, output.Outcome.ExitCode())
	require.NotNil(t, output.RollbackProbe)
	assert.True(t, output.RollbackProbe.Passed(2))
	f.applier.AssertExpectations(t)
	f.fileSystem.AssertCalled(t, "Remove", testRendered.Path)
}

func TestApplyNetworkUseCase_RollbackProbeFailureIsUnreachable(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, mock.Anything).Return(nil)
	// 두 번의 검증 모두 실패
	f.probe.On("Probe", mock.Anything).Return(probeResult(false, false, false))
	f.fileSystem.On("Exists", testRendered.Path).Return(true)
	f.fileSystem.On("Remove", testRendered.Path).Return(nil)
	f.backupStore.On("Restore", mock.Anything, testBackup).Return(nil)
	f.fileSystem.On("ReadFile", testBackup.OriginalPath).Return([]byte("network: {}"), nil)

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeRolledBackUnreachable, output.Outcome)
	assert.Equal(t, 1, output.Outcome.ExitCode())
}

func TestApplyNetworkUseCase_ForceKeepsNewConfigOnProbeFailure(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, testRendered).Return(nil)
	f.probe.On("Probe", mock.Anything).Return(probeResult(false, false, true)).Once()

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath, Force: true})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeAppliedForced, output.Outcome)
	assert.Equal(t, 1, output.Outcome.ExitCode())
	f.backupStore.AssertNotCalled(t, "Restore", mock.Anything, mock.Anything)
}

func TestApplyNetworkUseCase_VanishedBackupStillReapplies(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, mock.Anything).Return(nil)
	f.probe.On("Probe", mock.Anything).Return(probeResult(false, false, false)).Once()
	f.fileSystem.On("Exists", testRendered.Path).Return(true)
	f.fileSystem.On("Remove", testRendered.Path).Return(nil)
	// 백업 소실: 저장소가 기본 설정으로 대체했음을 RestoreFailed로 알림
	f.backupStore.On("Restore", mock.Anything, testBackup).
		Return(domainErrors.NewRestoreError("backup file vanished", errors.New("no such file")))
	f.fileSystem.On("ReadFile", testBackup.OriginalPath).Return([]byte("network: {version: 2}"), nil)
	f.probe.On("Probe", mock.Anything).Return(probeResult(true, true)).Once()

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	// 복원 실패에도 워크플로는 재적용과 재검증까지 진행
	assert.Equal(t, entities.OutcomeRolledBack, output.Outcome)
	f.applier.AssertNumberOfCalls(t, "Apply", 2)
}

func TestApplyNetworkUseCase_UnreadableRestoredConfigSkipsReapply(t *testing.T) {
	f := newWorkflowFixture()
	f.setupThroughRender()
	f.prompter.On("Confirm", mock.Anything).Return(true, nil)
	f.applier.On("Apply", mock.Anything, testRendered).Return(nil).Once()
	f.probe.On("Probe", mock.Anything).Return(probeResult(false, false, false)).Once()
	f.fileSystem.On("Exists", testRendered.Path).Return(true)
	f.fileSystem.On("Remove", testRendered.Path).Return(nil)
	// 복원과 복원본 읽기가 모두 실패하는 이중 장애
	f.backupStore.On("Restore", mock.Anything, testBackup).
		Return(domainErrors.NewSystemError("fallback write failed", errors.New("read-only file system")))
	f.fileSystem.On("ReadFile", testBackup.OriginalPath).
		Return([]byte(nil), errors.New("no such file"))
	f.probe.On("Probe", mock.Anything).Return(probeResult(false, false)).Once()

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeRolledBackUnreachable, output.Outcome)
	// 빈 문서로 표준 설정을 덮어쓰지 않도록 재적용은 생략됨
	f.applier.AssertNumberOfCalls(t, "Apply", 1)
}

func TestApplyNetworkUseCase_SnapshotFailureAborts(t *testing.T) {
	f := newWorkflowFixture()
	f.stateReporter.On("Report", mock.Anything).Return()
	f.backupStore.On("Snapshot", mock.Anything, "/etc/netplan").
		Return(entities.Backup{}, domainErrors.NewSystemError("backup write failed", errors.New("disk full")))

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.Error(t, err)
	assert.Nil(t, output)
	f.agent.AssertNotCalled(t, "Disable", mock.Anything)
	f.applier.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestApplyNetworkUseCase_InvalidConfigAborts(t *testing.T) {
	f := newWorkflowFixture()
	f.stateReporter.On("Report", mock.Anything).Return()
	f.backupStore.On("Snapshot", mock.Anything, "/etc/netplan").Return(testBackup, nil)
	f.agent.On("Disable", mock.Anything).Return(nil)
	f.fileSystem.On("Exists", testConfigPath).Return(true)
	f.fileSystem.On("ReadFile", testConfigPath).
		Return([]byte("[eth0]\ndhcp4 = false\naddress = not-an-ip\n"), nil)

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.Error(t, err)
	assert.True(t, domainErrors.IsValidationError(err))
	assert.Nil(t, output)
	f.prompter.AssertNotCalled(t, "Confirm", mock.Anything)
}

func TestApplyNetworkUseCase_AgentDisableFailureIsNonFatal(t *testing.T) {
	f := newWorkflowFixture()
	f.stateReporter.On("Report", mock.Anything).Return()
	f.backupStore.On("Snapshot", mock.Anything, "/etc/netplan").Return(testBackup, nil)
	f.agent.On("Disable", mock.Anything).Return(errors.New("unit not found"))
	f.fileSystem.On("Exists", testConfigPath).Return(true)
	f.fileSystem.On("ReadFile", testConfigPath).Return([]byte(testConfigContent), nil)
	f.inspector.On("ListPhysicalInterfaces").Return([]string{"eth0"}, nil)
	f.renderer.On("Render", mock.Anything, []string{"eth0"}).Return(testRendered, nil)
	f.prompter.On("Confirm", mock.Anything).Return(false, nil)

	output, err := f.useCase.Execute(context.Background(), ApplyNetworkInput{ConfigPath: testConfigPath})

	require.NoError(t, err)
	assert.Equal(t, entities.OutcomeUserCancelled, output.Outcome)
}
