package network

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"netapply-agent/internal/domain/constants"
	"netapply-agent/internal/domain/entities"
	"netapply-agent/internal/domain/errors"
	"netapply-agent/internal/domain/interfaces"

	"gopkg.in/yaml.v3"
)

// 물리 NIC 네이밍 프리픽스 (eth*, en* 계열만 관리 대상)
var physicalNICPrefixes = []string{"eth", "en"}

// netplanDocument는 netplan v2 선언적 문서의 최상위 구조입니다
type netplanDocument struct {
	Network netplanNetwork `yaml:"network"`
}

type netplanNetwork struct {
	Version   int                        `yaml:"version"`
	Ethernets map[string]netplanEthernet `yaml:"ethernets"`
}

type netplanEthernet struct {
	DHCP4       bool                `yaml:"dhcp4"`
	Optional    bool                `yaml:"optional,omitempty"`
	Addresses   []string            `yaml:"addresses,omitempty"`
	Routes      []netplanRoute      `yaml:"routes,omitempty"`
	Nameservers *netplanNameservers `yaml:"nameservers,omitempty"`
}

type netplanRoute struct {
	To  string `yaml:"to"`
	Via string `yaml:"via"`
}

type netplanNameservers struct {
	Addresses []string `yaml:"addresses"`
}

// NetplanRenderer는 ConfigurationDocument를 netplan 문서로 변환하는
// NetworkRenderer 구현체입니다
type NetplanRenderer struct {
	clock       interfaces.Clock
	configDir   string
	stagingFile string
}

// NewNetplanRenderer는 새로운 NetplanRenderer를 생성합니다
func NewNetplanRenderer(clock interfaces.Clock, configDir, stagingFile string) *NetplanRenderer {
	return &NetplanRenderer{
		clock:       clock,
		configDir:   configDir,
		stagingFile: stagingFile,
	}
}

// Render는 설정 문서와 호스트 인터페이스 목록으로 RenderedState를 생성합니다.
// 생성 시각 주석을 제외하면 동일 입력에 대해 항상 동일한 출력을 냅니다.
func (r *NetplanRenderer) Render(doc entities.ConfigurationDocument, hostInterfaces []string) (entities.RenderedState, error) {
	ethernets := make(map[string]netplanEthernet)

	names := filterPhysicalInterfaces(hostInterfaces)
	sort.Strings(names)

	for _, name := range names {
		ethernets[name] = renderEthernet(doc[name])
	}

	document := netplanDocument{
		Network: netplanNetwork{
			Version:   2,
			Ethernets: ethernets,
		},
	}

	body, err := yaml.Marshal(document)
	if err != nil {
		return entities.RenderedState{}, errors.NewSystemError("netplan 문서 마샬링 실패", err)
	}

	header := fmt.Sprintf("# generated by netapply-agent at %s\n", r.clock.Now().Format(time.RFC3339))

	return entities.RenderedState{
		Content: append([]byte(header), body...),
		Path:    filepath.Join(r.configDir, r.stagingFile),
	}, nil
}

// renderEthernet은 단일 인터페이스 항목을 렌더링합니다
func renderEthernet(spec entities.InterfaceSpec) netplanEthernet {
	// 설정 파일에 없는 인터페이스: 부팅을 막지 않는 비활성 기본 정책
	if !spec.Exists {
		return netplanEthernet{
			DHCP4:    false,
			Optional: true,
		}
	}

	// DHCP가 우선: address 등 정적 필드는 무시
	if spec.DHCP4 {
		return netplanEthernet{DHCP4: true}
	}

	eth := netplanEthernet{DHCP4: false}

	if spec.Address != "" {
		eth.Addresses = []string{ensurePrefixLength(spec.Address)}
	}
	if spec.Gateway != "" {
		eth.Routes = []netplanRoute{{To: "default", Via: spec.Gateway}}
	}
	if len(spec.DNSServers) > 0 {
		eth.Nameservers = &netplanNameservers{Addresses: spec.DNSServers}
	}

	return eth
}

// ensurePrefixLength는 프리픽스 없는 주소에 /24를 보정합니다
func ensurePrefixLength(address string) string {
	if strings.Contains(address, "/") {
		return address
	}
	return address + constants.DefaultPrefixLength
}

// filterPhysicalInterfaces는 물리 NIC 네이밍 규칙에 맞는 이름만 남깁니다
func filterPhysicalInterfaces(names []string) []string {
	var filtered []string
	for _, name := range names {
		for _, prefix := range physicalNICPrefixes {
			if strings.HasPrefix(name, prefix) {
				filtered = append(filtered, name)
				break
			}
		}
	}
	return filtered
}
