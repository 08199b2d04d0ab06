package entities

import (
	"errors"
	"net"
	"strings"
)

// InterfaceSpec은 설정 파일에 기술된 단일 인터페이스의 도메인 엔티티입니다
type InterfaceSpec struct {
	Exists     bool
	DHCP4      bool
	Address    string            // CIDR 또는 IP (e.g., "192.168.1.50/24")
	Gateway    string            // 기본 라우트 게이트웨이 IP
	DNSServers []string          // 네임서버 목록 (순서 유지)
	Extra      map[string]string // 인식되지 않은 키들 (해석하지 않고 보존)
}

// ConfigurationDocument는 인터페이스 이름에서 InterfaceSpec으로의 매핑입니다.
// 설정 파일에 명시적으로 등장한 인터페이스만 포함합니다.
type ConfigurationDocument map[string]InterfaceSpec

var (
	ErrInvalidAddress = errors.New("유효하지 않은 주소 형식")
	ErrInvalidGateway = errors.New("유효하지 않은 게이트웨이 주소")
	ErrInvalidDNS     = errors.New("유효하지 않은 네임서버 주소")
)

// Validate는 InterfaceSpec의 유효성을 검증합니다.
// DHCP 인터페이스는 정적 필드를 무시하므로 검증하지 않습니다.
func (s InterfaceSpec) Validate() error {
	if s.DHCP4 {
		return nil
	}
	if s.Address != "" && !isValidAddress(s.Address) {
		return ErrInvalidAddress
	}
	if s.Gateway != "" && net.ParseIP(s.Gateway) == nil {
		return ErrInvalidGateway
	}
	for _, ns := range s.DNSServers {
		if net.ParseIP(ns) == nil {
			return ErrInvalidDNS
		}
	}
	return nil
}

// Validate는 문서 내 모든 인터페이스 스펙을 검증합니다
func (d ConfigurationDocument) Validate() error {
	for _, spec := range d {
		if err := spec.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// isValidAddress는 프리픽스가 있든 없든 IP 주소로 파싱 가능한지 확인합니다
func isValidAddress(addr string) bool {
	if strings.Contains(addr, "/") {
		_, _, err := net.ParseCIDR(addr)
		return err == nil
	}
	return net.ParseIP(addr) != nil
}
