package kasa

import (
	"context"
	"time"
)

const (
	// DefaultPort is the TCP and UDP port Kasa devices listen on
	DefaultPort = 9999

	// DefaultBroadcast is the limited broadcast address discovery probes go to
	DefaultBroadcast = "255.255.255.255"
)

// Commands understood by smart plugs
var (
	cmdSysInfo  = []byte(`{"system":{"get_sysinfo":{}}}`)
	cmdRelayOn  = []byte(`{"system":{"set_relay_state":{"state":1}}}`)
	cmdRelayOff = []byte(`{"system":{"set_relay_state":{"state":0}}}`)
)

// SysInfo is the subset of system.get_sysinfo a plug reports that we use
type SysInfo struct {
	Alias      string `json:"alias"`
	Model      string `json:"model"`
	DevName    string `json:"dev_name"`
	DeviceID   string `json:"deviceId"`
	MAC        string `json:"mac"`
	SoftwareV  string `json:"sw_ver"`
	HardwareV  string `json:"hw_ver"`
	RelayState int    `json:"relay_state"`
	OnTime     int    `json:"on_time"`
	LEDOff     int    `json:"led_off"`
	RSSI       int    `json:"rssi"`
	ErrCode    int    `json:"err_code"`
	ErrMsg     string `json:"err_msg,omitempty"`
}

// On reports whether the relay is closed
func (s SysInfo) On() bool {
	return s.RelayState == 1
}

// OnDuration is how long the relay has been closed
func (s SysInfo) OnDuration() time.Duration {
	return time.Duration(s.OnTime) * time.Second
}

type sysInfoResponse struct {
	System struct {
		GetSysinfo SysInfo `json:"get_sysinfo"`
	} `json:"system"`
}

type relayResponse struct {
	System struct {
		SetRelayState struct {
			ErrCode int    `json:"err_code"`
			ErrMsg  string `json:"err_msg,omitempty"`
		} `json:"set_relay_state"`
	} `json:"system"`
}

// Device is a plug found by discovery
type Device struct {
	Host     string
	Alias    string
	Model    string
	MAC      string
	DeviceID string
	On       bool
	SeenAt   time.Time
}

// Discoverer finds plugs on the local network, keyed by host address
type Discoverer interface {
	Discover(ctx context.Context, target string, timeout time.Duration) (map[string]Device, error)
}
