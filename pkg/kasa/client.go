package kasa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// Plug handles TCP communication with a single Kasa smart plug
type Plug struct {
	addr    string
	timeout time.Duration
	dialer  net.Dialer
	logger  *slog.Logger
}

// NewPlug creates a client for the plug at host. A host without a port uses DefaultPort.
func NewPlug(host string, timeout time.Duration, logger *slog.Logger) *Plug {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	addr := host
	if _, _, err := net.SplitHostPort(host); err != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(DefaultPort))
	}
	return &Plug{
		addr:    addr,
		timeout: timeout,
		logger:  logger,
	}
}

// Addr returns the host:port the plug is reached at
func (p *Plug) Addr() string {
	return p.addr
}

// SysInfo retrieves the plug's system information
func (p *Plug) SysInfo(ctx context.Context) (*SysInfo, error) {
	raw, err := p.query(ctx, cmdSysInfo)
	if err != nil {
		p.logger.Error("plug: get_sysinfo request failed", "addr", p.addr, "error", err)
		return nil, errors.DeviceUnavailablef("failed to get sysinfo from %s: %w", p.addr, err)
	}

	var resp sysInfoResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		p.logger.Error("plug: get_sysinfo decode failed", "addr", p.addr, "error", err)
		return nil, fmt.Errorf("failed to decode sysinfo: %w", err)
	}
	info := resp.System.GetSysinfo
	if info.ErrCode != 0 {
		return nil, errors.DeviceUnavailablef("get_sysinfo returned err_code %d (%s)", info.ErrCode, info.ErrMsg)
	}

	p.logger.Debug("plug: get_sysinfo response", "addr", p.addr, "alias", info.Alias, "relay_state", info.RelayState)
	return &info, nil
}

// SetRelayState closes (on) or opens (off) the plug's relay
func (p *Plug) SetRelayState(ctx context.Context, on bool) error {
	cmd := cmdRelayOff
	if on {
		cmd = cmdRelayOn
	}
	p.logger.Debug("setting relay state", "addr", p.addr, "on", on)

	raw, err := p.query(ctx, cmd)
	if err != nil {
		p.logger.Error("plug: set_relay_state request failed", "addr", p.addr, "error", err)
		return errors.DeviceUnavailablef("failed to set relay state on %s: %w", p.addr, err)
	}

	var resp relayResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if code := resp.System.SetRelayState.ErrCode; code != 0 {
		return errors.DeviceUnavailablef("set_relay_state returned err_code %d (%s)", code, resp.System.SetRelayState.ErrMsg)
	}

	p.logger.Debug("relay state updated successfully", "addr", p.addr, "on", on)
	return nil
}

// TurnOn closes the relay
func (p *Plug) TurnOn(ctx context.Context) error {
	return p.SetRelayState(ctx, true)
}

// TurnOff opens the relay
func (p *Plug) TurnOff(ctx context.Context) error {
	return p.SetRelayState(ctx, false)
}

// Refresh re-reads the relay state
func (p *Plug) Refresh(ctx context.Context) (bool, error) {
	info, err := p.SysInfo(ctx)
	if err != nil {
		return false, err
	}
	return info.On(), nil
}

// query sends one framed command and reads one framed reply on a fresh connection
func (p *Plug) query(ctx context.Context, cmd []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(ctx, "tcp", p.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set deadline: %w", err)
		}
	}

	if _, err := conn.Write(Frame(cmd)); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}
	return ReadFrame(conn)
}
