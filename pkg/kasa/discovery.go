package kasa

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/plugsunset/internal/errors"
)

// BroadcastDiscoverer finds plugs by broadcasting an unframed sysinfo request over UDP
type BroadcastDiscoverer struct {
	// Port is the UDP port probes are sent to; zero means DefaultPort
	Port   int
	logger *slog.Logger
}

// NewBroadcastDiscoverer creates a discoverer using the standard Kasa port
func NewBroadcastDiscoverer(logger *slog.Logger) *BroadcastDiscoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BroadcastDiscoverer{Port: DefaultPort, logger: logger}
}

// Discover sends one probe to target and collects replies until timeout elapses.
// Replies that are not valid plug sysinfo are skipped.
func (d *BroadcastDiscoverer) Discover(ctx context.Context, target string, timeout time.Duration) (map[string]Device, error) {
	port := d.Port
	if port == 0 {
		port = DefaultPort
	}

	conn, err := net.ListenPacket("udp4", ":0")
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket: %w", err)
	}
	defer conn.Close()

	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(target, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("invalid discovery target %q: %w", target, err)
	}

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set discovery deadline: %w", err)
	}

	if _, err := conn.WriteTo(Encrypt(cmdSysInfo), dst); err != nil {
		return nil, fmt.Errorf("failed to send discovery probe: %w", err)
	}

	found := make(map[string]Device)
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return found, err
		}
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				// Discovery window closed, this is normal
				return found, nil
			}
			return found, fmt.Errorf("discovery read failed: %w", err)
		}
		host, _, _ := net.SplitHostPort(from.String())
		device, valid := parseDiscoveryReply(host, buf[:n], d.logger)
		if !valid {
			continue
		}
		d.logger.Debug("Discovered Kasa plug", "alias", device.Alias, "host", device.Host, "model", device.Model)
		found[host] = device
	}
}

// parseDiscoveryReply decodes a UDP sysinfo reply into a Device
func parseDiscoveryReply(host string, payload []byte, logger *slog.Logger) (Device, bool) {
	var resp sysInfoResponse
	if err := json.Unmarshal(Decrypt(payload), &resp); err != nil {
		logger.Debug("Skipping undecodable discovery reply", "host", host, "error", err)
		return Device{}, false
	}
	info := resp.System.GetSysinfo
	if info.Alias == "" && info.DeviceID == "" {
		logger.Debug("Skipping discovery reply without sysinfo", "host", host)
		return Device{}, false
	}
	return Device{
		Host:     host,
		Alias:    info.Alias,
		Model:    info.Model,
		MAC:      info.MAC,
		DeviceID: info.DeviceID,
		On:       info.On(),
		SeenAt:   time.Now(),
	}, true
}

// FindHostByAlias runs up to attempts discovery rounds and returns the host of the first
// plug whose alias matches, ignoring case. A failed round counts as an attempt.
func FindHostByAlias(ctx context.Context, d Discoverer, alias, target string, timeout time.Duration, attempts int, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		found, err := d.Discover(ctx, target, timeout)
		if err != nil {
			logger.Warn("Discovery attempt failed", "attempt", attempt, "attempts", attempts, "error", err)
			continue
		}
		for _, device := range found {
			if strings.EqualFold(device.Alias, alias) {
				logger.Info("Resolved plug alias", "alias", alias, "host", device.Host, "attempt", attempt)
				return device.Host, nil
			}
		}
		logger.Debug("Alias not found in discovery round", "alias", alias, "attempt", attempt, "devices", len(found))
	}
	return "", errors.DeviceNotFoundf("plug %q not found after %d attempts", alias, attempts)
}
