package kasa

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptKnownCiphertext(t *testing.T) {
	want, err := hex.DecodeString("d0f281f88bff9af7d5ef94b6d1b4c09fec95e68fe187e8caf08bf68bf6")
	require.NoError(t, err)
	assert.Equal(t, want, Encrypt(cmdSysInfo))
}

func TestDecryptReversesEncrypt(t *testing.T) {
	for _, cmd := range [][]byte{cmdSysInfo, cmdRelayOn, cmdRelayOff, {}} {
		assert.Equal(t, cmd, Decrypt(Encrypt(cmd)))
	}
}

func TestFrame(t *testing.T) {
	framed := Frame(cmdRelayOn)
	require.Len(t, framed, 4+len(cmdRelayOn))
	assert.Equal(t, []byte{0, 0, 0, byte(len(cmdRelayOn))}, framed[:4])

	payload, err := ReadFrame(bytes.NewReader(framed))
	require.NoError(t, err)
	assert.Equal(t, cmdRelayOn, payload)
}

func TestReadFrameErrors(t *testing.T) {
	t.Run("short header", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{0, 0}))
		assert.Error(t, err)
	})

	t.Run("truncated body", func(t *testing.T) {
		framed := Frame(cmdSysInfo)
		_, err := ReadFrame(bytes.NewReader(framed[:len(framed)-3]))
		assert.Error(t, err)
	})

	t.Run("oversized frame", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff}))
		assert.Error(t, err)
	})
}
