package kasa

import (
	"encoding/binary"
	"fmt"
	"io"
)

// initialKey seeds the autokey XOR cipher used by the local smart-home protocol
const initialKey byte = 171

// maxFrameSize bounds a single TCP response; sysinfo replies are well under 4KiB
const maxFrameSize = 1 << 20

// Encrypt obfuscates a plaintext command. Each output byte becomes the key for the next.
func Encrypt(plaintext []byte) []byte {
	key := initialKey
	out := make([]byte, len(plaintext))
	for i, b := range plaintext {
		key ^= b
		out[i] = key
	}
	return out
}

// Decrypt reverses Encrypt
func Decrypt(ciphertext []byte) []byte {
	key := initialKey
	out := make([]byte, len(ciphertext))
	for i, c := range ciphertext {
		out[i] = key ^ c
		key = c
	}
	return out
}

// Frame encrypts a command and prefixes it with its big-endian length, as sent over TCP
func Frame(plaintext []byte) []byte {
	out := make([]byte, 4+len(plaintext))
	binary.BigEndian.PutUint32(out, uint32(len(plaintext)))
	copy(out[4:], Encrypt(plaintext))
	return out
}

// ReadFrame reads one length-prefixed frame from r and returns the decrypted payload
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}
	size := binary.BigEndian.Uint32(header[:])
	if size > maxFrameSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds limit", size)
	}
	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}
	return Decrypt(body), nil
}
