// Package gpg encrypts notification bodies by piping them through the gpg
// binary. The tool is external by contract: plaintext on stdin, ASCII
// armored ciphertext on stdout, non-zero exit means failure.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"nbxwatch/internal/notify"
)

const defaultBinary = "gpg"

// Encrypter shells out to gpg for one recipient identity.
type Encrypter struct {
	binary    string
	recipient string
}

var _ notify.Encrypter = (*Encrypter)(nil)

type config struct {
	binary string
}

// Option configures the encrypter.
type Option func(*config)

// WithBinary overrides the gpg binary path.
func WithBinary(path string) Option {
	return func(c *config) {
		c.binary = path
	}
}

// New builds an encrypter for the given recipient identity.
func New(recipient string, opts ...Option) *Encrypter {
	cfg := config{binary: defaultBinary}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Encrypter{
		binary:    cfg.binary,
		recipient: recipient,
	}
}

// Encrypt runs the external tool and returns the armored ciphertext. A
// missing binary or non-zero exit is an error; the dispatcher decides to
// fall back to plaintext, not this layer.
func (e *Encrypter) Encrypt(ctx context.Context, plaintext string) (string, error) {
	cmd := exec.CommandContext(ctx, e.binary,
		"--batch", "--yes", "--encrypt", "--armor", "-r", e.recipient)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = strings.NewReader(plaintext)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("gpg: %w: %s", err, detail)
		}
		return "", fmt.Errorf("gpg: %w", err)
	}

	return stdout.String(), nil
}
