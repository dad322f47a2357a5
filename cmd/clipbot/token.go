package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jdelaire/clipbot/internal/keychain"
)

// storeToken saves the first non-empty line of r as the bot token.
func storeToken(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		if err := keychain.Set(keychain.TokenAccount, token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		return nil
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	return errors.New("no token on stdin")
}
