//go:build !linux && !darwin

package main

import (
	"bufio"
	"os"
	"strings"
)

// listenForKeyboard reads line-buffered input where raw mode is not available.
// Each line is treated as one shortcut.
func listenForKeyboard(k keyActions) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if k.handleKey(line[:1]) {
			return
		}
	}
}
