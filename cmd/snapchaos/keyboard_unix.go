//go:build linux

package main

import (
	"os"
	"syscall"
	"unsafe"
)

// listenForKeyboard reads single keys from a raw terminal and performs actions
func listenForKeyboard(k keyActions) {
	fd := uintptr(os.Stdin.Fd())
	var oldState syscall.Termios
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, syscall.TCGETS, uintptr(unsafe.Pointer(&oldState))); errno != 0 {
		// Not a terminal
		return
	}

	// Keep OPOST so \n still works
	newState := oldState
	newState.Lflag &^= syscall.ICANON | syscall.ECHO
	newState.Cc[syscall.VMIN] = 1
	newState.Cc[syscall.VTIME] = 0

	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, fd, syscall.TCSETS, uintptr(unsafe.Pointer(&newState))); errno != 0 {
		return
	}
	restore := func() {
		syscall.Syscall(syscall.SYS_IOCTL, fd, syscall.TCSETS, uintptr(unsafe.Pointer(&oldState)))
	}
	defer restore()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if k.handleKey(string(buf[0])) {
			return
		}
	}
}
