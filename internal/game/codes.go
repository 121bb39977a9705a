package game

import (
	"fmt"
	"io"
)

// generateCode draws length characters from alphabet using bytes from r.
// Bytes that would bias the result toward the start of the alphabet are discarded.
func generateCode(r io.Reader, alphabet string, length int) (string, error) {
	if len(alphabet) < 2 || len(alphabet) > 256 {
		return "", fmt.Errorf("alphabet must have between 2 and 256 characters")
	}
	limit := 256 - 256%len(alphabet)

	code := make([]byte, 0, length)
	buf := make([]byte, length*2)
	for len(code) < length {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", fmt.Errorf("reading random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			code = append(code, alphabet[int(b)%len(alphabet)])
			if len(code) == length {
				break
			}
		}
	}
	return string(code), nil
}
