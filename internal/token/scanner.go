// Package token splits BIL header text into whitespace-delimited tokens.
//
// Besides plain tokens the scanner supports the two raw forms the header
// grammar needs: a single verbatim byte after optional spaces, and the rest
// of the current line.
package token

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineValue bounds the bytes returned by Rest, terminator included.
const MaxLineValue = 256

// Scanner reads header tokens from a stream.
type Scanner struct {
	r    *bufio.Reader
	line int
}

// NewScanner returns a scanner positioned at line 1.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r), line: 1}
}

// Line returns the current 1-based line number.
func (s *Scanner) Line() int {
	return s.line
}

// Next skips whitespace and returns the following run of non-whitespace
// bytes. It returns io.EOF when only whitespace remains.
func (s *Scanner) Next() (string, error) {
	if err := s.skip(isSpace); err != nil {
		return "", err
	}

	var b strings.Builder
	for {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(c) {
			// the delimiter belongs to whatever is scanned next
			if err := s.r.UnreadByte(); err != nil {
				return "", err
			}
			break
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

// Char skips space characters (only ' ') and returns the next byte as is,
// even when it is a tab or newline.
func (s *Scanner) Char() (byte, error) {
	if err := s.skip(isBlank); err != nil {
		return 0, eofUnexpected(err)
	}
	c, err := s.r.ReadByte()
	if err != nil {
		return 0, eofUnexpected(err)
	}
	if c == '\n' {
		s.line++
	}
	return c, nil
}

// Rest skips space characters and returns the remainder of the current line
// without its terminator. At most MaxLineValue-1 bytes are consumed; longer
// lines leave their tail for the next call.
func (s *Scanner) Rest() (string, error) {
	if err := s.skip(isBlank); err != nil {
		return "", eofUnexpected(err)
	}

	var b strings.Builder
	for b.Len() < MaxLineValue-1 {
		c, err := s.r.ReadByte()
		if err == io.EOF {
			if b.Len() == 0 {
				return "", io.ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return "", err
		}
		b.WriteByte(c)
		if c == '\n' {
			s.line++
			break
		}
	}

	v := strings.TrimSuffix(b.String(), "\n")
	v = strings.TrimSuffix(v, "\r")
	return v, nil
}

// skip consumes bytes while skipFn reports true. It returns io.EOF when the
// stream ends first.
func (s *Scanner) skip(skipFn func(byte) bool) error {
	for {
		c, err := s.r.ReadByte()
		if err != nil {
			return err
		}
		if !skipFn(c) {
			return s.r.UnreadByte()
		}
		if c == '\n' {
			s.line++
		}
	}
}

func eofUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

func isBlank(c byte) bool {
	return c == ' '
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
