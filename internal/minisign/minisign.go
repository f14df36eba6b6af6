package minisign

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"packsync/internal/domain"
)

// ErrorKind classifies parse failures.
type ErrorKind int

const (
	// MalformedHeader: a comment line is missing its prefix, a line is
	// empty, or there are surplus lines.
	MalformedHeader ErrorKind = iota
	// InvalidBase64: a signature line is not strict base64 or decodes to
	// the wrong length.
	InvalidBase64
	// MissingKeyID: the trusted comment carries no key_id token.
	MissingKeyID
	// TooFewLines: fewer than three non-empty lines.
	TooFewLines
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedHeader:
		return "malformed header"
	case InvalidBase64:
		return "invalid base64"
	case MissingKeyID:
		return "missing key id"
	case TooFewLines:
		return "too few lines"
	}
	return "unknown"
}

// ParseError is returned for any malformed signature text. It never crosses
// into verification logic as a silent "unsigned" success.
type ParseError struct {
	Kind ErrorKind
	Line int // 1-based line of the offence, 0 if not line-specific
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("minisign: %s (line %d): %s", e.Kind, e.Line, e.Msg)
	}
	return fmt.Sprintf("minisign: %s: %s", e.Kind, e.Msg)
}

const (
	untrustedPrefix = "untrusted comment: "
	trustedPrefix   = "trusted comment: "
)

var keyIDPattern = regexp.MustCompile(`key_id:([A-Za-z0-9_-]+)`)

// Signature is a parsed detached signature.
type Signature struct {
	UntrustedComment string
	SignatureBytes   []byte
	TrustedComment   string
	GlobalSignature  []byte // optional, nil when absent
	KeyID            domain.KeyID
}

// Normalize converts CRLF to LF, drops trailing blank lines and guarantees a
// single trailing newline. It is the reference form for the round-trip
// property.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	return text + "\n"
}

// Parse parses signature text, returning a *ParseError on any violation.
func Parse(text string) (*Signature, error) {
	normalized := Normalize(text)
	lines := strings.Split(strings.TrimRight(normalized, "\n"), "\n")

	if len(lines) < 3 {
		return nil, &ParseError{Kind: TooFewLines, Msg: fmt.Sprintf("need 3 lines, got %d", len(lines))}
	}
	if len(lines) > 4 {
		return nil, &ParseError{Kind: MalformedHeader, Msg: fmt.Sprintf("need at most 4 lines, got %d", len(lines))}
	}
	for i, l := range lines {
		if l == "" {
			return nil, &ParseError{Kind: MalformedHeader, Line: i + 1, Msg: "empty line"}
		}
	}

	if !strings.HasPrefix(lines[0], untrustedPrefix) {
		return nil, &ParseError{Kind: MalformedHeader, Line: 1, Msg: "expected untrusted comment line"}
	}
	untrusted := strings.TrimPrefix(lines[0], untrustedPrefix)

	sig, err := decodeSignatureLine(lines[1], 2)
	if err != nil {
		return nil, err
	}

	if !strings.HasPrefix(lines[2], trustedPrefix) {
		return nil, &ParseError{Kind: MalformedHeader, Line: 3, Msg: "expected trusted comment line"}
	}
	trusted := strings.TrimPrefix(lines[2], trustedPrefix)

	m := keyIDPattern.FindStringSubmatch(trusted)
	if m == nil {
		return nil, &ParseError{Kind: MissingKeyID, Line: 3, Msg: "no key_id token in trusted comment"}
	}

	var global []byte
	if len(lines) == 4 {
		global, err = decodeSignatureLine(lines[3], 4)
		if err != nil {
			return nil, err
		}
	}

	return &Signature{
		UntrustedComment: untrusted,
		SignatureBytes:   sig,
		TrustedComment:   trusted,
		GlobalSignature:  global,
		KeyID:            domain.KeyID(m[1]),
	}, nil
}

// Format renders the signature back to its normalised text form.
func (s *Signature) Format() string {
	var b strings.Builder
	b.WriteString(untrustedPrefix)
	b.WriteString(s.UntrustedComment)
	b.WriteByte('\n')
	b.WriteString(base64.StdEncoding.EncodeToString(s.SignatureBytes))
	b.WriteByte('\n')
	b.WriteString(trustedPrefix)
	b.WriteString(s.TrustedComment)
	b.WriteByte('\n')
	if s.GlobalSignature != nil {
		b.WriteString(base64.StdEncoding.EncodeToString(s.GlobalSignature))
		b.WriteByte('\n')
	}
	return b.String()
}

func decodeSignatureLine(line string, lineNo int) ([]byte, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(line)
	if err != nil {
		return nil, &ParseError{Kind: InvalidBase64, Line: lineNo, Msg: err.Error()}
	}
	if len(raw) != domain.SignatureSize {
		return nil, &ParseError{
			Kind: InvalidBase64,
			Line: lineNo,
			Msg:  fmt.Sprintf("signature must be %d bytes, got %d", domain.SignatureSize, len(raw)),
		}
	}
	return raw, nil
}
