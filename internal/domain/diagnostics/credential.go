package diagnostics

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	pemBeginMarker = "-----BEGIN"
	pemEndMarker   = "-----END"

	// previewLen is the number of raw characters shown in a redacted preview.
	previewLen = 20
)

// KeySource tells which channel supplied the private key.
type KeySource string

const (
	KeySourceDirect KeySource = "direct"
	KeySourceBase64 KeySource = "base64"
)

// PrivateKey is the resolved credential material. Raw is the value as configured,
// PEM is the decoded form every downstream check uses.
type PrivateKey struct {
	Source KeySource
	Raw    string
	PEM    string
}

// ResolvePrivateKey picks the direct key when set, otherwise base64-decodes the
// alternate variable. raw is returned even on decode failure so callers can redact it.
func ResolvePrivateKey(s ConfigSnapshot) (key PrivateKey, raw string, err error) {
	if v, ok := s.Lookup(VarPrivateKey); ok {
		return PrivateKey{Source: KeySourceDirect, Raw: v, PEM: v}, v, nil
	}
	if v, ok := s.Lookup(VarPrivateKeyBase64); ok {
		decoded, derr := decodeBase64(v)
		if derr != nil {
			return PrivateKey{}, v, fmt.Errorf("%w: %s is not valid base64: %v", ErrDecodeFailure, VarPrivateKeyBase64, derr)
		}
		return PrivateKey{Source: KeySourceBase64, Raw: v, PEM: string(decoded)}, v, nil
	}
	return PrivateKey{}, "", fmt.Errorf("%w: neither %s nor %s is set", ErrMissingConfiguration, VarPrivateKey, VarPrivateKeyBase64)
}

// decodeBase64 accepts standard and URL-safe alphabets, padded or not. The
// error reported is the one from the standard padded form.
func decodeBase64(v string) ([]byte, error) {
	v = strings.TrimSpace(v)
	decoded, err := base64.StdEncoding.DecodeString(v)
	if err == nil {
		return decoded, nil
	}
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, rerr := enc.DecodeString(v); rerr == nil {
			return b, nil
		}
	}
	return nil, err
}

// PEMShape holds the structural flags of a key.
type PEMShape struct {
	HasBeginMarker bool
	HasEndMarker   bool
	HasNewlines    bool
}

func InspectPEM(pem string) PEMShape {
	return PEMShape{
		HasBeginMarker: strings.Contains(pem, pemBeginMarker),
		HasEndMarker:   strings.Contains(pem, pemEndMarker),
		HasNewlines:    strings.Contains(pem, "\n"),
	}
}

// ValidatePEM runs the structural assertions in order and stops at the first failure.
func ValidatePEM(pem string) error {
	shape := InspectPEM(pem)
	if !shape.HasBeginMarker {
		return fmt.Errorf("%w: private key is missing the BEGIN marker", ErrMalformedCredential)
	}
	if !shape.HasEndMarker {
		return fmt.Errorf("%w: private key is missing the END marker", ErrMalformedCredential)
	}
	if !shape.HasNewlines {
		return fmt.Errorf("%w: private key has no newline characters (was it pasted onto one line?)", ErrMalformedCredential)
	}
	return nil
}

// Preview redacts raw to at most previewLen characters followed by an ellipsis.
func Preview(raw string) string {
	r := []rune(raw)
	if len(r) > previewLen {
		r = r[:previewLen]
	}
	return string(r) + "..."
}
