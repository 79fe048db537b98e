package manifest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"ota-checker-go/internal"

	"github.com/jedisct1/go-minisign"
)

const (
	maxManifestSize  = 1024 * 1024 // 1 MB
	maxSignatureSize = 64 * 1024

	// SignatureSuffix is appended to the manifest URL to locate its signature.
	SignatureSuffix = ".minisig"
)

// Opener opens a URL for reading. *Fetcher implements it.
type Opener interface {
	Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error)
}

// Load fetches and parses the manifest at rawURL. When publicKey is set, the
// minisign signature at rawURL+".minisig" must verify before the manifest is
// parsed.
func Load(ctx context.Context, opener Opener, rawURL, publicKey string) (*Manifest, error) {
	data, err := readLimited(ctx, opener, rawURL, maxManifestSize)
	if err != nil {
		return nil, err
	}

	if publicKey != "" {
		sig, err := readLimited(ctx, opener, rawURL+SignatureSuffix, maxSignatureSize)
		if err != nil {
			return nil, fmt.Errorf("manifest signature: %w", err)
		}
		if err := VerifySignature(data, sig, publicKey); err != nil {
			return nil, err
		}
		internal.DebugPrint("Manifest signature verified")
	}

	return Parse(data)
}

func readLimited(ctx context.Context, opener Opener, rawURL string, limit int64) ([]byte, error) {
	rc, err := opener.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds maximum size of %d bytes", rawURL, limit)
	}
	return data, nil
}

// VerifySignature checks a minisign signature over data. publicKey is the
// base64 key as printed by `minisign -G` (the line after the comment).
func VerifySignature(data, signature []byte, publicKey string) error {
	pub, err := minisign.NewPublicKey(strings.TrimSpace(publicKey))
	if err != nil {
		return fmt.Errorf("read minisign pubkey: %w", err)
	}

	sig, err := minisign.DecodeSignature(strings.TrimRight(string(signature), "\r\n"))
	if err != nil {
		return fmt.Errorf("read minisign signature: %w", err)
	}

	valid, err := pub.Verify(data, sig)
	if err != nil {
		return fmt.Errorf("minisign: verification error: %w", err)
	}
	if !valid {
		return fmt.Errorf("minisign: signature verification failed")
	}
	return nil
}
