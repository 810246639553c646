// internal/signature/validator.go
package signature

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.uber.org/zap"

	"jivelink/pkg/config"
	"jivelink/pkg/errs"
)

// MACHeader carries the registration signature to the verification endpoint.
const MACHeader = "X-Jive-MAC"

const (
	fieldSignature    = "jiveSignature"
	fieldSignatureURL = "jiveSignatureURL"
	fieldClientSecret = "clientSecret"
)

// Validator checks inbound registration/unregistration payloads against the
// remote verification endpoint named by the payload itself.
type Validator struct {
	httpClient   *http.Client
	log          *zap.SugaredLogger
	development  bool
	ignoreSource bool
}

func NewValidator(cfg config.Config, httpClient *http.Client, log *zap.SugaredLogger) *Validator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Validator{
		httpClient:   httpClient,
		log:          log,
		development:  cfg.Development,
		ignoreSource: cfg.IgnoreRegistrationSource,
	}
}

// Validate builds the canonical payload string and forwards it to the
// payload's jiveSignatureURL with the original signature in the MAC header.
// Any outcome other than a 2xx response fails the registration.
func (v *Validator) Validate(ctx context.Context, payload map[string]any) error {
	if v.development || v.ignoreSource {
		v.log.Warnw("signature validation bypassed", "development", v.development, "ignoreRegistrationSource", v.ignoreSource)
		return nil
	}
	sig, _ := payload[fieldSignature].(string)
	if sig == "" {
		return errs.Validation("jiveSignature is required")
	}
	sigURL, _ := payload[fieldSignatureURL].(string)
	if sigURL == "" {
		return errs.Validation("jiveSignatureURL is required")
	}

	body := CanonicalString(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sigURL, strings.NewReader(body))
	if err != nil {
		return errs.Signature("building verification request", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set(MACHeader, sig)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return errs.Signature("verification endpoint unreachable", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.Signature(fmt.Sprintf("verification endpoint returned %d", resp.StatusCode), nil)
	}
	return nil
}

// CanonicalString produces the deterministic key:value body the remote
// endpoint signs over: jiveSignature removed, clientSecret hashed with
// SHA-256 (hex) in place, keys sorted, lines newline-joined.
func CanonicalString(payload map[string]any) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k == fieldSignature {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		val := fmt.Sprintf("%v", payload[k])
		if k == fieldClientSecret {
			sum := sha256.Sum256([]byte(val))
			val = hex.EncodeToString(sum[:])
		}
		lines = append(lines, k+":"+val)
	}
	return strings.Join(lines, "\n")
}
