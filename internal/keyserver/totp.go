package keyserver

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TOTP parameters used by common authenticator apps.
const (
	totpPeriod = 30
	totpDigits = 6
	totpWindow = 1
)

var errTOTPSecret = errors.New("invalid TOTP secret")

var totpEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// totpCode returns the RFC 6238 code for secret at t.
func totpCode(secret string, t time.Time) (string, error) {
	key, err := totpEncoding.DecodeString(strings.ToUpper(strings.TrimRight(secret, "=")))
	if err != nil || len(key) == 0 {
		return "", errTOTPSecret
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(t.Unix())/totpPeriod)

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%0*d", totpDigits, code%1_000_000), nil
}

// validTOTP reports whether code matches secret at now, allowing one period
// of clock skew either way.
func validTOTP(secret, code string, now time.Time) bool {
	if len(code) != totpDigits {
		return false
	}
	for i := -totpWindow; i <= totpWindow; i++ {
		want, err := totpCode(secret, now.Add(time.Duration(i*totpPeriod)*time.Second))
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return true
		}
	}
	return false
}
