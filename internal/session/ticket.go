// Package session implements the stateless signed-ticket authentication
// scheme. A ticket is a compact `subject.expiry.signature` string carried in
// a cookie and verifiable with the server secret alone; no session state
// survives a restart, and a ticket cannot be revoked before it expires.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"talkseed/internal/domain"
)

// Ticketer issues and verifies signed session tickets.
type Ticketer struct {
	secret []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewTicketer creates a Ticketer signing with secret; issued tickets stay
// valid for maxAge.
func NewTicketer(secret string, maxAge time.Duration) *Ticketer {
	return &Ticketer{
		secret: []byte(secret),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Issue builds a ticket for subjectID: `subjectID.exp.sig` where exp is the
// unix expiry and sig = hex(HMAC-SHA256(secret, subjectID.exp)).
func (t *Ticketer) Issue(subjectID string) string {
	exp := t.now().Add(t.maxAge).Unix()
	payload := subjectID + "." + strconv.FormatInt(exp, 10)
	return payload + "." + t.sign(payload)
}

// Verify checks shape, expiry, and signature, in that order, and returns the
// authenticated subject id. An empty ticket means no credential was
// presented at all, which is a distinct condition from a broken one.
func (t *Ticketer) Verify(ticket string) (string, error) {
	if ticket == "" {
		return "", domain.ErrUnauthenticated
	}

	parts := strings.Split(ticket, ".")
	if len(parts) != 3 {
		return "", domain.ErrMalformedTicket
	}
	subjectID, expStr, sig := parts[0], parts[1], parts[2]

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return "", domain.ErrMalformedTicket
	}
	if t.now().Unix() > exp {
		return "", domain.ErrTicketExpired
	}

	expected := t.sign(subjectID + "." + expStr)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return "", domain.ErrBadSignature
	}

	return subjectID, nil
}

// MaxAge reports the configured ticket lifetime.
func (t *Ticketer) MaxAge() time.Duration {
	return t.maxAge
}

func (t *Ticketer) sign(payload string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
