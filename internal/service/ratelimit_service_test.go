package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
)

type loggedAttempt struct {
	identifier   string
	functionName string
	at           time.Time
}

// fakeAttemptRepo keeps the append-only log in memory and stamps inserts
// with an injectable clock so window boundaries are exact.
type fakeAttemptRepo struct {
	attempts  []loggedAttempt
	clock     func() time.Time
	insertErr error
	countErr  error
}

func (f *fakeAttemptRepo) Insert(identifier, functionName string) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.attempts = append(f.attempts, loggedAttempt{identifier, functionName, f.clock()})
	return nil
}

func (f *fakeAttemptRepo) CountSince(identifier, functionName string, since time.Time) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var count int64
	for _, a := range f.attempts {
		if a.identifier == identifier && a.functionName == functionName && a.at.After(since) {
			count++
		}
	}
	return count, nil
}

type fakeSuspiciousRepo struct {
	recorded []*model.SuspiciousActivity
	err      error
}

func (f *fakeSuspiciousRepo) Create(activity *model.SuspiciousActivity) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, activity)
	return nil
}

// rateLimitHarness wires the service and its fakes onto one movable clock
type rateLimitHarness struct {
	svc        *rateLimitService
	attempts   *fakeAttemptRepo
	suspicious *fakeSuspiciousRepo
	current    time.Time
}

func newRateLimitHarness(t *testing.T) *rateLimitHarness {
	t.Helper()
	h := &rateLimitHarness{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	h.attempts = &fakeAttemptRepo{clock: func() time.Time { return h.current }}
	h.suspicious = &fakeSuspiciousRepo{}
	h.svc = NewRateLimitService(h.attempts, h.suspicious).(*rateLimitService)
	h.svc.now = func() time.Time { return h.current }
	return h
}

func (h *rateLimitHarness) advance(d time.Duration) {
	h.current = h.current.Add(d)
}

func TestCheckLimitSlidingWindow(t *testing.T) {
	h := newRateLimitHarness(t)
	const fn = "create_invitation"
	window := time.Minute

	// Three attempts at t=0s, 10s, 20s against a limit of 3
	for i := 0; i < 3; i++ {
		h.svc.LogAttempt("10.0.0.1", fn)
		h.advance(10 * time.Second)
	}

	// t=30s: all three attempts are inside the window
	if result := h.svc.CheckLimit("10.0.0.1", fn, 3, window); result.Allowed {
		t.Error("expected rejection at t=30s with 3 attempts in window")
	}

	// t=70s: the early attempts have aged out of the window
	h.advance(40 * time.Second)
	if result := h.svc.CheckLimit("10.0.0.1", fn, 3, window); !result.Allowed {
		t.Errorf("expected clearance at t=70s, got error %q", result.Error)
	}
}

func TestCheckLimitScopedPerIdentifierAndFunction(t *testing.T) {
	h := newRateLimitHarness(t)
	window := time.Minute

	h.svc.LogAttempt("10.0.0.1", "create_invitation")
	h.svc.LogAttempt("10.0.0.1", "create_invitation")

	cases := []struct {
		name       string
		identifier string
		fn         string
		allowed    bool
	}{
		{"same identifier same function", "10.0.0.1", "create_invitation", false},
		{"other identifier", "10.0.0.2", "create_invitation", true},
		{"other function", "10.0.0.1", "check_email", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := h.svc.CheckLimit(tc.identifier, tc.fn, 2, window)
			if result.Allowed != tc.allowed {
				t.Errorf("got allowed=%v, want %v", result.Allowed, tc.allowed)
			}
		})
	}
}

func TestCheckLimitFailsOpenOnStoreError(t *testing.T) {
	h := newRateLimitHarness(t)
	h.attempts.countErr = errors.New("connection refused")

	result := h.svc.CheckLimit("10.0.0.1", "create_invitation", 1, time.Minute)
	if !result.Allowed {
		t.Error("a broken attempt store must not block requests")
	}
}

func TestCheckLimitEmptyIdentifier(t *testing.T) {
	h := newRateLimitHarness(t)
	const fn = "check_email"

	// Blank and whitespace identifiers collapse into one shared bucket
	h.svc.LogAttempt("", fn)
	h.svc.LogAttempt("   ", fn)

	result := h.svc.CheckLimit("", fn, 2, time.Minute)
	if result.Allowed {
		t.Error("expected the shared unknown bucket to be over its limit")
	}
	for _, a := range h.attempts.attempts {
		if a.identifier != UnknownIdentifier {
			t.Errorf("attempt logged under %q, want %q", a.identifier, UnknownIdentifier)
		}
	}
}

func TestCheckRequestRequiresBothIdentifiers(t *testing.T) {
	const (
		fn   = "create_invitation"
		ip   = "10.0.0.1"
		ua   = "Mozilla/5.0"
		lang = "en-US"
	)
	window := time.Minute

	t.Run("fingerprint exhausted, fresh IP", func(t *testing.T) {
		h := newRateLimitHarness(t)
		// Same browser session hopping addresses: fingerprint hits the cap
		fingerprint := SessionFingerprint(ip, ua, lang)
		h.svc.LogAttempt(fingerprint, fn)
		h.svc.LogAttempt(fingerprint, fn)

		if result := h.svc.CheckRequest(ip, ua, lang, fn, 2, window); result.Allowed {
			t.Error("exhausted fingerprint must reject even with a clean IP count")
		}
	})

	t.Run("IP exhausted, fresh fingerprint", func(t *testing.T) {
		h := newRateLimitHarness(t)
		h.svc.LogAttempt(ip, fn)
		h.svc.LogAttempt(ip, fn)

		if result := h.svc.CheckRequest(ip, "different agent", "fr-FR", fn, 2, window); result.Allowed {
			t.Error("exhausted IP must reject even with a clean fingerprint")
		}
	})

	t.Run("both clean", func(t *testing.T) {
		h := newRateLimitHarness(t)
		if result := h.svc.CheckRequest(ip, ua, lang, fn, 2, window); !result.Allowed {
			t.Errorf("expected clearance, got error %q", result.Error)
		}
	})
}

func TestLogRequestWritesBothIdentifiers(t *testing.T) {
	h := newRateLimitHarness(t)
	h.svc.LogRequest("10.0.0.1", "Mozilla/5.0", "en-US", "check_email")

	if len(h.attempts.attempts) != 2 {
		t.Fatalf("got %d logged attempts, want 2", len(h.attempts.attempts))
	}
	if h.attempts.attempts[0].identifier != "10.0.0.1" {
		t.Errorf("first attempt under %q, want the raw IP", h.attempts.attempts[0].identifier)
	}
	if !strings.HasPrefix(h.attempts.attempts[1].identifier, "fp_") {
		t.Errorf("second attempt under %q, want a fingerprint", h.attempts.attempts[1].identifier)
	}
}

func TestSessionFingerprint(t *testing.T) {
	a := SessionFingerprint("10.0.0.1", "Mozilla/5.0", "en-US")
	b := SessionFingerprint("10.0.0.1", "Mozilla/5.0", "en-US")
	if a != b {
		t.Errorf("fingerprint is not deterministic: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "fp_") {
		t.Errorf("fingerprint %q missing fp_ prefix", a)
	}
	if c := SessionFingerprint("10.0.0.2", "Mozilla/5.0", "en-US"); c == a {
		t.Error("different IPs should produce different fingerprints")
	}
}

func TestFlagIfSuspicious(t *testing.T) {
	h := newRateLimitHarness(t)
	const fn = "check_email_negative"
	window := time.Hour

	for i := 0; i < 3; i++ {
		h.svc.LogAttempt("fp_abc", fn)
	}

	// Under threshold: nothing recorded
	h.svc.FlagIfSuspicious("fp_abc", fn, "repeated negative email lookups", 5, window, nil)
	if len(h.suspicious.recorded) != 0 {
		t.Fatalf("flagged below threshold: %+v", h.suspicious.recorded)
	}

	h.svc.LogAttempt("fp_abc", fn)
	h.svc.LogAttempt("fp_abc", fn)

	h.svc.FlagIfSuspicious("fp_abc", fn, "repeated negative email lookups", 5, window, map[string]interface{}{"ip": "10.0.0.1"})
	if len(h.suspicious.recorded) != 1 {
		t.Fatalf("got %d suspicious records, want 1", len(h.suspicious.recorded))
	}

	rec := h.suspicious.recorded[0]
	if rec.Identifier != "fp_abc" || rec.FunctionName != fn {
		t.Errorf("recorded %s/%s, want fp_abc/%s", rec.Identifier, rec.FunctionName, fn)
	}
	if !strings.Contains(rec.Metadata, "attempts_in_window") || !strings.Contains(rec.Metadata, "10.0.0.1") {
		t.Errorf("metadata %q missing attempt count or IP", rec.Metadata)
	}
}

func TestFlagIfSuspiciousNeverBlocks(t *testing.T) {
	h := newRateLimitHarness(t)
	const fn = "check_email_negative"

	for i := 0; i < 10; i++ {
		h.svc.LogAttempt("fp_abc", fn)
	}
	h.svc.FlagIfSuspicious("fp_abc", fn, "repeated negative email lookups", 5, time.Hour, nil)

	// The flag is advisory: a different function for the same identifier
	// still clears its own limit
	if result := h.svc.CheckLimit("fp_abc", "check_email", 5, time.Hour); !result.Allowed {
		t.Error("suspicious flag must not affect rate limit decisions")
	}
}
