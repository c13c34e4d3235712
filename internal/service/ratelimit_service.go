package service

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/model"
	"github.com/fannycoste08/friend-ticket-deal-sub000/internal/repository"
)

// Identifier used when the caller's IP or headers are missing or malformed.
// Defaulting keeps the request alive; all anonymous callers then share one
// bucket, which over-throttles rather than failing the request.
const UnknownIdentifier = "unknown"

// CheckResult is the outcome of a rate-limit check
type CheckResult struct {
	Allowed bool   `json:"allowed"`
	Error   string `json:"error,omitempty"`
}

// RateLimitService throttles abusable, mostly-unauthenticated operations.
// State is implicit in the attempt log: the count of rows newer than
// now-window decides, the window slides continuously, and old rows age out
// of the count without being deleted.
//
// The check and the log are separate calls, not one atomic operation. Two
// concurrent requests from the same identifier can both pass before either
// logs; the overshoot is bounded by in-flight concurrency, so this is
// accepted for the traffic this guards.
type RateLimitService interface {
	// CheckLimit must run before the guarded action. Store failure yields
	// allowed=true: availability wins when the control plane itself is
	// degraded, and an attacker cannot lock everyone out by breaking the
	// attempt store.
	CheckLimit(identifier, functionName string, maxAttempts int, window time.Duration) CheckResult

	// LogAttempt records the attempt after the check, whether or not the
	// guarded action later succeeds. What is throttled is the attempt.
	LogAttempt(identifier, functionName string)

	// CheckRequest applies both identifier spaces for one request: the raw
	// client IP and the session fingerprint. Both must pass.
	CheckRequest(ip, userAgent, acceptLanguage, functionName string, maxAttempts int, window time.Duration) CheckResult

	// LogRequest records the attempt under both identifier spaces.
	LogRequest(ip, userAgent, acceptLanguage, functionName string)

	// FlagIfSuspicious writes an advisory suspicious-activity entry once
	// the attempt count for (identifier, functionName) reaches threshold.
	// It never blocks the request.
	FlagIfSuspicious(identifier, functionName, reason string, threshold int, window time.Duration, metadata map[string]interface{})
}

type rateLimitService struct {
	attemptRepo    repository.AttemptRepository
	suspiciousRepo repository.SuspiciousActivityRepository
	now            func() time.Time
}

func NewRateLimitService(
	attemptRepo repository.AttemptRepository,
	suspiciousRepo repository.SuspiciousActivityRepository,
) RateLimitService {
	return &rateLimitService{
		attemptRepo:    attemptRepo,
		suspiciousRepo: suspiciousRepo,
		now:            time.Now,
	}
}

// CheckLimit counts attempts in the sliding window
func (s *rateLimitService) CheckLimit(identifier, functionName string, maxAttempts int, window time.Duration) CheckResult {
	identifier = sanitizeIdentifier(identifier)

	since := s.now().Add(-window)
	count, err := s.attemptRepo.CountSince(identifier, functionName, since)
	if err != nil {
		// Fail open: a broken attempt store must not take the product down
		log.Printf("Rate limit check failed for %s/%s, allowing request: %v", identifier, functionName, err)
		return CheckResult{Allowed: true}
	}

	if count >= int64(maxAttempts) {
		return CheckResult{
			Allowed: false,
			Error:   "too many attempts, please try again later",
		}
	}

	return CheckResult{Allowed: true}
}

// LogAttempt appends one attempt row
func (s *rateLimitService) LogAttempt(identifier, functionName string) {
	identifier = sanitizeIdentifier(identifier)

	if err := s.attemptRepo.Insert(identifier, functionName); err != nil {
		// Logging the attempt is best-effort; the action already ran its check
		log.Printf("Failed to log attempt for %s/%s: %v", identifier, functionName, err)
	}
}

// CheckRequest requires the IP check AND the fingerprint check to pass
func (s *rateLimitService) CheckRequest(ip, userAgent, acceptLanguage, functionName string, maxAttempts int, window time.Duration) CheckResult {
	if result := s.CheckLimit(ip, functionName, maxAttempts, window); !result.Allowed {
		return result
	}

	fingerprint := SessionFingerprint(ip, userAgent, acceptLanguage)
	return s.CheckLimit(fingerprint, functionName, maxAttempts, window)
}

// LogRequest records the attempt under both identifier spaces
func (s *rateLimitService) LogRequest(ip, userAgent, acceptLanguage, functionName string) {
	s.LogAttempt(ip, functionName)
	s.LogAttempt(SessionFingerprint(ip, userAgent, acceptLanguage), functionName)
}

// FlagIfSuspicious escalates a pattern to the review log without blocking
func (s *rateLimitService) FlagIfSuspicious(identifier, functionName, reason string, threshold int, window time.Duration, metadata map[string]interface{}) {
	identifier = sanitizeIdentifier(identifier)

	since := s.now().Add(-window)
	count, err := s.attemptRepo.CountSince(identifier, functionName, since)
	if err != nil {
		log.Printf("Suspicious-activity count failed for %s/%s: %v", identifier, functionName, err)
		return
	}
	if count < int64(threshold) {
		return
	}

	activity := &model.SuspiciousActivity{
		Identifier:   identifier,
		FunctionName: functionName,
		Reason:       reason,
	}
	if metadata != nil {
		metadata["attempts_in_window"] = count
		if data, err := json.Marshal(metadata); err == nil {
			activity.Metadata = string(data)
		}
	}

	if err := s.suspiciousRepo.Create(activity); err != nil {
		log.Printf("Failed to record suspicious activity for %s/%s: %v", identifier, functionName, err)
	}
}

// SessionFingerprint derives the secondary rate-limit identifier from
// request headers. It is a plain rolling multiply-and-add hash, not a
// security-grade digest: collisions between unrelated users only ever
// over-throttle, and user-agent spoofing defeats it, which is fine for the
// "cheap IP rotation" abuse it exists to catch.
func SessionFingerprint(ip, userAgent, acceptLanguage string) string {
	raw := strings.Join([]string{ip, userAgent, acceptLanguage}, "|")

	var hash uint64
	for _, c := range raw {
		hash = hash*31 + uint64(c)
	}

	return "fp_" + strconv.FormatUint(hash, 36)
}

func sanitizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return UnknownIdentifier
	}
	return identifier
}
