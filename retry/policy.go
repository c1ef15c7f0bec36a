package retry

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
)

// ErrInvalidPolicy is returned when a Policy is constructed with out-of-range arguments.
var ErrInvalidPolicy = errors.New("invalid retry policy")

const (
	// KindGoogleAPI classifies errors returned by the Google REST client libraries.
	KindGoogleAPI = "googleapi"
	// KindGRPC classifies gRPC status errors.
	KindGRPC = "grpc"
)

// Classification is the (kind, code) pair an error is reduced to before a retry decision.
type Classification struct {
	Kind string
	Code int
}

func (c Classification) String() string {
	return c.Kind + ":" + strconv.Itoa(c.Code)
}

// ParseClassification parses the "kind:code" form produced by Classification.String.
func ParseClassification(s string) (Classification, error) {
	kind, code, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || kind == "" {
		return Classification{}, fmt.Errorf("%w: classification %q must be kind:code", ErrInvalidPolicy, s)
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return Classification{}, fmt.Errorf("%w: classification %q: %v", ErrInvalidPolicy, s, err)
	}
	return Classification{Kind: kind, Code: n}, nil
}

var (
	// QuotaRequests is the Sheets "too many requests" quota error.
	QuotaRequests = Classification{Kind: KindGoogleAPI, Code: http.StatusTooManyRequests}
	// QuotaQPS is the per-user rate limit reported by Drive as 403.
	QuotaQPS = Classification{Kind: KindGoogleAPI, Code: http.StatusForbidden}
	// ResourceExhausted is the gRPC equivalent of a quota error.
	ResourceExhausted = Classification{Kind: KindGRPC, Code: int(codes.ResourceExhausted)}
	// Unavailable is a gRPC transient backend failure.
	Unavailable = Classification{Kind: KindGRPC, Code: int(codes.Unavailable)}
)

// Policy describes how many times an operation is attempted, how long to wait between attempts and
// which failures are worth another attempt.
type Policy struct {
	maxAttempts  int
	initialDelay time.Duration
	multiplier   float64
	retryable    map[Classification]bool
}

// NewPolicy validates and builds a Policy.
//
// maxAttempts must be at least 1, initialDelay greater than 0 and multiplier greater than 1.
func NewPolicy(maxAttempts int, initialDelay time.Duration, multiplier float64, retryable ...Classification) (*Policy, error) {
	if maxAttempts < 1 {
		return nil, fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, maxAttempts)
	}
	if initialDelay <= 0 {
		return nil, fmt.Errorf("%w: initial delay must be greater than 0, got %s", ErrInvalidPolicy, initialDelay)
	}
	if !(multiplier > 1) {
		return nil, fmt.Errorf("%w: backoff multiplier must be greater than 1, got %v", ErrInvalidPolicy, multiplier)
	}
	p := &Policy{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		multiplier:   multiplier,
		retryable:    make(map[Classification]bool, len(retryable)),
	}
	for _, c := range retryable {
		p.retryable[c] = true
	}
	return p, nil
}

// DefaultPolicy retries Sheets quota errors 15 times, starting at 2 seconds and doubling.
func DefaultPolicy() *Policy {
	p, _ := NewPolicy(15, 2*time.Second, 2, QuotaRequests)
	return p
}

// DrivePolicy is DefaultPolicy extended with the Drive per-user rate limit.
func DrivePolicy() *Policy {
	p, _ := NewPolicy(15, 2*time.Second, 2, QuotaRequests, QuotaQPS)
	return p
}

// MaxAttempts returns the total number of attempts, the first one included.
func (p *Policy) MaxAttempts() int { return p.maxAttempts }

// InitialDelay returns the wait before the second attempt.
func (p *Policy) InitialDelay() time.Duration { return p.initialDelay }

// Multiplier returns the factor applied to the delay after every wait.
func (p *Policy) Multiplier() float64 { return p.multiplier }

// Retryable reports whether c is in the retryable set.
func (p *Policy) Retryable(c Classification) bool {
	return p.retryable[c]
}

// RetryableSet returns the retryable classifications in a stable order.
func (p *Policy) RetryableSet() []Classification {
	set := make([]Classification, 0, len(p.retryable))
	for c := range p.retryable {
		set = append(set, c)
	}
	sort.Slice(set, func(i, j int) bool {
		if set[i].Kind != set[j].Kind {
			return set[i].Kind < set[j].Kind
		}
		return set[i].Code < set[j].Code
	})
	return set
}

// Delay returns the wait after the i-th failed attempt (0 based): initialDelay * multiplier^i.
func (p *Policy) Delay(i int) time.Duration {
	d := float64(p.initialDelay)
	for ; i > 0; i-- {
		d *= p.multiplier
	}
	return time.Duration(d)
}
