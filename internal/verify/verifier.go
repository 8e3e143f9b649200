// Package verify checks a submitted phone number against the approved-members
// registry. Verification is an enhancement, not a gate: a registry outage and
// a genuine "not found" are deliberately indistinguishable, and both let
// signup continue unverified.
package verify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/retry"
)

// RegistryLookup queries the approved_members table. A zero-row result is
// (nil, nil), not an error.
type RegistryLookup interface {
	FindByPhone(ctx context.Context, phone string) (*domain.ApprovedMember, error)
}

type Verifier struct {
	lookup RegistryLookup
	clock  retry.Clock
	policy retry.Policy
	logger *zap.Logger
}

func NewVerifier(lookup RegistryLookup, clock retry.Clock, policy retry.Policy, logger *zap.Logger) *Verifier {
	// The caller's schedule must degrade instead of failing; force it.
	policy.NonBlocking = true
	return &Verifier{lookup: lookup, clock: clock, policy: policy, logger: logger}
}

// Verify resolves to a terminal outcome and never returns an error. Network
// failures, timeouts and absent rows all yield an unmatched outcome.
func (v *Verifier) Verify(ctx context.Context, phone string) domain.VerificationOutcome {
	clean := NormalizePhone(phone)

	matched, err := retry.Invoke(ctx, v.clock, v.policy, func(ctx context.Context) (*domain.ApprovedMember, error) {
		return v.lookup.FindByPhone(ctx, clean)
	})
	if err != nil {
		// Unreachable with a non-blocking policy; kept so a policy change
		// cannot silently start surfacing registry errors.
		v.logger.Warn("registry lookup failed, treating as unverified", zap.Error(err))
		return domain.VerificationOutcome{}
	}

	if matched == nil {
		v.logger.Info("phone not matched in registry", zap.String("phone", clean))
	}
	return domain.VerificationOutcome{Matched: matched}
}

// NormalizePhone strips everything but digits before lookup.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
