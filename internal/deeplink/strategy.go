package deeplink

import (
	"context"

	"go.uber.org/zap"

	"github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/internal/domain"
	xerrors "github.com/jabalpuragrawalsabha2019-pixel/jbp-agrawal-sabha/pkg/errors"
)

// SessionSetter establishes a session from a captured token pair.
type SessionSetter interface {
	SetFromTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error)
}

// CodeExchanger trades a PKCE authorization code for a session.
type CodeExchanger interface {
	ExchangeCode(ctx context.Context, code string) (*domain.Session, error)
}

// Strategy captures a session from an incoming callback URL. Which strategy a
// deployment uses is decided once at startup from the provider capability
// flag, never probed per call.
type Strategy interface {
	Capture(ctx context.Context, rawURL string) (*domain.Session, error)
}

// ManualExtraction parses tokens straight out of the URL and hands them to the
// session store.
type ManualExtraction struct {
	Setter SessionSetter
	Logger *zap.Logger
}

func (m *ManualExtraction) Capture(ctx context.Context, rawURL string) (*domain.Session, error) {
	pair := ExtractTokens(rawURL)
	if pair == nil {
		m.Logger.Debug("no access_token in callback url")
		return nil, xerrors.ErrInvalidTokens
	}
	return m.Setter.SetFromTokens(ctx, pair.AccessToken, pair.RefreshToken)
}

// ProviderAssistedExtraction lets the provider exchange a PKCE code, falling
// back to manual token extraction for implicit-flow callbacks.
type ProviderAssistedExtraction struct {
	Exchanger CodeExchanger
	Setter    SessionSetter
	Logger    *zap.Logger
}

func (p *ProviderAssistedExtraction) Capture(ctx context.Context, rawURL string) (*domain.Session, error) {
	if code := AuthCode(rawURL); code != "" {
		return p.Exchanger.ExchangeCode(ctx, code)
	}
	manual := ManualExtraction{Setter: p.Setter, Logger: p.Logger}
	return manual.Capture(ctx, rawURL)
}

// NewStrategy resolves the capture strategy from the startup capability flag.
func NewStrategy(providerAssisted bool, exchanger CodeExchanger, setter SessionSetter, logger *zap.Logger) Strategy {
	if providerAssisted {
		return &ProviderAssistedExtraction{Exchanger: exchanger, Setter: setter, Logger: logger}
	}
	return &ManualExtraction{Setter: setter, Logger: logger}
}
