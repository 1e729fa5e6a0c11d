package handlers

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wallet-server/apierr"
	"wallet-server/auth"
	"wallet-server/middleware"
	"wallet-server/models"
	"wallet-server/repository"
)

// PriceCache holds recently read asset prices.
type PriceCache interface {
	GetPrice(ctx context.Context, symbol string) (*models.AssetPrice, bool, error)
	SetPrice(ctx context.Context, p models.AssetPrice) error
	DeletePrice(ctx context.Context, symbol string) error
}

// TokenRevoker remembers refresh token ids that may no longer be used.
// Revoke reports false when the id was already revoked.
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
}

type Deps struct {
	Store  *repository.Store
	Issuer *auth.Issuer
	// Prices may be nil; lookups then always hit the database.
	Prices PriceCache
	// Revoker may be nil; refresh tokens are then stateless.
	Revoker     TokenRevoker
	Log         logrus.FieldLogger
	RequireAuth bool
	AuthLimiter *middleware.RateLimiter
	// TrustedProxies may set X-Forwarded-For; empty trusts nobody and the
	// client IP is the socket peer.
	TrustedProxies []string
}

type Handler struct {
	store   *repository.Store
	issuer  *auth.Issuer
	prices  PriceCache
	revoker TokenRevoker
	log     logrus.FieldLogger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		store:   d.Store,
		issuer:  d.Issuer,
		prices:  d.Prices,
		revoker: d.Revoker,
		log:     log,
	}
}

// maxIntegerDigits and maxFractionDigits bound decimals to NUMERIC(16,8).
const (
	maxIntegerDigits  = 8
	maxFractionDigits = 8
	maxDecimalLength  = 32
)

var (
	maxDecimal = decimal.New(1, maxIntegerDigits)
	// plain notation only; exponents are rejected before any arithmetic
	plainDecimal = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

func parseDecimal(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxDecimalLength {
		return decimal.Decimal{}, apierr.BadRequest(fmt.Errorf("%s: longer than %d characters", field, maxDecimalLength))
	}
	if !plainDecimal.MatchString(s) {
		return decimal.Decimal{}, apierr.BadRequest(fmt.Errorf("%s: %q is not a plain decimal", field, s))
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, apierr.BadRequest(fmt.Errorf("%s: %w", field, err))
	}
	if !d.Equal(d.Truncate(maxFractionDigits)) {
		return decimal.Decimal{}, apierr.BadRequest(fmt.Errorf("%s: more than %d fractional digits", field, maxFractionDigits))
	}
	if d.Abs().GreaterThanOrEqual(maxDecimal) {
		return decimal.Decimal{}, apierr.BadRequest(fmt.Errorf("%s: more than %d integer digits", field, maxIntegerDigits))
	}
	return d, nil
}

// parseOptionalDecimal treats an empty string as zero.
func parseOptionalDecimal(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(field, s)
}

func parseDecimalPtr(field string, s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := parseDecimal(field, *s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apierr.BadRequest(fmt.Errorf("invalid id %q", c.Param("id")))
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, apierr.BadRequest(fmt.Errorf("missing %s query parameter", name))
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierr.BadRequest(fmt.Errorf("invalid %s %q", name, raw))
	}
	return id, nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apierr.BadRequest(err)
	}
	return nil
}

// classify maps repository errors the handler can name; the rest stay internal.
func classify(err error, conflictMsg string) error {
	var e *apierr.Error
	if errors.As(err, &e) {
		return e
	}
	if conflictMsg != "" && repository.IsUniqueViolation(err) {
		return apierr.Conflict(conflictMsg)
	}
	return apierr.Internal(err)
}
