package function

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/systmms/keyvault-middleware/internal/config"
	dserrors "github.com/systmms/keyvault-middleware/internal/errors"
	"github.com/systmms/keyvault-middleware/internal/keyvault"
	"github.com/systmms/keyvault-middleware/internal/logging"
	"github.com/systmms/keyvault-middleware/internal/metrics"
)

// Route is where the Functions host forwards GetSecret invocations
const Route = "/api/GetSecret"

// SecretGetter fetches a secret value by full secret identifier
type SecretGetter interface {
	GetSecret(ctx context.Context, identifier string) (string, error)
}

// Handler serves GetSecret
type Handler struct {
	vaultURL string
	timeout  time.Duration
	secrets  SecretGetter
	logger   *logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures a Handler
type Option func(*Handler)

// WithMetrics records request and vault metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithClock replaces time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// NewHandler creates the GetSecret handler. The vault URL is read from cfg
// once; an empty URL is reported to every caller as 424.
func NewHandler(cfg *config.Config, secrets SecretGetter, opts ...Option) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.New(cfg.Debug, cfg.NoColor)
	}

	h := &Handler{
		vaultURL: cfg.VaultURL,
		timeout:  cfg.RequestTimeout,
		secrets:  secrets,
		logger:   logger.Named("GetSecret"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	key := r.URL.Query().Get("key")

	var resp Response
	defer func() {
		if p := recover(); p != nil {
			h.logger.Error("Recovered from panic serving key=%q: %v", key, p)
			resp = errorResponse(http.StatusInternalServerError, CategoryInternal, fmt.Sprint(p))
			_ = WriteJSON(w, resp.Status, resp.Body)
		}

		elapsed := h.now().Sub(start)
		h.metrics.RecordRequest(resp.Status, elapsed.Seconds())
		h.logger.Info("%s %s key=%q status=%d duration=%s", r.Method, r.URL.Path, key, resp.Status, elapsed)
	}()

	switch r.Method {
	case http.MethodGet, http.MethodPost:
		resp = h.Handle(r.Context(), key)
	default:
		w.Header().Set("Allow", "GET, POST")
		resp = errorResponse(http.StatusMethodNotAllowed, CategoryMethodNotAllowed,
			fmt.Sprintf("Method %s is not supported, use GET or POST", r.Method))
	}

	if err := WriteJSON(w, resp.Status, resp.Body); err != nil {
		h.logger.Warn("Failed to write response for key=%q: %v", key, err)
	}
}

// Handle resolves key to a Response. It never returns an error: every
// failure is mapped to an error envelope.
func (h *Handler) Handle(ctx context.Context, key string) Response {
	if key == "" {
		return errorResponse(http.StatusBadRequest, CategoryMissingParameter, MessageMissingParameter)
	}

	if h.vaultURL == "" {
		h.logger.Warn("Key Vault URL is not configured; set %s in the Function App settings", config.EnvVaultURL)
		return errorResponse(http.StatusFailedDependency, CategoryNotConfigured, MessageNotConfigured)
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := h.now()
	value, err := h.secrets.GetSecret(ctx, keyvault.ComposeSecretID(h.vaultURL, key))
	elapsed := h.now().Sub(start).Seconds()

	if err == nil {
		h.metrics.RecordVaultCall("", elapsed)
		h.logger.Debug("Retrieved secret key=%q value=%s", key, logging.Secret(value))
		return Response{Status: http.StatusOK, Body: SecretResponse{Key: key, Secret: value}}
	}

	kind := dserrors.Classify(err)
	h.metrics.RecordVaultCall(kind.String(), elapsed)

	switch kind {
	case dserrors.KindNotFound:
		h.logger.Warn("Secret key=%q not found", key)
		return errorResponse(http.StatusNotFound, CategoryNotFound, NotFoundMessage(key))
	case dserrors.KindForbidden:
		h.logger.Warn("Access to key=%q forbidden: %s", key, dserrors.Suggestion(err))
		return errorResponse(http.StatusForbidden, CategoryForbidden, MessageForbidden)
	default:
		h.logger.Error("Key Vault call for key=%q failed: %v\n  Try: %s", key, err, dserrors.Suggestion(err))
		return errorResponse(http.StatusInternalServerError, CategoryInternal, err.Error())
	}
}
