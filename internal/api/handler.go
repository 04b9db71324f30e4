package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"homedash/internal/diagnostics"
	"homedash/internal/metrics"
	"homedash/internal/notification"
	"homedash/internal/store"
	"homedash/internal/view"
)

// Handler holds shared dependencies for page and API handlers.
type Handler struct {
	store    store.Store
	prober   diagnostics.Prober
	notifier notification.Dispatcher
	webpush  *webpush.Options
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// Deps are the collaborators of a Handler. Nil Prober, Notifier and Log
// fall back to RandomProber, notification.Noop and a no-op logger.
type Deps struct {
	Store    store.Store
	Prober   diagnostics.Prober
	Notifier notification.Dispatcher
	WebPush  *webpush.Options
	Metrics  *metrics.Metrics
	Log      *zap.Logger
}

// NewHandler creates a new handler.
func NewHandler(d Deps) *Handler {
	h := &Handler{
		store:    d.Store,
		prober:   d.Prober,
		notifier: d.Notifier,
		webpush:  d.WebPush,
		metrics:  d.Metrics,
		log:      d.Log,
	}
	if h.prober == nil {
		h.prober = diagnostics.RandomProber{}
	}
	if h.notifier == nil {
		h.notifier = notification.Noop{}
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// pathID parses the :id path parameter, answering 400 when it is not an integer.
func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		h.renderError(c, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

// storeFailed logs err and answers 404 for store.ErrNotFound, 500 otherwise.
func (h *Handler) storeFailed(c *gin.Context, msg string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.renderError(c, http.StatusNotFound, "Not found", err)
		return
	}
	h.renderError(c, http.StatusInternalServerError, msg, err)
}

func (h *Handler) renderError(c *gin.Context, status int, msg string, err error) {
	h.log.Error(msg,
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	c.HTML(status, view.Error, gin.H{"Status": status, "Message": msg})
	c.Abort()
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}
