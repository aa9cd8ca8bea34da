// Package server exposes a ticket store over the query-string protocol
// the board speaks: a single endpoint whose "method" parameter selects
// the operation.
package server

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Madmaxim22/HelpDesk/internal/model"
	"github.com/Madmaxim22/HelpDesk/internal/source/ticketapi"
	"github.com/Madmaxim22/HelpDesk/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	// Token, when set, is required as a Bearer credential on every request.
	Token string

	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
}

// Handler serves ticket operations from a store.
type Handler struct {
	store store.Store
	log   zerolog.Logger
	opts  Options
}

// New creates a Handler.
func New(s store.Store, logger zerolog.Logger, opts Options) *Handler {
	return &Handler{
		store: s,
		log:   logger.With().Str("component", "server").Logger(),
		opts:  opts,
	}
}

// Router builds the gin engine serving the ticket endpoint at "/".
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.requestLogger(), cors.New(h.corsConfig()))
	if h.opts.Token != "" {
		r.Use(h.requireToken())
	}
	r.Any("/", h.dispatch)
	return r
}

func (h *Handler) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(h.opts.AllowedOrigins) == 0 || slices.Contains(h.opts.AllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.opts.AllowedOrigins
	}
	return cfg
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Info().
			Str("method", c.Request.Method).
			Str("op", c.Query("method")).
			Str("id", c.Query("id")).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

func (h *Handler) requireToken() gin.HandlerFunc {
	want := []byte("Bearer " + h.opts.Token)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// dispatch routes a request by its "method" query parameter.
func (h *Handler) dispatch(c *gin.Context) {
	op := c.Query("method")
	switch op {
	case ticketapi.OpAllTickets:
		if h.allow(c, http.MethodGet) {
			h.listTickets(c)
		}
	case ticketapi.OpTicketByID:
		if h.allow(c, http.MethodGet) {
			h.getTicket(c)
		}
	case ticketapi.OpCreateTicket:
		if h.allow(c, http.MethodPost) {
			h.createTicket(c)
		}
	case ticketapi.OpUpdateByID:
		if h.allow(c, http.MethodPost) {
			h.updateTicket(c)
		}
	case ticketapi.OpDeleteByID:
		if h.allow(c, http.MethodGet, http.MethodDelete) {
			h.deleteTicket(c)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown method " + op})
	}
}

// allow writes 405 and returns false unless the request uses one of methods.
func (h *Handler) allow(c *gin.Context, methods ...string) bool {
	if slices.Contains(methods, c.Request.Method) {
		return true
	}
	c.Header("Allow", strings.Join(methods, ", "))
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	return false
}

// ticketID reads the required id parameter, answering 400 when it is absent.
func ticketID(c *gin.Context) (string, bool) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing id"})
		return "", false
	}
	return id, true
}

func (h *Handler) listTickets(c *gin.Context) {
	records, err := h.store.ListTickets(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) getTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	record, err := h.store.GetTicket(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) createTicket(c *gin.Context) {
	var body model.Transport
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	record, err := h.store.CreateTicket(c.Request.Context(), body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) updateTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	var body model.Transport
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}
	record, err := h.store.UpdateTicket(c.Request.Context(), id, body)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) deleteTicket(c *gin.Context) {
	id, ok := ticketID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTicket(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps store errors to response statuses.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("op", c.Query("method")).Msg("store failure")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
