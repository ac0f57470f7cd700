package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-cargo-orderform/internal/attachments"
	"github.com/imrishuroy/go-cargo-orderform/internal/form"
	"github.com/imrishuroy/go-cargo-orderform/internal/idempotency"
	"github.com/imrishuroy/go-cargo-orderform/internal/notify"
	"github.com/imrishuroy/go-cargo-orderform/internal/orders"
	"github.com/imrishuroy/go-cargo-orderform/internal/validation"
)

// HandlerConfig groups dependencies for the order form handlers.
type HandlerConfig struct {
	Engine        *validation.Engine
	DateLayout    string
	Subscribers   []form.Subscriber
	Idempotency   *idempotency.Store // optional; enables the Idempotency-Key header on submit
	MaxPhotoBytes int64
	Logger        *zap.SugaredLogger
	NewID         func() string // form session ids; uuid by default
}

type setFieldRequest struct {
	Path  string          `json:"path" validate:"required"`
	Value json.RawMessage `json:"value"`
}

type validateOrderRequest struct {
	Fields map[string]json.RawMessage `json:"fields" validate:"required"`
}

type submitResponse struct {
	SubmissionID string       `json:"submission_id"`
	Order        orders.Order `json:"order"`
	Message      string       `json:"message,omitempty"`
	Error        string       `json:"error,omitempty"`
	Detail       string       `json:"detail,omitempty"`
}

type formsHandler struct {
	cfg      HandlerConfig
	v        *validatorv10.Validate
	sessions *sessions
	logger   *zap.SugaredLogger
}

// requestTimeout bounds how long a submit may spend on subscribers.
const requestTimeout = 10 * time.Second

// RegisterFormRoutes registers the order form routes.
func RegisterFormRoutes(r *gin.Engine, cfg HandlerConfig) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	h := &formsHandler{
		cfg:    cfg,
		v:      validation.New(),
		logger: cfg.Logger,
	}
	h.sessions = newSessions(cfg.NewID, func() *form.Controller {
		return h.newController(cfg.Subscribers...)
	})

	r.POST("/forms", h.openForm)
	r.GET("/forms/:id", h.getForm)
	r.PUT("/forms/:id/fields", h.setField)
	r.POST("/forms/:id/photos", h.uploadPhotos)
	r.POST("/forms/:id/submit", h.submit)
	r.DELETE("/forms/:id", h.closeForm)
	r.POST("/orders/validate", h.validateOrder)
}

func (h *formsHandler) newController(subs ...form.Subscriber) *form.Controller {
	return form.New(h.cfg.Engine,
		form.WithDateLayout(h.cfg.DateLayout),
		form.WithSubscribers(subs...),
		form.WithLogger(h.logger),
	)
}

func (h *formsHandler) openForm(c *gin.Context) {
	id, ctrl := h.sessions.open()
	res := ctrl.Evaluate()

	c.Header("Location", fmt.Sprintf("/forms/%s", id))
	c.JSON(http.StatusCreated, gin.H{"form_id": id, "valid": res.Valid, "errors": res.Errors})
}

func (h *formsHandler) getForm(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}
	res := ctrl.Evaluate()
	c.JSON(http.StatusOK, gin.H{"order": ctrl.Snapshot(), "valid": res.Valid, "errors": res.Errors})
}

func (h *formsHandler) setField(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	var req setFieldRequest
	if err := BindAndValidate(c, &req, h.v); err != nil {
		// BindAndValidate already wrote a 400
		return
	}

	path := orders.FieldPath(req.Path)
	value, err := decodeFieldValue(path, req.Value, h.cfg.MaxPhotoBytes)
	if err != nil {
		writeFieldError(c, err)
		return
	}
	res, err := ctrl.SetField(path, value)
	if err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *formsHandler) uploadPhotos(c *gin.Context) {
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	mf, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_multipart_body", "detail": err.Error()})
		return
	}
	files := mf.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing_photos"})
		return
	}

	photos := make([]orders.Attachment, 0, len(files))
	for _, fh := range files {
		a, err := attachments.FromFileHeader(fh, h.cfg.MaxPhotoBytes)
		if err != nil {
			writeFieldError(c, err)
			return
		}
		photos = append(photos, a)
	}

	res, err := ctrl.AddPhotos(photos...)
	if err != nil {
		writeFieldError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *formsHandler) submit(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()
	id := c.Param("id")
	ctrl, ok := h.lookup(c)
	if !ok {
		return
	}

	idempKey := c.GetHeader("Idempotency-Key")
	store := h.cfg.Idempotency
	if idempKey != "" && store != nil {
		idempKey = id + ":" + idempKey
		proceed, err := h.claim(c, store, idempKey)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return
		}
		if !proceed {
			return
		}
	} else {
		store = nil
	}

	ev, err := ctrl.Submit(ctx)

	var verr *validation.Error
	if errors.As(err, &verr) {
		if store != nil {
			// let the client retry with the same key once the fields are fixed
			h.markFailed(ctx, store, idempKey, "validation_failed")
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation_failed", "fields": verr.Fields})
		return
	}

	status := http.StatusCreated
	resp := submitResponse{SubmissionID: ev.ID, Order: ev.Order, Message: notify.ConfirmationMessage}

	var derr *form.DispatchError
	switch {
	case errors.As(err, &derr):
		// the order was accepted and the form reset; only the notifications failed
		h.logger.Errorw("order notification failed", "form_id", id, "submission_id", ev.ID, "error", derr.Err)
		status = http.StatusAccepted
		resp.Message = ""
		resp.Error = "notification_failed"
		resp.Detail = derr.Err.Error()
	case err != nil:
		if store != nil {
			h.markFailed(ctx, store, idempKey, err.Error())
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "submit_failed", "detail": err.Error()})
		return
	}

	body, _ := json.Marshal(resp)
	if store != nil {
		// the order stands even if the client went away
		if err := store.MarkDone(context.WithoutCancel(ctx), idempKey, ev.ID, body, status); err != nil {
			h.logger.Errorw("failed to record submission response", "idempotency_key", idempKey, "submission_id", ev.ID, "error", err)
		}
	}
	c.Header("Location", fmt.Sprintf("/submissions/%s", ev.ID))
	c.Data(status, "application/json; charset=utf-8", body)
}

func (h *formsHandler) markFailed(ctx context.Context, store *idempotency.Store, key, note string) {
	if err := store.MarkFailed(context.WithoutCancel(ctx), key, note); err != nil {
		h.logger.Errorw("failed to release idempotency key", "idempotency_key", key, "error", err)
	}
}

// claim takes the idempotency key for this request. It returns false after
// writing the response when an earlier request with the same key decides it.
func (h *formsHandler) claim(c *gin.Context, store *idempotency.Store, key string) (bool, error) {
	ctx := c.Request.Context()
	created, err := store.CreateIfNotExists(ctx, key, "")
	if err != nil || created {
		return created, err
	}

	rec, err := store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if rec == nil {
		// expired between the two calls
		return store.CreateIfNotExists(ctx, key, "")
	}

	switch rec.Status {
	case idempotency.StatusDone:
		h.logger.Infow("replaying submission", "idempotency_key", key, "submission_id", rec.SubmissionID)
		c.Data(rec.ResponseStatus, "application/json; charset=utf-8", rec.ResponseBody)
		return false, nil
	case idempotency.StatusInProgress:
		c.JSON(http.StatusConflict, gin.H{"error": "request_in_progress"})
		return false, nil
	case idempotency.StatusFailed:
		store.Delete(key)
		return store.CreateIfNotExists(ctx, key, "")
	default:
		return false, fmt.Errorf("unknown idempotency status %q", rec.Status)
	}
}

func (h *formsHandler) closeForm(c *gin.Context) {
	if !h.sessions.close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "form_not_found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// validateOrder evaluates a whole draft without opening a form session.
func (h *formsHandler) validateOrder(c *gin.Context) {
	var req validateOrderRequest
	if err := BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	ctrl := h.newController()
	res := ctrl.Evaluate()
	for p, raw := range req.Fields {
		path := orders.FieldPath(p)
		value, err := decodeFieldValue(path, raw, h.cfg.MaxPhotoBytes)
		if err != nil {
			writeFieldError(c, err)
			return
		}
		if res, err = ctrl.SetField(path, value); err != nil {
			writeFieldError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, res)
}

func (h *formsHandler) lookup(c *gin.Context) (*form.Controller, bool) {
	ctrl, ok := h.sessions.get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "form_not_found"})
		return nil, false
	}
	return ctrl, true
}

func writeFieldError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orders.ErrUnknownField):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_field", "detail": err.Error()})
	case errors.Is(err, orders.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_value", "detail": err.Error()})
	case errors.Is(err, attachments.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "attachment_too_large", "detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "detail": err.Error()})
	}
}
