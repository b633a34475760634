package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/correction"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CorrectionHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.CorrectionService
	now               func() time.Time
	logger            *zap.Logger
}

func NewCorrectionHandler(correctionService correction.CorrectionService, now func() time.Time, logger *zap.Logger) CorrectionHandler {
	if now == nil {
		now = time.Now
	}
	return &correctionHandlerImpl{
		correctionService: correctionService,
		now:               now,
		logger:            logger.Named("http.correction"),
	}
}

// Create implements CorrectionHandler.
func (h *correctionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req correction.CreateCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode correction request", zap.Error(err))
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.correctionService.CreateRequest(r.Context(), p.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", correction.ToResponse(created))
}

// ListMine implements CorrectionHandler.
func (h *correctionHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	p, err := employeeFrom(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := r.URL.Query()
	filter := correction.CorrectionFilter{
		Status: optionalQuery(q.Get("status")),
		Page:   intQuery(q.Get("page")),
		Limit:  intQuery(q.Get("limit")),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	items, total, err := h.correctionService.ListMine(r.Context(), p.EmployeeID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, correction.ToListResponse(items, total, filter.Page, filter.Limit))
}

// ListAll implements CorrectionHandler.
func (h *correctionHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := correction.CorrectionFilter{
		EmployeeID:   optionalQuery(q.Get("employee_id")),
		EmployeeName: optionalQuery(q.Get("employee_name")),
		Status:       optionalQuery(q.Get("status")),
		Page:         intQuery(q.Get("page")),
		Limit:        intQuery(q.Get("limit")),
	}
	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	items, total, err := h.correctionService.ListAll(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, correction.ToListResponse(items, total, filter.Page, filter.Limit))
}

// Get implements CorrectionHandler. Reviewers see every request, everyone
// else only their own.
func (h *correctionHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.HandleError(w, correction.ErrCorrectionNotFound)
		return
	}

	req, err := h.correctionService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !p.Can(user.PermissionCorrectionReview) && req.EmployeeID != p.EmployeeID {
		response.HandleError(w, correction.ErrForbidden)
		return
	}

	response.Success(w, correction.ToResponse(req))
}

// Approve implements CorrectionHandler.
func (h *correctionHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Approve, "Correction request approved")
}

// Reject implements CorrectionHandler.
func (h *correctionHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.correctionService.Reject, "Correction request rejected")
}

type reviewFunc func(ctx context.Context, id, reviewerID string, notes *string, now time.Time) (correction.CorrectionRequest, error)

func (h *correctionHandlerImpl) review(w http.ResponseWriter, r *http.Request, fn reviewFunc, message string) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	id := chi.URLParam(r, "id")
	if !validator.IsValidUUID(id) {
		response.HandleError(w, correction.ErrCorrectionNotFound)
		return
	}

	// The body is optional.
	var req correction.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("failed to decode review request", zap.Error(err))
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	reviewed, err := fn(r.Context(), id, p.UserID, req.Notes, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, correction.ToResponse(reviewed))
}
