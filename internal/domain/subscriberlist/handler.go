package subscriberlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/creatorhub/creatorhub-api/internal/domain/audience"
	"github.com/creatorhub/creatorhub-api/internal/middleware"
	"github.com/creatorhub/creatorhub-api/internal/pkg/errorhandler"
	"github.com/creatorhub/creatorhub-api/internal/pkg/response"
	"github.com/creatorhub/creatorhub-api/internal/pkg/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler handles subscriber list HTTP requests
type Handler struct {
	service    *Service
	dispatcher *Dispatcher
}

// NewHandler creates subscriber list handler
func NewHandler(service *Service, dispatcher *Dispatcher) *Handler {
	return &Handler{service: service, dispatcher: dispatcher}
}

// List handles GET /lists?list_type=&is_active=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var filter ListFilter

	q := r.URL.Query()
	if v := firstParam(q.Get("list_type"), q.Get("listType")); v != "" {
		lt := ListType(v)
		if lt != ListTypeSmart && lt != ListTypeCustom {
			response.ValidationError(w, map[string]string{"list_type": "Invalid list type. Must be: smart or custom"})
			return
		}
		filter.ListType = &lt
	}
	if v := firstParam(q.Get("is_active"), q.Get("isActive")); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			response.ValidationError(w, map[string]string{"is_active": "Must be true or false"})
			return
		}
		filter.IsActive = &active
	}

	lists, err := h.service.ListLists(r.Context(), middleware.GetUserID(r.Context()), filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]*ListResponse, len(lists))
	for i, l := range lists {
		items[i] = ListResponseFromEntity(l)
	}
	response.OK(w, items)
}

// Get handles GET /lists/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	list, err := h.service.GetList(r.Context(), listID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ListResponseFromEntity(list))
}

// Create handles POST /lists
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	list, err := h.service.CreateList(r.Context(), middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, ListResponseFromEntity(list))
}

// Update handles PATCH /lists/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateListRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	list, err := h.service.UpdateList(r.Context(), listID, middleware.GetUserID(r.Context()), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ListResponseFromEntity(list))
}

// Delete handles DELETE /lists/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteList(r.Context(), listID, middleware.GetUserID(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Toggle handles PATCH /lists/{id}/toggle
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	list, err := h.service.ToggleActive(r.Context(), listID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, ListResponseFromEntity(list))
}

// Members handles GET /lists/{id}/members?page=&limit=
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.service.ListMembers(r.Context(), listID, middleware.GetUserID(r.Context()), page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// AddMember handles POST /lists/{id}/members
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	member, err := h.service.AddMember(r.Context(), listID, middleware.GetUserID(r.Context()), req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, member)
}

// AddMembersBulk handles POST /lists/{id}/members/bulk
func (h *Handler) AddMembersBulk(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req AddMembersBulkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	members, err := h.service.AddMembersBulk(r.Context(), listID, middleware.GetUserID(r.Context()), req.UserIDs)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.Created(w, members)
}

// RemoveMember handles DELETE /lists/{id}/members/{userId}
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(w, r, "userId")
	if !ok {
		return
	}

	if err := h.service.RemoveMember(r.Context(), listID, middleware.GetUserID(r.Context()), userID); err != nil {
		h.writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// SendMessage handles POST /lists/{id}/send-message
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	result, err := h.dispatcher.SendMessageToList(r.Context(), listID, middleware.GetUserID(r.Context()), req.Message)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, result)
}

// Preview handles POST /lists/preview-smart
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	preview, err := h.service.PreviewSmartList(r.Context(), middleware.GetUserID(r.Context()), req.Filters)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.OK(w, preview)
}

// Export handles GET /lists/{id}/export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	filename, data, err := h.service.ExportMembers(r.Context(), listID, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	response.File(w, filename, xlsxContentType, data)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *ValidationError

	switch {
	case errors.As(err, &validationErr):
		errorhandler.LogValidationError(r.Context(), validationErr.Fields)
		response.ValidationError(w, validationErr.Fields)
	case errors.Is(err, ErrListNotFound):
		response.NotFound(w, "List not found")
	case errors.Is(err, ErrDuplicateName):
		response.BadRequestCode(w, "DUPLICATE_NAME", "A list with this name already exists")
	case errors.Is(err, ErrDuplicateMember):
		response.BadRequestCode(w, "DUPLICATE_MEMBER", "User is already a member of this list")
	case errors.Is(err, ErrQuotaExceeded):
		response.BadRequestCode(w, "QUOTA_EXCEEDED", "Custom list limit reached")
	case errors.Is(err, ErrNoNewMembers):
		response.BadRequestCode(w, "NO_NEW_MEMBERS", "All users are already members of this list")
	case errors.Is(err, ErrEmptyList):
		response.BadRequestCode(w, "EMPTY_LIST", "List has no members")
	case errors.Is(err, ErrNotCustomList):
		response.BadRequestCode(w, "NOT_CUSTOM_LIST", "Members can only be managed on custom lists")
	case errors.Is(err, ErrFiltersRequired):
		response.BadRequestCode(w, "FILTERS_REQUIRED", "Smart lists require filters")
	case errors.Is(err, ErrUserNotFound):
		response.BadRequestCode(w, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, ErrRateLimited):
		response.TooManyRequests(w)
	case errors.Is(err, audience.ErrResolution):
		errorhandler.HandleError(r.Context(), w, http.StatusInternalServerError, "RESOLUTION_FAILED", "Failed to resolve list members", err)
	default:
		errorhandler.Internal(r.Context(), w, err)
	}
}

// decodeBody writes a 400 and returns false when the body is malformed or carries unknown keys
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := response.DecodeJSON(r.Body, v)
	if err == nil {
		return true
	}
	if field, ok := response.UnknownField(err); ok {
		details := map[string]string{field: "Unknown field"}
		errorhandler.LogValidationError(r.Context(), details)
		response.ValidationError(w, details)
		return false
	}
	response.BadRequest(w, "Invalid JSON body")
	return false
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func firstParam(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
