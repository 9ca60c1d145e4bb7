package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/forge-dashboard/internal/auth"
	"github.com/iliyamo/forge-dashboard/internal/middleware"
	"github.com/iliyamo/forge-dashboard/internal/model"
	"github.com/iliyamo/forge-dashboard/internal/queue"
	"github.com/iliyamo/forge-dashboard/internal/repository"
	queue_publisher "github.com/iliyamo/forge-dashboard/internal/service"
)

// MaintenanceHandler implements the maintenance-request workflow. Any
// authenticated user can submit; viewing someone else's request needs
// the maintenance or superuser role; deleting needs ownership or
// superuser.
type MaintenanceHandler struct {
	Requests *repository.MaintenanceRepo
	Users    *repository.UserRepo
}

func NewMaintenanceHandler(requests *repository.MaintenanceRepo, users *repository.UserRepo) *MaintenanceHandler {
	return &MaintenanceHandler{Requests: requests, Users: users}
}

type createMaintenanceReq struct {
	Title                   string     `json:"title"`
	Description             string     `json:"description"`
	Company                 string     `json:"company"`
	Team                    string     `json:"team"`
	Priority                string     `json:"priority"`
	EquipmentName           string     `json:"equipment_name"`
	Location                string     `json:"location"`
	RequestedCompletionDate *time.Time `json:"requested_completion_date"`
	LastMaintenanceDate     *time.Time `json:"last_maintenance_date"`
	MaintenanceCycleDays    *int       `json:"maintenance_cycle_days"`
	WarrantyStatus          string     `json:"warranty_status"`
	WarrantyExpiryDate      *time.Time `json:"warranty_expiry_date"`
	PartOrderList           string     `json:"part_order_list"`
	Attachments             []string   `json:"attachments"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type maintenancePart struct {
	ID                   uint64     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Company              string     `json:"company,omitempty"`
	Team                 string     `json:"team,omitempty"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	EquipmentName        string     `json:"equipment_name,omitempty"`
	Location             string     `json:"location,omitempty"`
	RequestedCompletion  *time.Time `json:"requested_completion_date,omitempty"`
	LastMaintenanceDate  *time.Time `json:"last_maintenance_date,omitempty"`
	MaintenanceCycleDays *int       `json:"maintenance_cycle_days,omitempty"`
	WarrantyStatus       string     `json:"warranty_status"`
	WarrantyExpiryDate   *time.Time `json:"warranty_expiry_date,omitempty"`
	PartOrderList        string     `json:"part_order_list,omitempty"`
	Attachments          []string   `json:"attachments,omitempty"`
	SubmitterID          uint64     `json:"submitter_id"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

func toMaintenancePart(m *model.MaintenanceRequest) maintenancePart {
	return maintenancePart{
		ID: m.ID, Title: m.Title, Description: m.Description,
		Company: m.Company, Team: m.Team, Priority: m.Priority, Status: m.Status,
		EquipmentName: m.EquipmentName, Location: m.Location,
		RequestedCompletion:  m.RequestedCompletionDate,
		LastMaintenanceDate:  m.LastMaintenanceDate,
		MaintenanceCycleDays: m.MaintenanceCycleDays,
		WarrantyStatus:       m.WarrantyStatus,
		WarrantyExpiryDate:   m.WarrantyExpiryDate,
		PartOrderList:        m.PartOrderList,
		Attachments:          m.Attachments,
		SubmitterID:          m.SubmitterID,
		CompletedAt:          m.CompletedAt,
		CreatedAt:            m.CreatedAt,
	}
}

// Create submits a maintenance request and publishes a notification
// event for superusers. Publishing is best effort: a broker outage must
// not fail the submission.
func (h *MaintenanceHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createMaintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title/description required"})
	}
	if req.Priority != "" && !model.ValidPriority(req.Priority) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid priority"})
	}
	if req.WarrantyStatus != "" && !model.ValidWarrantyStatus(req.WarrantyStatus) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid warranty status"})
	}

	m := &model.MaintenanceRequest{
		Title:                   req.Title,
		Description:             req.Description,
		Company:                 req.Company,
		Team:                    req.Team,
		Priority:                req.Priority,
		EquipmentName:           req.EquipmentName,
		Location:                req.Location,
		RequestedCompletionDate: req.RequestedCompletionDate,
		LastMaintenanceDate:     req.LastMaintenanceDate,
		MaintenanceCycleDays:    req.MaintenanceCycleDays,
		WarrantyStatus:          req.WarrantyStatus,
		WarrantyExpiryDate:      req.WarrantyExpiryDate,
		PartOrderList:           req.PartOrderList,
		Attachments:             req.Attachments,
		SubmitterID:             u.ID,
	}

	ctx := c.Request().Context()
	id, err := h.Requests.Create(ctx, m)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create request failed"})
	}

	h.notifySubmitted(ctx, id, m, u)

	created, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	return c.JSON(http.StatusCreated, toMaintenancePart(created))
}

// notifySubmitted publishes the submission event with the emails of all
// superusers attached. Failures are swallowed after the publisher logs
// them.
func (h *MaintenanceHandler) notifySubmitted(ctx context.Context, id uint64, m *model.MaintenanceRequest, submitter *model.User) {
	users, err := h.Users.List(ctx)
	if err != nil {
		return
	}
	var emails []string
	for i := range users {
		if users[i].IsActive && auth.HasRole(&users[i], auth.RoleSuperuser) {
			emails = append(emails, users[i].Email)
		}
	}
	_ = queue_publisher.PublishMaintenanceSubmitted(ctx, queue.MaintenanceSubmittedEvent{
		RequestID:      id,
		Title:          m.Title,
		Priority:       m.Priority,
		EquipmentName:  m.EquipmentName,
		Location:       m.Location,
		SubmitterID:    submitter.ID,
		SubmitterName:  submitter.FullName,
		SubmitterEmail: submitter.Email,
		NotifyEmails:   emails,
		SubmittedAt:    time.Now().UTC().Format(time.RFC3339),
	})
}

// List returns the caller's own requests, or every request when the
// caller holds the maintenance or superuser role.
func (h *MaintenanceHandler) List(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	var (
		requests []model.MaintenanceRequest
		err      error
	)
	if auth.HasAnyRole(u, auth.MaintenanceViewers) {
		requests, err = h.Requests.List(ctx)
	} else {
		requests, err = h.Requests.ListBySubmitter(ctx, u.ID)
	}
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	out := make([]maintenancePart, 0, len(requests))
	for i := range requests {
		out = append(out, toMaintenancePart(&requests[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one request if the caller owns it or holds a privileged
// role.
func (h *MaintenanceHandler) Get(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	m, err := h.Requests.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	if !auth.CanViewResource(u, m.SubmitterID, auth.MaintenanceViewers) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toMaintenancePart(m))
}

// UpdateStatus moves a request through its lifecycle. Restricted to the
// maintenance and superuser roles at the router.
func (h *MaintenanceHandler) UpdateStatus(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil || !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if err := h.Requests.UpdateStatus(c.Request().Context(), id, req.Status, u.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	m, err := h.Requests.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load request failed"})
	}
	return c.JSON(http.StatusOK, toMaintenancePart(m))
}

// Delete removes a request. Owners and superusers only; the
// maintenance role can work requests but not erase someone else's.
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	m, err := h.Requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "request not found"})
		}
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "service unavailable"})
	}
	if !auth.CanViewResource(u, m.SubmitterID, auth.SuperuserOnly) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Requests.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
