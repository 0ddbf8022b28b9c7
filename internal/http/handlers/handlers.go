package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fire-triage/backend/internal/db"
	"github.com/fire-triage/backend/internal/geocode"
	"github.com/fire-triage/backend/internal/queue"
)

type Handler struct {
	Store     *db.Store
	Queue     queue.Publisher
	Resolver  *geocode.Resolver
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type UploadSummary struct {
	Parsed   int      `json:"parsed"`
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Enqueued int      `json:"enqueued"`
	Errors   []string `json:"errors"`
}

// @Summary Upload tickets CSV
// @Description Parses the upload, dedups by GUID, creates NEW tickets and enqueues one processing message per created ticket
// @Tags tickets
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "tickets.csv"
// @Success 200 {object} UploadSummary
// @Failure 400 {object} map[string]any
// @Router /api/upload-csv [post]
func (h *Handler) UploadTickets(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file must be .csv", nil)
		return
	}

	tickets, parseErrs := parseTicketsCSV(file)
	summary := UploadSummary{Parsed: len(tickets), Errors: parseErrs}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}

	ctx := c.Request.Context()
	for _, t := range tickets {
		id, created, err := h.Store.CreateTicket(ctx, t)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert ticket", err.Error())
			return
		}
		if !created {
			summary.Skipped++
			continue
		}
		summary.Created++

		if err := h.Queue.PublishTicket(ctx, id); err != nil {
			// ticket stays NEW; the retry endpoint can re-enqueue it
			h.Logger.Error().Err(err).Str("ticket_id", id.String()).Msg("enqueue failed")
			summary.Errors = append(summary.Errors, "enqueue failed for "+id.String())
			continue
		}
		summary.Enqueued++
	}

	c.JSON(http.StatusOK, summary)
}

type ImportManagersSummary struct {
	Parsed   int      `json:"parsed"`
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

// @Summary Import managers CSV
// @Tags managers
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "managers.csv"
// @Success 200 {object} ImportManagersSummary
// @Router /api/import/managers [post]
func (h *Handler) ImportManagers(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)
		return
	}

	ctx := c.Request.Context()
	offices, err := h.Store.ListOffices(ctx)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load offices", err.Error())
		return
	}
	officeByCity := map[string]uuid.UUID{}
	for _, o := range offices {
		officeByCity[strings.ToLower(o.City)] = o.ID
	}

	managers, parseErrs := parseManagersCSV(file, officeByCity)
	summary := ImportManagersSummary{Parsed: len(managers), Errors: parseErrs}
	if summary.Errors == nil {
		summary.Errors = []string{}
	}
	if len(parseErrs) > 0 {
		writeError(c, http.StatusBadRequest, "CSV_PARSE_ERROR", "CSV validation errors", parseErrs)
		return
	}

	inserted, err := h.Store.InsertManagers(ctx, managers)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to insert managers", err.Error())
		return
	}
	summary.Inserted = int(inserted)
	c.JSON(http.StatusOK, summary)
}

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Router /api/tickets [get]
func (h *Handler) TicketsList(c *gin.Context) {
	priorityMin, _ := strconv.Atoi(c.DefaultQuery("priority_min", "1"))
	priorityMax, _ := strconv.Atoi(c.DefaultQuery("priority_max", "10"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListTickets(c.Request.Context(), db.TicketFilter{
		Status:      strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		Office:      strings.TrimSpace(c.Query("office")),
		Type:        strings.TrimSpace(c.Query("type")),
		Language:    strings.ToUpper(strings.TrimSpace(c.Query("language"))),
		PriorityMin: priorityMin,
		PriorityMax: priorityMax,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list tickets", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary Ticket details
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Router /api/tickets/{id} [get]
func (h *Handler) TicketDetail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid ticket id", nil)
		return
	}
	t, err := h.Store.TicketByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get ticket", err.Error())
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Retry a failed ticket
// @Description Resets a FAILED ticket to NEW and enqueues it again
// @Tags tickets
// @Produce json
// @Param id path string true "Ticket ID"
// @Router /api/tickets/{id}/retry [post]
func (h *Handler) RetryTicket(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid ticket id", nil)
		return
	}

	ctx := c.Request.Context()
	reset, err := h.Store.ResetForRetry(ctx, id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reset ticket", err.Error())
		return
	}
	if !reset {
		t, err := h.Store.TicketByID(ctx, id)
		if errors.Is(err, db.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Ticket not found", nil)
			return
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load ticket", err.Error())
			return
		}
		writeError(c, http.StatusConflict, "INVALID_STATE", "Only FAILED tickets can be retried", gin.H{"status": t.Status})
		return
	}

	if err := h.Queue.PublishTicket(ctx, id); err != nil {
		writeError(c, http.StatusInternalServerError, "QUEUE_ERROR", "Ticket reset but enqueue failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Aggregate stats
// @Tags stats
// @Produce json
// @Router /api/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute stats", err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

// @Summary List managers
// @Tags managers
// @Produce json
// @Router /api/managers [get]
func (h *Handler) ManagersList(c *gin.Context) {
	office := strings.TrimSpace(c.Query("office"))
	skill := strings.ToUpper(strings.TrimSpace(c.Query("skill")))
	items, err := h.Store.ListManagers(c.Request.Context(), office, skill)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list managers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary List offices
// @Tags offices
// @Produce json
// @Router /api/offices [get]
func (h *Handler) OfficesList(c *gin.Context) {
	items, err := h.Store.ListOffices(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list offices", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type NearestOfficeRequest struct {
	Address string `json:"address" validate:"required"`
}

// @Summary Nearest office for an address
// @Tags geo
// @Accept json
// @Produce json
// @Param request body NearestOfficeRequest true "Address"
// @Router /api/nearest-office [post]
func (h *Handler) NearestOffice(c *gin.Context) {
	var req NearestOfficeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	match, err := h.Resolver.Nearest(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, geocode.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No office found", nil)
			return
		}
		writeError(c, http.StatusBadGateway, "GEO_ERROR", "Geocoding failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"city":        match.Office.City,
		"address":     match.Office.Address,
		"distance_km": roundKm(match.DistanceKm),
	})
}

func roundKm(v float64) float64 {
	return math.Round(v*100) / 100
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
