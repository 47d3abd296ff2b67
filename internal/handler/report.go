package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hviet/smile-pos/internal/middleware"
	"github.com/hviet/smile-pos/internal/model"
	"github.com/hviet/smile-pos/internal/repository"
	"github.com/hviet/smile-pos/internal/service"
)

// ReportHandler serves the sales report rows that payment writes.
// Publisher may be nil when the message broker is not configured; the
// sales event is then simply not emitted.
type ReportHandler struct {
	Repo      *repository.ReportRepo
	Cache     *middleware.Cache
	Publisher *service.SalesPublisher
}

// NewReportHandler wires a ReportHandler.
func NewReportHandler(repo *repository.ReportRepo, cache *middleware.Cache, pub *service.SalesPublisher) *ReportHandler {
	return &ReportHandler{Repo: repo, Cache: cache, Publisher: pub}
}

// ListReports handles GET /v1/reports, newest first.
func (h *ReportHandler) ListReports(c echo.Context) error {
	rows, err := h.Repo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// ListReportsByTable handles GET /v1/reports/table/:id.
func (h *ReportHandler) ListReportsByTable(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	rows, err := h.Repo.ListByTable(c.Request().Context(), tableID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, rows)
}

// CreateReport handles POST /v1/reports with a single row.
func (h *ReportHandler) CreateReport(c echo.Context) error {
	var row model.Report
	if err := c.Bind(&row); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if row.ProductName == "" || row.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "product_name and quantity are required"})
	}
	if err := h.Repo.Insert(c.Request().Context(), &row); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create report"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusCreated, row)
}

// CreateReportBatch handles POST /v1/reports/batch: one settled bill,
// one row per dish, inserted atomically.  On success a sales.recorded
// event goes to the broker so downstream consumers (the sales log)
// hear about the settlement; a publish failure is not the caller's
// problem and only logs.
func (h *ReportHandler) CreateReportBatch(c echo.Context) error {
	var body struct {
		Reports []model.Report `json:"reports"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if len(body.Reports) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "reports must not be empty"})
	}
	if err := h.Repo.InsertBatch(c.Request().Context(), body.Reports); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create reports"})
	}
	h.invalidate(c)
	if h.Publisher != nil {
		h.Publisher.PublishSalesRecorded(c.Request().Context(), body.Reports)
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "reports created", "count": len(body.Reports)})
}

// DeleteReport handles DELETE /v1/reports/:id.
func (h *ReportHandler) DeleteReport(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid id"})
	}
	if err := h.Repo.DeleteByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "report not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete report"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "report deleted"})
}

// DeleteAllReports handles DELETE /v1/reports.
func (h *ReportHandler) DeleteAllReports(c echo.Context) error {
	if err := h.Repo.DeleteAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete reports"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "all reports deleted"})
}

func (h *ReportHandler) invalidate(c echo.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(c.Request().Context(), middleware.BucketReports)
	}
}
