package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lumina-api/internal/dto"
	"github.com/noah-isme/lumina-api/internal/handler"
)

type mockActivityQueryService struct {
	lastListReq dto.ActivityListRequest
	listResp    dto.ActivityListResponse
	exportResp  dto.ActivityExport
	statsResp   dto.ActivityStatsResponse
	err         error
}

func (m *mockActivityQueryService) List(_ context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	m.lastListReq = req
	if m.err != nil {
		return dto.ActivityListResponse{}, m.err
	}
	return m.listResp, nil
}

func (m *mockActivityQueryService) Export(_ context.Context, req dto.ActivityListRequest) (dto.ActivityExport, error) {
	m.lastListReq = req
	if m.err != nil {
		return dto.ActivityExport{}, m.err
	}
	return m.exportResp, nil
}

func (m *mockActivityQueryService) Stats(context.Context) (dto.ActivityStatsResponse, error) {
	if m.err != nil {
		return dto.ActivityStatsResponse{}, m.err
	}
	return m.statsResp, nil
}

func newActivityApp(svc *mockActivityQueryService) *fiber.App {
	app := fiber.New()
	handler.NewAdminActivityHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/admin/activities"))
	return app
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func TestAdminActivityHandler_ListParsesFilters(t *testing.T) {
	svc := &mockActivityQueryService{listResp: dto.ActivityListResponse{
		Items:      []dto.ActivityResponse{{ID: 1, Action: "login"}},
		Pagination: dto.PaginationMeta{Page: 2, PageSize: 50, TotalItems: 1, TotalPages: 1},
	}}
	app := newActivityApp(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/admin/activities?page=2&page_size=50&search=harbour&action=delete&actor_id=7&flagged=true&from=2026-03-01&to=2026-03-09", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 2, svc.lastListReq.Page)
	require.Equal(t, 50, svc.lastListReq.PageSize)
	require.Equal(t, "harbour", svc.lastListReq.Search)
	require.Equal(t, "delete", svc.lastListReq.Action)
	require.Equal(t, uint(7), svc.lastListReq.ActorID)
	require.True(t, svc.lastListReq.FlaggedOnly)
	require.NotNil(t, svc.lastListReq.From)
	require.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), *svc.lastListReq.From)

	// The upper bound covers the whole requested day.
	require.NotNil(t, svc.lastListReq.To)
	require.Equal(t, 9, svc.lastListReq.To.Day())
	require.Equal(t, 23, svc.lastListReq.To.Hour())

	var body struct {
		Success bool                     `json:"success"`
		Data    dto.ActivityListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.Len(t, body.Data.Items, 1)
}

func TestAdminActivityHandler_ListRejectsBadDate(t *testing.T) {
	app := newActivityApp(&mockActivityQueryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activities?from=03-01-2026", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminActivityHandler_ExportSetsDownloadHeaders(t *testing.T) {
	svc := &mockActivityQueryService{exportResp: dto.ActivityExport{
		FileName:    "activity-logs-2026-03-10.csv",
		ContentType: "text/csv",
		Data:        []byte("Date,Time\n"),
	}}
	app := newActivityApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activities/export", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))
	require.Equal(t, `attachment; filename="activity-logs-2026-03-10.csv"`, resp.Header.Get(fiber.HeaderContentDisposition))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Date,Time\n", string(data))
}

func TestAdminActivityHandler_Stats(t *testing.T) {
	svc := &mockActivityQueryService{statsResp: dto.ActivityStatsResponse{
		Total:      42,
		Suspicious: 3,
		Trend:      make([]dto.TrendPoint, 7),
	}}
	app := newActivityApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activities/stats", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.ActivityStatsResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, int64(42), body.Data.Total)
	require.Len(t, body.Data.Trend, 7)
}

func TestAdminActivityHandler_ServiceError(t *testing.T) {
	app := newActivityApp(&mockActivityQueryService{err: errors.New("boom")})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/activities", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
