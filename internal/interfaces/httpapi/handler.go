package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tullogher/gaa-fixtures/internal/domain/fixture"
	"github.com/tullogher/gaa-fixtures/internal/platform/logging"
	"github.com/tullogher/gaa-fixtures/internal/usecase"
)

type Handler struct {
	fixtureService *usecase.FixtureService
	refreshService *usecase.RefreshService
	logger         *logging.Logger
}

func NewHandler(
	fixtureService *usecase.FixtureService,
	refreshService *usecase.RefreshService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		fixtureService: fixtureService,
		refreshService: refreshService,
		logger:         logger,
	}
}

type fixtureDTO struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	DateText    string `json:"date_text"`
	Competition string `json:"competition"`
	HomeTeam    string `json:"home_team"`
	AwayTeam    string `json:"away_team"`
	Time        string `json:"time,omitempty"`
	Venue       string `json:"venue,omitempty"`
	Referee     string `json:"referee,omitempty"`
}

type fixtureListDTO struct {
	Fixtures []fixtureDTO `json:"fixtures"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

func fixtureToDTO(record fixture.Record) fixtureDTO {
	return fixtureDTO{
		ID:          record.ID,
		Date:        record.DateKey,
		DateText:    record.DateText,
		Competition: record.Competition,
		HomeTeam:    record.HomeTeam,
		AwayTeam:    record.AwayTeam,
		Time:        record.TimeText,
		Venue:       record.Venue,
		Referee:     record.Referee,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	health, err := h.refreshService.Health(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "health check failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, health)
}

func (h *Handler) ListFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFixtures")
	defer span.End()

	params, err := parseListParams(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.fixtureService.ListFixtures(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "list fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]fixtureDTO, 0, len(result.Fixtures))
	for _, record := range result.Fixtures {
		items = append(items, fixtureToDTO(record))
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureListDTO{
		Fixtures: items,
		Total:    result.Total,
		Limit:    result.Limit,
		Offset:   result.Offset,
	})
}

func parseListParams(r *http.Request) (usecase.ListFixturesParams, error) {
	query := r.URL.Query()
	params := usecase.ListFixturesParams{
		Venue:       query.Get("venue"),
		Competition: query.Get("competition"),
	}

	var err error
	if params.Limit, err = queryInt(query.Get("limit")); err != nil {
		return usecase.ListFixturesParams{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
	}
	if params.Offset, err = queryInt(query.Get("offset")); err != nil {
		return usecase.ListFixturesParams{}, fmt.Errorf("%w: offset must be an integer", usecase.ErrInvalidInput)
	}

	if raw := strings.TrimSpace(query.Get("include_past")); raw != "" {
		includePast, err := strconv.ParseBool(raw)
		if err != nil {
			return usecase.ListFixturesParams{}, fmt.Errorf("%w: include_past must be a boolean", usecase.ErrInvalidInput)
		}
		params.IncludePast = includePast
	}

	return params, nil
}

func queryInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func (h *Handler) GetFixture(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFixture")
	defer span.End()

	id, err := strconv.ParseInt(r.PathValue("fixtureID"), 10, 64)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: fixture id must be an integer", usecase.ErrInvalidInput))
		return
	}

	record, err := h.fixtureService.GetFixture(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "get fixture failed", "fixture_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixtureToDTO(record))
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListVenues")
	defer span.End()

	venues, err := h.fixtureService.ListVenues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list venues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string][]string{"venues": venues})
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	competitions, err := h.fixtureService.ListCompetitions(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string][]string{"competitions": competitions})
}

func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Calendar")
	defer span.End()

	params := usecase.CalendarFeedParams{
		Venue:       r.URL.Query().Get("venue"),
		Competition: r.URL.Query().Get("competition"),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("include_past")); raw != "" {
		includePast, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: include_past must be a boolean", usecase.ErrInvalidInput))
			return
		}
		params.IncludePast = includePast
	}

	feed, err := h.fixtureService.CalendarFeed(ctx, params)
	if err != nil {
		h.logger.WarnContext(ctx, "calendar feed failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fixtures.ics"`)
	w.Header().Set("Cache-Control", "max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(feed)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Refresh")
	defer span.End()

	summary, err := h.refreshService.Refresh(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "manual refresh failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, refreshSummaryDTO{
		Inserted:   summary.Inserted,
		Updated:    summary.Updated,
		Unchanged:  summary.Unchanged,
		Skipped:    summary.Skipped,
		DurationMS: summary.Duration.Milliseconds(),
	})
}

type refreshSummaryDTO struct {
	Inserted   int   `json:"inserted"`
	Updated    int   `json:"updated"`
	Unchanged  int   `json:"unchanged"`
	Skipped    int   `json:"skipped"`
	DurationMS int64 `json:"duration_ms"`
}
