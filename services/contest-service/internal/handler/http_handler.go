package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"dailyart/services/contest-service/internal/imagestore"
	"dailyart/services/contest-service/internal/middleware"
	"dailyart/services/contest-service/internal/service"
	"dailyart/shared/pkg/auth"
	"dailyart/shared/pkg/helpers"
	"dailyart/shared/pkg/metrics"
)

// ImageOpener streams stored images.
type ImageOpener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

// HTTPHandler mirrors ContestServiceServer over JSON/HTTP.
type HTTPHandler struct {
	api       ContestServiceServer
	images    ImageOpener
	maxUpload int64
	health    func(ctx context.Context) error
}

// NewHTTPHandler builds the HTTP surface. health may be nil.
func NewHTTPHandler(api ContestServiceServer, images ImageOpener, maxUpload int64, health func(ctx context.Context) error) *HTTPHandler {
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &HTTPHandler{api: api, images: images, maxUpload: maxUpload, health: health}
}

// Routes registers every endpoint on a new mux. m and gatherer may be nil.
func (h *HTTPHandler) Routes(validator auth.TokenValidator, m *metrics.Metrics, gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(validator)
	guest := middleware.Guest(validator)

	handle := func(pattern string, fn http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
		if m != nil {
			mws = append([]func(http.Handler) http.Handler{metrics.HTTPMiddleware(m, pattern)}, mws...)
		}
		mux.Handle(pattern, middleware.Chain(fn, mws...))
	}

	handle("POST /api/contest/submissions", h.SubmitEntry, requireAuth)
	handle("POST /api/contest/votes", h.CastVote, requireAuth)
	handle("GET /api/contest/votes/status", h.GetUserVoteStatus, requireAuth)
	handle("GET /api/contest/winners", h.GetTopN)
	handle("GET /api/contest/entries", h.ListEntries)
	handle("GET /api/contest/prompt", h.GetPrompt)
	handle("POST /api/contest/periods/{period}/close", h.ClosePeriod, requireAuth)

	handle("POST /api/signup", h.Register, guest)
	handle("POST /api/login", h.Login, guest)
	handle("POST /api/logout", h.Logout, requireAuth)
	handle("GET /api/users/{id}", h.GetUser)
	handle("GET /api/generate-password", h.GeneratePassword)

	handle("GET /images/{ref...}", h.Image)
	mux.HandleFunc("GET /health", h.Health)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	return mux
}

func (h *HTTPHandler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+1<<20)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		helpers.WriteValidationErrorResponseFromString(w, "The file field must be an uploaded image")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		helpers.WriteValidationErrorResponseFromString(w, "The file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUpload+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	resp, err := h.api.SubmitEntry(r.Context(), &SubmitEntryRequest{
		Title:    r.FormValue("title"),
		Filename: header.Filename,
		Image:    data,
	})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	var req CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.api.CastVote(r.Context(), &req)
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *HTTPHandler) GetTopN(w http.ResponseWriter, r *http.Request) {
	req := &GetTopNRequest{Period: r.URL.Query().Get("period")}
	if raw := r.URL.Query().Get("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			helpers.WriteValidationErrorResponseFromString(w, "The n field must be a positive integer")
			return
		}
		if n > service.MaxTopN {
			helpers.WriteValidationErrorResponseFromString(w, fmt.Sprintf("The n field must not exceed %d", service.MaxTopN))
			return
		}
		req.N = n
	}
	resp, err := h.api.GetTopN(r.Context(), req)
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetUserVoteStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.api.GetUserVoteStatus(r.Context(), &PeriodRequest{Period: r.URL.Query().Get("period")})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	resp, err := h.api.ListEntries(r.Context(), &PeriodRequest{Period: r.URL.Query().Get("period")})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	resp, err := h.api.GetPrompt(r.Context(), &PeriodRequest{Period: r.URL.Query().Get("period")})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	resp, err := h.api.ClosePeriod(r.Context(), &PeriodRequest{Period: r.PathValue("period")})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.api.Register(r.Context(), &req)
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login also sets the session cookie read by auth.TokenFromRequest.
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.api.Login(r.Context(), &req)
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if _, err := h.api.Logout(r.Context(), &Empty{}); err != nil {
		writeGRPCError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "token", Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	resp, err := h.api.GetUser(r.Context(), &GetUserRequest{UserID: id})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GeneratePassword(w http.ResponseWriter, r *http.Request) {
	resp, err := h.api.GeneratePassword(r.Context(), &Empty{})
	if err != nil {
		writeGRPCError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) Image(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.images.Open(r.Context(), r.PathValue("ref"))
	switch {
	case errors.Is(err, imagestore.ErrInvalidRef), errors.Is(err, imagestore.ErrNotFound):
		writeError(w, http.StatusNotFound, "image not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to open image")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

func writeGRPCError(w http.ResponseWriter, err error) {
	st, ok := status.FromError(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch st.Code() {
	case codes.InvalidArgument:
		helpers.WriteValidationErrorResponseFromString(w, st.Message())
	case codes.Unauthenticated:
		writeError(w, http.StatusUnauthorized, st.Message())
	case codes.PermissionDenied:
		writeError(w, http.StatusForbidden, st.Message())
	case codes.NotFound:
		writeError(w, http.StatusNotFound, st.Message())
	case codes.AlreadyExists, codes.Aborted:
		writeError(w, http.StatusConflict, st.Message())
	case codes.FailedPrecondition:
		writeError(w, http.StatusPreconditionFailed, st.Message())
	case codes.DeadlineExceeded:
		writeError(w, http.StatusGatewayTimeout, st.Message())
	default:
		writeError(w, http.StatusInternalServerError, st.Message())
	}
}
