package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/UkralStul/circle-replies-service/internal/auth"
	"github.com/UkralStul/circle-replies-service/internal/dataloader"
	"github.com/UkralStul/circle-replies-service/internal/domain"
	"github.com/UkralStul/circle-replies-service/internal/reply"
	"github.com/UkralStul/circle-replies-service/internal/storage"
)

const maxBodyBytes = 64 << 10

// ReplyService - операции, которые HTTP-слой вызывает у сервиса ответов.
type ReplyService interface {
	Create(ctx context.Context, authorID string, in reply.CreateInput) (*domain.Page, error)
	List(ctx context.Context, in reply.ListInput) (*domain.Page, error)
}

// Handler обслуживает /replies.
type Handler struct {
	replies ReplyService
	log     *slog.Logger
}

func NewHandler(replies ReplyService, log *slog.Logger) *Handler {
	return &Handler{replies: replies, log: log}
}

// NewRouter собирает chi-роутер со всеми middleware.
func NewRouter(h *Handler, users storage.UserStore, verifier auth.Verifier, timeout time.Duration) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(h.log))
	router.Use(middleware.Recoverer)
	if timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/replies", func(r chi.Router) {
		r.Use(dataloader.Middleware(users))
		r.Get("/", h.List)
		r.With(auth.Middleware(verifier, h.authFailed)).Post("/", h.Create)
	})

	return router
}

type pageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	*domain.Page
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type codeResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// createRequest - тело POST /replies. Поля-указатели отличают отсутствие от пустой строки.
type createRequest struct {
	PostID        string  `json:"postId"`
	Content       string  `json:"content"`
	ParentReplyID *string `json:"parentReplyId"`
	ReplyToUserID *string `json:"replyToUserId"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	in := reply.ListInput{
		PostID: q.Get("postId"),
		Sort:   domain.SortKey(q.Get("sort")),
		Order:  domain.SortOrder(q.Get("order")),
	}
	parent := q.Get("parentReplyId")
	if parent == "" {
		parent = q.Get("parentReply")
	}
	if parent != "" {
		in.ParentReplyID = &parent
	}

	var err error
	if in.Page, err = intParam(q.Get("page")); err != nil {
		h.writeError(w, r, domain.InvalidParameter("page must be an integer"))
		return
	}
	if in.Limit, err = intParam(q.Get("limit")); err != nil {
		h.writeError(w, r, domain.InvalidParameter("limit must be an integer"))
		return
	}

	page, err := h.replies.List(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pageResponse{Status: "success", Message: "replies fetched", Page: page})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		h.authFailed(w, r, auth.ErrMissingToken)
		return
	}

	var req createRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, domain.Validation("request body must be a JSON object"))
		return
	}

	page, err := h.replies.Create(r.Context(), userID, reply.CreateInput{
		PostID:        req.PostID,
		Content:       req.Content,
		ParentReplyID: req.ParentReplyID,
		ReplyToUserID: req.ReplyToUserID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pageResponse{Status: "success", Message: "reply created", Page: page})
}

func (h *Handler) authFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := auth.StatusFor(err)
	msg := "authentication required"
	if status == http.StatusForbidden {
		msg = "token is invalid or expired"
	}
	writeJSON(w, status, statusResponse{Status: "error", Message: msg})
}

// writeError переводит ошибку в HTTP-ответ. Текст ошибок хранилища клиенту не отдаётся.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	derr, ok := domain.AsError(err)
	if !ok {
		h.log.ErrorContext(r.Context(), "unexpected error", "error", err, "request_id", middleware.GetReqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "internal server error"})
		return
	}

	status := statusFor(derr)
	if derr.Code != 0 {
		writeJSON(w, status, codeResponse{Code: derr.Code, Message: derr.Message})
		return
	}
	writeJSON(w, status, statusResponse{Status: "error", Message: derr.Message})
}

func statusFor(err *domain.Error) int {
	switch err.Kind {
	case domain.KindValidation, domain.KindInvalidParameter:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindAuth:
		if errors.Is(err.Err, auth.ErrInvalidToken) {
			return http.StatusForbidden
		}
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// intParam возвращает nil для отсутствующего параметра, чтобы явный 0 дошёл до валидации.
func intParam(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.InfoContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
