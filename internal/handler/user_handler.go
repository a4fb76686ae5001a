// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

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

	"github.com/ssato/usersvc/internal/model"
	"github.com/ssato/usersvc/internal/user"
)

// ページネーションのデフォルト値。
// クエリパラメータが欠落・非数値・非正数の場合はエラーにせず黙ってこの値に戻す。
const (
	defaultPage     = 1
	defaultPageSize = 10
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Create は入力を検証してユーザーを作成する。
	Create(ctx context.Context, input user.CreateUserInput) (*model.User, error)
	// Update は指定IDのユーザーに部分更新を適用する。
	Update(ctx context.Context, id string, input user.UpdateUserInput) (*model.User, error)
	// Get は指定IDのユーザーを取得する。
	Get(ctx context.Context, id string) (*model.User, error)
	// List はフィルタに一致するユーザーのページと総数を返す。
	List(ctx context.Context, q user.ListQuery) ([]*model.User, int, error)
	// Delete は指定IDのユーザーを削除する。
	Delete(ctx context.Context, id string) error
}

// UserHandler はユーザーCRUDのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// addressResponse は住所のAPIレスポンス。
type addressResponse struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// userResponse はユーザーのAPIレスポンス。
// 任意項目のname/addressは未設定時nullになる。
type userResponse struct {
	ID        string           `json:"id"`
	Email     string           `json:"email"`
	Name      *string          `json:"name"`
	Address   *addressResponse `json:"address"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// listUsersResponse はユーザー一覧のAPIレスポンス。
type listUsersResponse struct {
	Data       []userResponse `json:"data"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	TotalItems int            `json:"totalItems"`
}

// errorResponse はエラーレスポンスの統一フォーマット。
// Errorには汎用メッセージ文字列、またはフィールドエラーのリストが入る。
type errorResponse struct {
	Error any `json:"error"`
}

// CreateUser はユーザー作成を処理する。
// POST /usuarios
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input user.CreateUserInput
	if err := decodeJSONBody(r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		var verr *user.ValidationError
		if errors.As(err, &verr) {
			writeErrorResponse(w, http.StatusBadRequest, verr.Fields)
			return
		}
		// 制約違反を含む永続化エラーは詳細を漏らさず汎用メッセージに潰す
		slog.Error("failed to create user", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "User was not created.")
		return
	}

	writeJSONResponse(w, http.StatusCreated, toUserResponse(created))
}

// UpdateUser はユーザーの部分更新を処理する。
// PUT /usuarios/:id
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input user.UpdateUserInput
	if err := decodeJSONBody(r, &input); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		var verr *user.ValidationError
		if errors.As(err, &verr) {
			writeErrorResponse(w, http.StatusBadRequest, verr.Fields)
			return
		}
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.Error("failed to update user", slog.String("error", err.Error()))
		}
		writeErrorResponse(w, http.StatusNotFound, "User Not found or error on updating.")
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(updated))
}

// ListUsers はユーザー一覧をページネーション付きで返す。
// GET /usuarios?page=&pageSize=&name=&email=
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	q := user.ListQuery{
		Page:     parsePositiveInt(query.Get("page"), defaultPage),
		PageSize: parsePositiveInt(query.Get("pageSize"), defaultPageSize),
	}
	if name := query.Get("name"); name != "" {
		q.Name = &name
	}
	if email := query.Get("email"); email != "" {
		q.Email = &email
	}

	users, total, err := h.service.List(r.Context(), q)
	if err != nil {
		slog.Error("failed to list users", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "Error Showing results.")
		return
	}

	// 空ページでもnullではなく[]を返す
	data := make([]userResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}

	writeJSONResponse(w, http.StatusOK, listUsersResponse{
		Data:       data,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages(total, q.PageSize),
		TotalItems: total,
	})
}

// GetUser はユーザー詳細を取得する。
// GET /usuarios/:id
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	found, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "User Not found.")
			return
		}
		slog.Error("failed to get user", slog.String("error", err.Error()))
		writeErrorResponse(w, http.StatusInternalServerError, "Error Showing results.")
		return
	}

	writeJSONResponse(w, http.StatusOK, toUserResponse(found))
}

// DeleteUser はユーザーを削除する。
// DELETE /usuarios/:id
// 削除済みIDの再削除は404とする（冪等な204にはしない）。
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			slog.Error("failed to delete user", slog.String("error", err.Error()))
		}
		writeErrorResponse(w, http.StatusNotFound, "User not found or error on deleting.")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetupUserRoutes はユーザーCRUDのルーティングを設定したchi.Routerを返す。
func SetupUserRoutes(service UserServiceInterface) http.Handler {
	r := chi.NewRouter()
	h := NewUserHandler(service)

	r.Route("/usuarios", func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetUser)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})

	return r
}

// --- ヘルパー関数 ---

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if u.Address != nil {
		resp.Address = &addressResponse{
			Street: u.Address.Street,
			City:   u.Address.City,
			State:  u.Address.State,
			Zip:    u.Address.Zip,
		}
	}
	return resp
}

// decodeJSONBody はリクエストボディをJSONとしてdestにデコードする。
// 長さゼロのボディは空のJSONオブジェクトと同等に扱い、destを変更せず成功とする。
// 必須フィールドの欠落は後続の検証が報告する。
func decodeJSONBody(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// parsePositiveInt は文字列を正の整数として解析する。
// 欠落・解析失敗・非正数の場合はエラーにせずdefaultValに戻す。
func parsePositiveInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return defaultVal
	}
	return n
}

// totalPages は総件数とページサイズから総ページ数を切り上げで計算する。
func totalPages(totalItems, pageSize int) int {
	if totalItems == 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// writeJSONResponse はJSONレスポンスを書き込む。
func writeJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, payload any) {
	writeJSONResponse(w, statusCode, errorResponse{Error: payload})
}
