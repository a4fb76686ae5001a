package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ssato/usersvc/internal/model"
	"github.com/ssato/usersvc/internal/repository"
)

// Service はユーザーCRUDのドメインサービス。
// 入力検証、ID・タイムスタンプの付与、永続化層への変換を行う。
type Service struct {
	repo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.UserRepository) *Service {
	return &Service{repo: repo}
}

// ListQuery は一覧取得の条件。Name/Emailは完全一致フィルタ。
type ListQuery struct {
	Name     *string
	Email    *string
	Page     int
	PageSize int
}

// Create は入力を検証し、IDとタイムスタンプを付与してユーザーを作成する。
// 検証失敗時は*ValidationError、email重複時はmodel.ErrEmailConflictを返す。
func (s *Service) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        uuid.NewString(),
		Email:     input.Email,
		Name:      input.Name,
		Address:   input.Address.toModel(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Update は入力を検証し、指定IDのユーザーに部分更新を適用する。
// 入力に含まれないフィールドは変更されない。住所は指定時に全体を置き換える。
// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
func (s *Service) Update(ctx context.Context, id string, input UpdateUserInput) (*model.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	patch := repository.UserPatch{
		Email:   input.Email,
		Name:    input.Name,
		Address: input.Address.toModel(),
	}

	return s.repo.UpdateByID(ctx, id, patch)
}

// Get は指定IDのユーザーを取得する。
// 存在しない場合はmodel.ErrUserNotFoundを返す（リポジトリのnilを変換する）。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

// List はフィルタに一致するユーザーのページとフィルタ適用後の総数を返す。
// pageは1始まり。一致するレコードがない場合は空のページを返す。
func (s *Service) List(ctx context.Context, q ListQuery) ([]*model.User, int, error) {
	filter := repository.UserFilter{
		Name:  q.Name,
		Email: q.Email,
	}

	offset := (q.Page - 1) * q.PageSize
	users, err := s.repo.List(ctx, filter, offset, q.PageSize)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Delete は指定IDのユーザーを削除する。
// 対象が存在しない場合はmodel.ErrUserNotFoundを返す（削除済みIDの再削除は成功にしない）。
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
