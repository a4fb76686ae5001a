// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/ssato/usersvc/internal/model"
)

// UserFilter は一覧・件数取得で使う完全一致フィルタ。
// nilのフィールドは条件に含めない。
type UserFilter struct {
	Name  *string
	Email *string
}

// UserPatch は部分更新で変更するフィールドの集合。
// nilのフィールドは既存値を維持する。Addressが非nilの場合は
// 住所グループ全体（street/city/state/zip）をまとめて置き換える。
type UserPatch struct {
	Email   *string
	Name    *string
	Address *model.Address
}

// IsEmpty は変更対象フィールドが1つもないことを返す。
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Address == nil
}

// UserRepository はユーザーデータの永続化インターフェース。
// ビジネスルールは適用せず、検証済みの値とストア操作の変換のみを行う。
type UserRepository interface {
	// Create はユーザーを作成する。
	// emailの一意制約違反の場合はmodel.ErrEmailConflictを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateByID は指定IDのユーザーにpatchを適用し、更新後のレコードを返す。
	// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
	UpdateByID(ctx context.Context, id string, patch UserPatch) (*model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// List はフィルタに一致するユーザーを登録順に返す。
	// 一致するレコードがない場合は空のスライスを返す（エラーにしない）。
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*model.User, error)

	// Count はフィルタに一致するユーザーの総数を返す。ページネーションとは独立。
	Count(ctx context.Context, filter UserFilter) (int, error)

	// DeleteByID は指定IDのユーザーを削除する。
	// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}
