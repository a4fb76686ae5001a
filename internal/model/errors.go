// Package model はドメインモデルを定義する。
package model

import "errors"

// 永続化層の結果を表すセンチネルエラー。
// ハンドラーはerrors.Isでこれらを判定し、HTTPステータスに変換する。
var (
	// ErrUserNotFound は指定IDのユーザーが存在しないことを示す。
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailConflict はemailの一意制約違反を示す。
	// 一意性の検証はアプリケーションではなくストアの制約に委ねる。
	ErrEmailConflict = errors.New("email already exists")
)
