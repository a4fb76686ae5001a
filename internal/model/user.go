// Package model はドメインモデルを定義する。
package model

import "time"

// User はユーザーレコードを表す。
// NameとAddressは任意項目のためポインタで保持し、未設定はnilで表現する。
type User struct {
	ID        string
	Email     string
	Name      *string
	Address   *Address
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Address はユーザーに所有される住所を表す。
// User経由でのみ存在し、単独のライフサイクルを持たない。
// 更新時は個別フィールドのマージではなく全体を置き換える。
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}
