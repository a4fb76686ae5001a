// Package user はユーザーCRUDのドメインサービスと入力検証を提供する。
package user

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ssato/usersvc/internal/model"
)

// CreateUserInput はユーザー作成リクエストの入力。
// emailは必須、name/addressは任意。構造体デコードにより未知のフィールドは捨てられる。
type CreateUserInput struct {
	Email   string        `json:"email" validate:"required,email"`
	Name    *string       `json:"name"`
	Address *AddressInput `json:"address"`
}

// UpdateUserInput はユーザー部分更新リクエストの入力。
// 全フィールド任意。nilは「変更しない」を意味し、空のパッチは無操作として成功する。
type UpdateUserInput struct {
	Email   *string       `json:"email" validate:"omitnil,email"`
	Name    *string       `json:"name"`
	Address *AddressInput `json:"address"`
}

// AddressInput は住所グループの入力。
// グループ自体は任意だが、指定する場合は4フィールドすべて必須（all-or-nothing）。
// 部分更新でも個別フィールドのマージは許可しない。
type AddressInput struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required"`
	Zip    string `json:"zip" validate:"required"`
}

// toModel はnil安全にmodel.Addressへ変換する。
func (a *AddressInput) toModel() *model.Address {
	if a == nil {
		return nil
	}
	return &model.Address{
		Street: a.Street,
		City:   a.City,
		State:  a.State,
		Zip:    a.Zip,
	}
}

// FieldError はフィールド単位の検証エラー。
// Fieldはjsonタグ名によるパス表記（例: "address.street"）。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError は検証失敗の全フィールドエラーを保持する。
// 単一の不透明なメッセージではなく、フィールド順のリストとして呼び出し元に渡す。
type ValidationError struct {
	Fields []FieldError
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validate は共有のvalidatorインスタンス。スレッドセーフのため使い回す。
var validate = newValidator()

// newValidator はjsonタグ名でエラー報告するvalidatorを生成する。
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate はユーザー作成入力を検証する。
// 失敗時は*ValidationErrorを返す。
func (in CreateUserInput) Validate() error {
	return validateStruct(in)
}

// Validate はユーザー部分更新入力を検証する。
// 空の入力は有効（無操作パッチ）。emailは指定時のみフォーマット検証する。
func (in UpdateUserInput) Validate() error {
	return validateStruct(in)
}

// validateStruct は構造体タグに基づく検証を実行し、
// validator.ValidationErrorsをフィールド順の*ValidationErrorに変換する。
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe),
			Message: fieldMessage(fe),
		})
	}
	return &ValidationError{Fields: fields}
}

// fieldPath はNamespaceから構造体名を除いたjsonパスを返す。
// 例: "CreateUserInput.address.street" -> "address.street"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// fieldMessage は検証タグを人間向けメッセージに変換する。
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}
