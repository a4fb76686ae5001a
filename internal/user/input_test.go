package user

import (
	"encoding/json"
	"errors"
	"testing"
)

func strPtr(s string) *string { return &s }

// --- 作成入力の検証 ---

func TestCreateUserInput_Validate_Valid(t *testing.T) {
	input := CreateUserInput{Email: "a@b.com"}
	if err := input.Validate(); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
}

func TestCreateUserInput_Validate_ValidWithAllFields(t *testing.T) {
	input := CreateUserInput{
		Email: "taro@example.com",
		Name:  strPtr("Taro"),
		Address: &AddressInput{
			Street: "1 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62701",
		},
	}
	if err := input.Validate(); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
}

// 空ボディはemail欠落で作成検証に失敗し、エラーリストがemailを指すことを検証する。
func TestCreateUserInput_Validate_MissingEmail(t *testing.T) {
	input := CreateUserInput{}

	err := input.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) == 0 {
		t.Fatal("expected non-empty field error list")
	}
	if verr.Fields[0].Field != "email" {
		t.Errorf("Fields[0].Field = %q, want %q", verr.Fields[0].Field, "email")
	}
	if verr.Fields[0].Message != "field is required" {
		t.Errorf("Fields[0].Message = %q, want %q", verr.Fields[0].Message, "field is required")
	}
}

func TestCreateUserInput_Validate_MalformedEmail(t *testing.T) {
	input := CreateUserInput{Email: "not-an-email"}

	err := input.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Fields[0].Field != "email" {
		t.Errorf("Fields[0].Field = %q, want %q", verr.Fields[0].Field, "email")
	}
	if verr.Fields[0].Message != "must be a valid email address" {
		t.Errorf("Fields[0].Message = %q, want %q", verr.Fields[0].Message, "must be a valid email address")
	}
}

// 住所の部分指定はall-or-nothingグループとして拒否され、
// エラーのフィールドパスがjsonタグ名のネスト表記になることを検証する。
func TestCreateUserInput_Validate_PartialAddressRejected(t *testing.T) {
	input := CreateUserInput{
		Email:   "a@b.com",
		Address: &AddressInput{Street: "1 Main St"},
	}

	err := input.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("len(Fields) = %d, want 3 (city/state/zip)", len(verr.Fields))
	}

	want := []string{"address.city", "address.state", "address.zip"}
	for i, f := range verr.Fields {
		if f.Field != want[i] {
			t.Errorf("Fields[%d].Field = %q, want %q", i, f.Field, want[i])
		}
	}
}

// --- 更新入力の検証 ---

// 空のパッチは有効（無操作）であることを検証する。
func TestUpdateUserInput_Validate_EmptyPatchIsValid(t *testing.T) {
	input := UpdateUserInput{}
	if err := input.Validate(); err != nil {
		t.Errorf("empty patch should be valid, got %v", err)
	}
}

func TestUpdateUserInput_Validate_MalformedEmailRejected(t *testing.T) {
	input := UpdateUserInput{Email: strPtr("bad")}

	err := input.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Fields[0].Field != "email" {
		t.Errorf("Fields[0].Field = %q, want %q", verr.Fields[0].Field, "email")
	}
}

func TestUpdateUserInput_Validate_PartialAddressRejected(t *testing.T) {
	input := UpdateUserInput{
		Address: &AddressInput{City: "Springfield"},
	}

	err := input.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("len(Fields) = %d, want 3 (street/state/zip)", len(verr.Fields))
	}
}

func TestUpdateUserInput_Validate_CompleteAddressAccepted(t *testing.T) {
	input := UpdateUserInput{
		Address: &AddressInput{
			Street: "9 Oak Ave",
			City:   "Shelbyville",
			State:  "IL",
			Zip:    "62565",
		},
	}
	if err := input.Validate(); err != nil {
		t.Errorf("complete address should be valid, got %v", err)
	}
}

// --- デコード時の挙動 ---

// 構造体デコードで未知のフィールドが捨てられることを検証する。
func TestCreateUserInput_UnknownFieldsDropped(t *testing.T) {
	body := []byte(`{"email":"a@b.com","role":"admin","is_active":true}`)

	var input CreateUserInput
	if err := json.Unmarshal(body, &input); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if err := input.Validate(); err != nil {
		t.Errorf("expected valid input after dropping unknown fields, got %v", err)
	}
	if input.Email != "a@b.com" {
		t.Errorf("Email = %q, want %q", input.Email, "a@b.com")
	}
}

// JSONのnullと未指定がどちらもnilポインタになる（変更なし扱い）ことを検証する。
func TestUpdateUserInput_AbsentFieldsAreNil(t *testing.T) {
	body := []byte(`{"name":"Taro"}`)

	var input UpdateUserInput
	if err := json.Unmarshal(body, &input); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if input.Email != nil {
		t.Errorf("Email = %v, want nil", input.Email)
	}
	if input.Name == nil || *input.Name != "Taro" {
		t.Errorf("Name = %v, want Taro", input.Name)
	}
	if input.Address != nil {
		t.Errorf("Address = %v, want nil", input.Address)
	}
}

// ValidationError.Errorが全フィールドを含むことを検証する。
func TestValidationError_ErrorMessage(t *testing.T) {
	verr := &ValidationError{Fields: []FieldError{
		{Field: "email", Message: "field is required"},
		{Field: "address.zip", Message: "field is required"},
	}}

	msg := verr.Error()
	if msg != "validation failed: email: field is required; address.zip: field is required" {
		t.Errorf("Error() = %q", msg)
	}
}
