package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ssato/usersvc/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// userColumns はusersテーブルのSELECT対象カラム。scanUserの引数順と一致させること。
const userColumns = `id, email, name, address_street, address_city, address_state, address_zip, created_at, updated_at`

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// Create はユーザーを作成する。
// emailの一意制約違反の場合はmodel.ErrEmailConflictを返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	var street, city, state, zip *string
	if user.Address != nil {
		street = &user.Address.Street
		city = &user.Address.City
		state = &user.Address.State
		zip = &user.Address.Zip
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, address_street, address_city, address_state, address_zip, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Email, user.Name, street, city, state, zip, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.ErrEmailConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// UpdateByID は指定IDのユーザーにpatchを適用し、更新後のレコードを返す。
// nilのフィールドは変更せず、Addressが指定された場合は住所グループ全体を置き換える。
// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
func (r *PostgresUserRepo) UpdateByID(ctx context.Context, id string, patch UserPatch) (*model.User, error) {
	// 空のパッチは何も変更しない。対象の存在確認だけ行い現状のレコードを返す。
	if patch.IsEmpty() {
		user, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, model.ErrUserNotFound
		}
		return user, nil
	}

	sets, args := buildUpdateSet(patch)
	args = append(args, id)

	query := fmt.Sprintf(
		`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args),
	)

	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, model.ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// List はフィルタに一致するユーザーを登録順（created_at昇順）に返す。
func (r *PostgresUserRepo) List(ctx context.Context, filter UserFilter, offset, limit int) ([]*model.User, error) {
	where, args := buildFilterWhere(filter)
	query := fmt.Sprintf(
		`SELECT `+userColumns+` FROM users%s ORDER BY created_at, id OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// Count はフィルタに一致するユーザーの総数を返す。
func (r *PostgresUserRepo) Count(ctx context.Context, filter UserFilter) (int, error) {
	where, args := buildFilterWhere(filter)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// DeleteByID は指定IDのユーザーを削除する。
// 対象が存在しない場合はmodel.ErrUserNotFoundを返す。
func (r *PostgresUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通スキャンインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser は1行分のカラムをmodel.Userに読み込む。カラム順はuserColumnsと一致させること。
// 住所グループの有無はaddress_streetのNULL判定で決める（グループは常に4カラム同時に設定される）。
func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var name, street, city, state, zip sql.NullString

	err := row.Scan(
		&user.ID, &user.Email, &name,
		&street, &city, &state, &zip,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		user.Name = &name.String
	}
	if street.Valid {
		user.Address = &model.Address{
			Street: street.String,
			City:   city.String,
			State:  state.String,
			Zip:    zip.String,
		}
	}

	return user, nil
}

// buildUpdateSet はpatchの非nilフィールドからUPDATE文のSET句とバインド引数を構築する。
// updated_atは変更の有無に関わらず常に更新する。
func buildUpdateSet(patch UserPatch) ([]string, []any) {
	var sets []string
	var args []any

	if patch.Email != nil {
		args = append(args, *patch.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if patch.Address != nil {
		args = append(args, patch.Address.Street)
		sets = append(sets, fmt.Sprintf("address_street = $%d", len(args)))
		args = append(args, patch.Address.City)
		sets = append(sets, fmt.Sprintf("address_city = $%d", len(args)))
		args = append(args, patch.Address.State)
		sets = append(sets, fmt.Sprintf("address_state = $%d", len(args)))
		args = append(args, patch.Address.Zip)
		sets = append(sets, fmt.Sprintf("address_zip = $%d", len(args)))
	}

	sets = append(sets, "updated_at = now()")

	return sets, args
}

// buildFilterWhere はフィルタの非nilフィールドからWHERE句とバインド引数を構築する。
// 条件がない場合は空文字列を返す。
func buildFilterWhere(filter UserFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Name != nil {
		args = append(args, *filter.Name)
		conds = append(conds, fmt.Sprintf("name = $%d", len(args)))
	}
	if filter.Email != nil {
		args = append(args, *filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
