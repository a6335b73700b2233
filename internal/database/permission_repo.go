package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type permissionRepo struct {
	pool *pgxpool.Pool
}

func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepo{pool: pool}
}

func (r *permissionRepo) SetUserPermission(ctx context.Context, perm *models.RootUserPermission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO root_user_permissions (root_id, user_id, access)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (root_id, user_id) DO UPDATE SET access = EXCLUDED.access`,
		perm.RootID, perm.UserID, perm.Access,
	)
	return err
}

func (r *permissionRepo) DeleteUserPermission(ctx context.Context, rootID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM root_user_permissions WHERE root_id = $1 AND user_id = $2`,
		rootID, userID,
	)
	return err
}

func (r *permissionRepo) SetGroupPermission(ctx context.Context, perm *models.RootGroupPermission) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO root_group_permissions (root_id, group_id, access)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (root_id, group_id) DO UPDATE SET access = EXCLUDED.access`,
		perm.RootID, perm.GroupID, perm.Access,
	)
	return err
}

func (r *permissionRepo) DeleteGroupPermission(ctx context.Context, rootID, groupID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM root_group_permissions WHERE root_id = $1 AND group_id = $2`,
		rootID, groupID,
	)
	return err
}

func (r *permissionRepo) GetUserPermissions(ctx context.Context, rootID int64) ([]models.RootUserPermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT root_id, user_id, access
		 FROM root_user_permissions WHERE root_id = $1`, rootID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.RootUserPermission
	for rows.Next() {
		var p models.RootUserPermission
		if err := rows.Scan(&p.RootID, &p.UserID, &p.Access); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *permissionRepo) GetGroupPermissions(ctx context.Context, rootID int64) ([]models.RootGroupPermission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT root_id, group_id, access
		 FROM root_group_permissions WHERE root_id = $1`, rootID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.RootGroupPermission
	for rows.Next() {
		var p models.RootGroupPermission
		if err := rows.Scan(&p.RootID, &p.GroupID, &p.Access); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}
