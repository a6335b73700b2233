package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivopashov/classdocs/internal/models"
)

type groupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepo{pool: pool}
}

func (r *groupRepo) Create(ctx context.Context, group *models.Group) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO groups (id, name, parent_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		group.ID, group.Name, group.ParentID, group.CreatedAt,
	)
	return err
}

func (r *groupRepo) GetByID(ctx context.Context, id int64) (*models.Group, error) {
	g := &models.Group{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, parent_id, created_at FROM groups WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.ParentID, &g.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return g, err
}

func (r *groupRepo) List(ctx context.Context) ([]models.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, parent_id, created_at FROM groups ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.ParentID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupRepo) Update(ctx context.Context, group *models.Group) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE groups SET name = $2, parent_id = $3 WHERE id = $1`,
		group.ID, group.Name, group.ParentID,
	)
	return err
}

func (r *groupRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	return err
}

func (r *groupRepo) AddMember(ctx context.Context, member *models.GroupMember) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO group_members (group_id, user_id, is_admin, joined_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (group_id, user_id) DO UPDATE SET is_admin = EXCLUDED.is_admin`,
		member.GroupID, member.UserID, member.IsAdmin, member.JoinedAt,
	)
	return err
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, groupID, userID,
	)
	return err
}

func (r *groupRepo) SetMemberAdmin(ctx context.Context, groupID, userID int64, isAdmin bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE group_members SET is_admin = $3 WHERE group_id = $1 AND user_id = $2`,
		groupID, userID, isAdmin,
	)
	return err
}

func (r *groupRepo) GetMembers(ctx context.Context, groupID int64) ([]models.GroupMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, user_id, is_admin, joined_at
		 FROM group_members WHERE group_id = $1
		 ORDER BY joined_at`, groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *groupRepo) GetMembershipsByUser(ctx context.Context, userID int64) ([]models.GroupMember, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, user_id, is_admin, joined_at
		 FROM group_members WHERE user_id = $1`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.IsAdmin, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
