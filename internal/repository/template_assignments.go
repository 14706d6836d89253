package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

func (r *Repository) CreateTemplateAssignment(ta *domain.TemplateAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO template_assignments (user_id, template_id, start_date, end_date, priority, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	args := []any{ta.UserID, ta.TemplateID, ta.StartDate, ta.EndDate, ta.Priority, ta.IsActive}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ta.ID, &ta.CreatedAt, &ta.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTemplateAssignment(id int64) (*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT user_id, template_id, start_date::text, end_date::text, priority, is_active, created_at, version
		FROM template_assignments WHERE id = $1
	`

	ta := &domain.TemplateAssignment{
		ID: id,
	}

	dst := []any{&ta.UserID, &ta.TemplateID, &ta.StartDate, &ta.EndDate, &ta.Priority, &ta.IsActive, &ta.CreatedAt, &ta.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return ta, nil
}

func (r *Repository) GetAllTemplateAssignments() ([]*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, user_id, template_id, start_date::text, end_date::text, priority, is_active, created_at, version
		FROM template_assignments
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tas := make([]*domain.TemplateAssignment, 0)
	for rows.Next() {
		ta := &domain.TemplateAssignment{}
		dst := []any{&ta.ID, &ta.UserID, &ta.TemplateID, &ta.StartDate, &ta.EndDate, &ta.Priority, &ta.IsActive, &ta.CreatedAt, &ta.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		tas = append(tas, ta)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tas, nil
}

// GetUserTemplateAssignments 返回某个用户的全部模板分配，含未启用的，
// 过滤交给解析器处理
func (r *Repository) GetUserTemplateAssignments(userID int64) ([]*domain.TemplateAssignment, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, template_id, start_date::text, end_date::text, priority, is_active, created_at, version
		FROM template_assignments
		WHERE user_id = $1
		ORDER BY id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tas := make([]*domain.TemplateAssignment, 0)
	for rows.Next() {
		ta := &domain.TemplateAssignment{UserID: userID}
		dst := []any{&ta.ID, &ta.TemplateID, &ta.StartDate, &ta.EndDate, &ta.Priority, &ta.IsActive, &ta.CreatedAt, &ta.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		tas = append(tas, ta)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tas, nil
}

func (r *Repository) UpdateTemplateAssignment(ta *domain.TemplateAssignment) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE template_assignments
		SET
			template_id = $1,
			start_date = $2,
			end_date = $3,
			priority = $4,
			is_active = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	args := []any{ta.TemplateID, ta.StartDate, ta.EndDate, ta.Priority, ta.IsActive, ta.ID, ta.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&ta.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTemplateAssignment(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM template_assignments WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
