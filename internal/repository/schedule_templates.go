package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

func scanTemplatePatternRow(pattern map[int32]domain.DayPattern, weekday sql.NullInt32, isWorking sql.NullBool, start, end sql.NullString) {
	// weekday 为空表示这个模板还没有任何每周安排
	if !weekday.Valid {
		return
	}

	day, exists := pattern[weekday.Int32]
	if !exists {
		day = domain.DayPattern{
			IsWorking:  isWorking.Bool,
			TimeBlocks: make([]domain.TimeBlock, 0),
		}
	}

	// start 为空表示这个星期几没有任何时间段（休息日或者未填写）
	if start.Valid {
		day.TimeBlocks = append(day.TimeBlocks, domain.TimeBlock{Start: start.String, End: end.String})
	}

	pattern[weekday.Int32] = day
}

func (r *Repository) GetAllScheduleTemplates() ([]*domain.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			st.id,
			st.name,
			st.description,
			st.is_global,
			st.is_default,
			st.created_at,
			st.version,
			std.weekday,
			std.is_working,
			stb.start_time,
			stb.end_time
		FROM schedule_templates st
		LEFT JOIN schedule_template_days std ON st.id = std.template_id
		LEFT JOIN schedule_template_blocks stb ON st.id = stb.template_id AND std.weekday = stb.weekday
		ORDER BY st.id, std.weekday, stb.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.ScheduleTemplate)
	order := make([]int64, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			Name        string
			Description string
			IsGlobal    bool
			IsDefault   bool
			CreatedAt   time.Time
			Version     int32

			Weekday   sql.NullInt32
			IsWorking sql.NullBool
			StartTime sql.NullString
			EndTime   sql.NullString
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Description,
			&row.IsGlobal,
			&row.IsDefault,
			&row.CreatedAt,
			&row.Version,
			&row.Weekday,
			&row.IsWorking,
			&row.StartTime,
			&row.EndTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		template, exists := templatesMap[row.ID]
		if !exists {
			// 说明此时是第一次查到这个 template，需要在 map 中初始化这个 template
			template = &domain.ScheduleTemplate{
				ID:          row.ID,
				Name:        row.Name,
				Description: row.Description,
				IsGlobal:    row.IsGlobal,
				IsDefault:   row.IsDefault,
				CreatedAt:   row.CreatedAt,
				Version:     row.Version,
				Pattern:     make(map[int32]domain.DayPattern),
			}
			templatesMap[row.ID] = template
			order = append(order, row.ID)
		}

		scanTemplatePatternRow(template.Pattern, row.Weekday, row.IsWorking, row.StartTime, row.EndTime)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	sts := make([]*domain.ScheduleTemplate, 0, len(order))
	for _, id := range order {
		sts = append(sts, templatesMap[id])
	}

	return sts, nil
}

func (r *Repository) GetScheduleTemplate(id int64) (*domain.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			st.name,
			st.description,
			st.is_global,
			st.is_default,
			st.created_at,
			st.version,
			std.weekday,
			std.is_working,
			stb.start_time,
			stb.end_time
		FROM schedule_templates st
		LEFT JOIN schedule_template_days std ON st.id = std.template_id
		LEFT JOIN schedule_template_blocks stb ON st.id = stb.template_id AND std.weekday = stb.weekday
		WHERE st.id = $1
		ORDER BY std.weekday, stb.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &domain.ScheduleTemplate{
		ID:      id,
		Pattern: make(map[int32]domain.DayPattern),
	}
	found := false

	for rows.Next() {
		var row struct {
			Name        string
			Description string
			IsGlobal    bool
			IsDefault   bool
			CreatedAt   time.Time
			Version     int32

			Weekday   sql.NullInt32
			IsWorking sql.NullBool
			StartTime sql.NullString
			EndTime   sql.NullString
		}

		dst := []any{
			&row.Name,
			&row.Description,
			&row.IsGlobal,
			&row.IsDefault,
			&row.CreatedAt,
			&row.Version,
			&row.Weekday,
			&row.IsWorking,
			&row.StartTime,
			&row.EndTime,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			st.Name = row.Name
			st.Description = row.Description
			st.IsGlobal = row.IsGlobal
			st.IsDefault = row.IsDefault
			st.CreatedAt = row.CreatedAt
			st.Version = row.Version
			found = true
		}

		scanTemplatePatternRow(st.Pattern, row.Weekday, row.IsWorking, row.StartTime, row.EndTime)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return st, nil
}

func insertTemplatePattern(ctx context.Context, tx *sql.Tx, templateID int64, pattern map[int32]domain.DayPattern) error {
	for weekday, day := range pattern {
		query := `
			INSERT INTO schedule_template_days (template_id, weekday, is_working)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, templateID, weekday, day.IsWorking); err != nil {
			return err
		}

		for _, block := range day.TimeBlocks {
			query := `
				INSERT INTO schedule_template_blocks (template_id, weekday, start_time, end_time)
				VALUES ($1, $2, $3, $4)
			`
			if _, err := tx.ExecContext(ctx, query, templateID, weekday, block.Start, block.End); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *Repository) CreateScheduleTemplate(st *domain.ScheduleTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO schedule_templates (name, description, is_global, is_default)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, st.Name, st.Description, st.IsGlobal, st.IsDefault).Scan(&st.ID, &st.CreatedAt, &st.Version); err != nil {
		return err
	}

	if err := insertTemplatePattern(ctx, tx, st.ID, st.Pattern); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateScheduleTemplate(st *domain.ScheduleTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE schedule_templates
		SET
			name = $1,
			description = $2,
			is_global = $3,
			is_default = $4,
			version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING version
	`

	params := []any{st.Name, st.Description, st.IsGlobal, st.IsDefault, st.ID, st.Version}
	if err := tx.QueryRowContext(ctx, query, params...).Scan(&st.Version); err != nil {
		return err
	}

	// 每周安排直接整体替换，避免逐行比对
	query = `DELETE FROM schedule_template_blocks WHERE template_id = $1`
	if _, err := tx.ExecContext(ctx, query, st.ID); err != nil {
		return err
	}
	query = `DELETE FROM schedule_template_days WHERE template_id = $1`
	if _, err := tx.ExecContext(ctx, query, st.ID); err != nil {
		return err
	}

	if err := insertTemplatePattern(ctx, tx, st.ID, st.Pattern); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteScheduleTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM schedule_templates WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
