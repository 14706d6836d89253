package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

func (r *Repository) GetDayScheduleByID(id int64) (*domain.DaySchedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ds.user_id,
			ds.date::text,
			ds.is_working,
			ds.source,
			ds.created_at,
			ds.version,
			dsb.start_time,
			dsb.end_time
		FROM day_schedules ds
		LEFT JOIN day_schedule_blocks dsb ON ds.id = dsb.day_schedule_id
		WHERE ds.id = $1
		ORDER BY dsb.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds := &domain.DaySchedule{
		ID:         id,
		TimeBlocks: make([]domain.TimeBlock, 0),
	}
	found := false

	for rows.Next() {
		var start, end sql.NullString
		dst := []any{&ds.UserID, &ds.Date, &ds.IsWorking, &ds.Source, &ds.CreatedAt, &ds.Version, &start, &end}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		found = true

		// start 为空表示这一天没有任何时间段
		if start.Valid {
			ds.TimeBlocks = append(ds.TimeBlocks, domain.TimeBlock{Start: start.String, End: end.String})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return ds, nil
}

// GetDaySchedulesInRange 返回某个用户在日期区间（闭区间）内已落库的排班，
// 以日期为键。没有记录的日期不会出现在结果中。
func (r *Repository) GetDaySchedulesInRange(userID int64, startDate, endDate string) (map[string]*domain.DaySchedule, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			ds.id,
			ds.date::text,
			ds.is_working,
			ds.source,
			ds.created_at,
			ds.version,
			dsb.start_time,
			dsb.end_time
		FROM day_schedules ds
		LEFT JOIN day_schedule_blocks dsb ON ds.id = dsb.day_schedule_id
		WHERE ds.user_id = $1 AND ds.date BETWEEN $2 AND $3
		ORDER BY ds.date, dsb.start_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, userID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make(map[string]*domain.DaySchedule)

	for rows.Next() {
		var row struct {
			ID        int64
			Date      string
			IsWorking bool
			Source    domain.ScheduleSource
			CreatedAt time.Time
			Version   int32
			StartTime sql.NullString
			EndTime   sql.NullString
		}

		dst := []any{&row.ID, &row.Date, &row.IsWorking, &row.Source, &row.CreatedAt, &row.Version, &row.StartTime, &row.EndTime}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		ds, exists := schedules[row.Date]
		if !exists {
			ds = &domain.DaySchedule{
				ID:         row.ID,
				UserID:     userID,
				Date:       row.Date,
				IsWorking:  row.IsWorking,
				TimeBlocks: make([]domain.TimeBlock, 0),
				Source:     row.Source,
				CreatedAt:  row.CreatedAt,
				Version:    row.Version,
			}
			schedules[row.Date] = ds
		}

		if row.StartTime.Valid {
			ds.TimeBlocks = append(ds.TimeBlocks, domain.TimeBlock{Start: row.StartTime.String, End: row.EndTime.String})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return schedules, nil
}

func insertDayScheduleBlocks(ctx context.Context, tx *sql.Tx, dayScheduleID int64, blocks []domain.TimeBlock) error {
	for _, block := range blocks {
		query := `
			INSERT INTO day_schedule_blocks (day_schedule_id, start_time, end_time)
			VALUES ($1, $2, $3)
		`
		if _, err := tx.ExecContext(ctx, query, dayScheduleID, block.Start, block.End); err != nil {
			return err
		}
	}
	return nil
}

// UpsertDaySchedule 按 (user_id, date) 插入或覆盖某一天的排班。
// 解析器的懒性落库和重新同步都走这里，不做版本校验（以解析结果为准）。
func (r *Repository) UpsertDaySchedule(ds *domain.DaySchedule) error {
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
		INSERT INTO day_schedules (user_id, date, is_working, source)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, date) DO UPDATE
		SET
			is_working = EXCLUDED.is_working,
			source = EXCLUDED.source,
			version = day_schedules.version + 1
		RETURNING id, created_at, version
	`

	args := []any{ds.UserID, ds.Date, ds.IsWorking, ds.Source}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&ds.ID, &ds.CreatedAt, &ds.Version); err != nil {
		return err
	}

	query = `DELETE FROM day_schedule_blocks WHERE day_schedule_id = $1`
	if _, err := tx.ExecContext(ctx, query, ds.ID); err != nil {
		return err
	}

	if err := insertDayScheduleBlocks(ctx, tx, ds.ID, ds.TimeBlocks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// UpdateDaySchedule 按乐观版本更新某一天的排班，版本不匹配时返回 sql.ErrNoRows
func (r *Repository) UpdateDaySchedule(ds *domain.DaySchedule) error {
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
		UPDATE day_schedules
		SET
			is_working = $1,
			source = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	args := []any{ds.IsWorking, ds.Source, ds.ID, ds.Version}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&ds.Version); err != nil {
		return err
	}

	query = `DELETE FROM day_schedule_blocks WHERE day_schedule_id = $1`
	if _, err := tx.ExecContext(ctx, query, ds.ID); err != nil {
		return err
	}

	if err := insertDayScheduleBlocks(ctx, tx, ds.ID, ds.TimeBlocks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}
