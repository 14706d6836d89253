package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/worktime-manager/backend/internal/domain"
)

func (r *Repository) CreateHoliday(holiday *domain.Holiday) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO holidays (date, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.dbpool.QueryRowContext(ctx, query, holiday.Date, holiday.Name).Scan(&holiday.ID, &holiday.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllHolidays() ([]*domain.Holiday, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, date::text, name, created_at FROM holidays ORDER BY date
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		holiday := &domain.Holiday{}
		if err := rows.Scan(&holiday.ID, &holiday.Date, &holiday.Name, &holiday.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

// GetHolidaysInRange 返回日期区间（闭区间）内的节假日，以日期为键
func (r *Repository) GetHolidaysInRange(startDate, endDate string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT date::text FROM holidays WHERE date BETWEEN $1 AND $2
	`

	rows, err := r.dbpool.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make(map[string]bool)
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		holidays[date] = true
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) DeleteHoliday(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM holidays WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
