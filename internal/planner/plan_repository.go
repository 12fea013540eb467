package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"weekly-planner/internal/meal"
)

const weekLayout = "2006-01-02"

// Record is the persisted form of a Plan. Options are stored by name and
// resolved against the catalog when restored.
type Record struct {
	WeekStart time.Time                 `json:"week_start"`
	Proteins  []string                  `json:"proteins"`
	Slots     map[meal.Type]weekOfNames `json:"slots"`
}

type weekOfNames [meal.DaysPerWeek]string

// ToRecord converts a plan into its persisted form.
func (p Plan) ToRecord() Record {
	rec := Record{
		WeekStart: p.WeekStart,
		Proteins:  p.Filter.Tags(),
		Slots:     make(map[meal.Type]weekOfNames, len(meal.Types)),
	}
	for _, t := range meal.Types {
		var names weekOfNames
		for day := 0; day < meal.DaysPerWeek; day++ {
			if o, ok := p.Meal(t, day); ok {
				names[day] = o.Name
			}
		}
		rec.Slots[t] = names
	}
	return rec
}

// Restore rebuilds a plan from a record. Names no longer present in the
// catalog leave their slot empty.
func (p *Planner) Restore(rec Record) Plan {
	plan := newPlan(rec.WeekStart, NewProteinFilter(rec.Proteins...))
	for _, t := range meal.Types {
		names := rec.Slots[t]
		for day, name := range names {
			if name == "" {
				continue
			}
			if opt, ok := p.catalog.Find(t, name); ok {
				plan.set(t, day, opt)
			}
		}
	}
	return plan
}

// StoredPlan is a plan record as kept in the database.
type StoredPlan struct {
	UserID    string
	Record    Record
	UpdatedAt time.Time
}

// PlanRepository is a database-backed repository for weekly plans. There is
// at most one plan per user and week.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save inserts or replaces the user's plan for the record's week.
func (r *PlanRepository) Save(ctx context.Context, userID string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO meal_plans (user_id, week_start, plan_data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, week_start) DO UPDATE SET
			plan_data = excluded.plan_data,
			updated_at = excluded.updated_at`,
		userID, rec.WeekStart.Format(weekLayout), string(data), time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save meal plan for user %s: %w", userID, err)
	}
	return nil
}

// Latest returns the most recently updated plan of a user, or nil when the
// user has none.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*StoredPlan, error) {
	plans, err := r.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	return &plans[0], nil
}

// ExistsForWeek reports whether the user already has a plan for weekStart.
func (r *PlanRepository) ExistsForWeek(ctx context.Context, userID string, weekStart time.Time) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND week_start = ?`,
		userID, weekStart.Format(weekLayout),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check meal plan for user %s: %w", userID, err)
	}
	return n > 0, nil
}

// ListRecentByUserID retrieves the N most recently updated plans of a user.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]StoredPlan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT plan_data, updated_at FROM meal_plans
		WHERE user_id = ?
		ORDER BY updated_at DESC, week_start DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent meal plans for user %s: %w", userID, err)
	}
	defer rows.Close()

	var plans []StoredPlan
	for rows.Next() {
		var (
			data    string
			updated int64
		)
		if err := rows.Scan(&data, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan meal plan: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal meal plan: %w", err)
		}
		plans = append(plans, StoredPlan{
			UserID:    userID,
			Record:    rec,
			UpdatedAt: time.Unix(0, updated).UTC(),
		})
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to iterate meal plans: %w", err)
	}
	return plans, nil
}
