package models

import (
	"context"
	"database/sql"
)

type sqlDashboardRepo struct{ db *sql.DB }

func NewSQLDashboardRepository(db *sql.DB) DashboardRepository { return &sqlDashboardRepo{db} }

// topEventsQuery ranks published events by fill percentage. A zero capacity
// yields a NULL percentage, which sorts after every real value.
const topEventsQuery = `
SELECT e.id, e.title, e.max_participants,
       COUNT(r.id) FILTER (WHERE r.status IN ('pending', 'confirmed')) AS current_count,
       ROUND(COUNT(r.id) FILTER (WHERE r.status IN ('pending', 'confirmed'))::numeric
             / NULLIF(e.max_participants, 0) * 100, 2) AS fill_percentage
FROM events e
LEFT JOIN registrations r ON r.event_id = e.id
WHERE e.status = 'published'
GROUP BY e.id, e.title, e.max_participants
ORDER BY fill_percentage DESC NULLS LAST, current_count DESC
LIMIT 5`

func (r *sqlDashboardRepo) Stats(ctx context.Context) (Dashboard, error) {
	var d Dashboard
	err := r.db.QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM events),
       (SELECT COUNT(*) FROM events WHERE status = 'published'),
       (SELECT COUNT(*) FROM registrations WHERE created_at::date = CURRENT_DATE)`).
		Scan(&d.TotalEvents, &d.PublishedEvents, &d.TodayRegistrations)
	if err != nil {
		return Dashboard{}, err
	}

	rows, err := r.db.QueryContext(ctx, topEventsQuery)
	if err != nil {
		return Dashboard{}, err
	}
	defer rows.Close()

	d.TopEvents = []TopEvent{}
	for rows.Next() {
		var t TopEvent
		if err := rows.Scan(&t.ID, &t.Title, &t.MaxParticipants, &t.CurrentCount, &t.FillPercentage); err != nil {
			return Dashboard{}, err
		}
		d.TopEvents = append(d.TopEvents, t)
	}
	return d, rows.Err()
}
