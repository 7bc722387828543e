// Package chread queries the ClickHouse analytics mirror for the admin API.
// It reads the risk_assessment_events table; the Postgres audit trail is not
// touched from here.
package chread

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Reader wraps a ClickHouse connection for analytics queries.
type Reader struct {
	conn driver.Conn
}

// NewReader connects and pings. The admin API runs without a Reader when
// ClickHouse is not configured.
func NewReader(ctx context.Context, addr, database, username, password string) (*Reader, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("NewReader: open: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("NewReader: ping: %w", err)
	}
	return &Reader{conn: conn}, nil
}

// AssessmentEvent is one analytics row as served to the admin API.
type AssessmentEvent struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Kind        string    `json:"kind"`
	OverallRisk float64   `json:"overall_risk"`
	AuthLevel   string    `json:"auth_level"`
	Location    string    `json:"location,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListParams filters ListAssessments. Nil pointers mean "no filter".
type ListParams struct {
	UserID    *string
	Kind      *string
	AuthLevel *string
	MinRisk   *float64
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// ListAssessments returns a page of events newest-first plus the total count
// matching the filters.
func (r *Reader) ListAssessments(ctx context.Context, p ListParams) ([]AssessmentEvent, uint64, error) {
	where := "WHERE 1 = 1"
	args := []any{}

	if p.UserID != nil {
		where += " AND user_id = @user_id"
		args = append(args, clickhouse.Named("user_id", *p.UserID))
	}
	if p.Kind != nil {
		where += " AND kind = @kind"
		args = append(args, clickhouse.Named("kind", *p.Kind))
	}
	if p.AuthLevel != nil {
		where += " AND auth_level = @auth_level"
		args = append(args, clickhouse.Named("auth_level", *p.AuthLevel))
	}
	if p.MinRisk != nil {
		where += " AND overall_risk >= @min_risk"
		args = append(args, clickhouse.Named("min_risk", *p.MinRisk))
	}
	if p.Since != nil {
		where += " AND created_at >= @since"
		args = append(args, clickhouse.Named("since", *p.Since))
	}
	if p.Until != nil {
		where += " AND created_at < @until"
		args = append(args, clickhouse.Named("until", *p.Until))
	}

	var total uint64
	countQuery := "SELECT count() FROM risk_assessment_events " + where
	if err := r.conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ListAssessments: count: %w", err)
	}

	limit := p.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	dataQuery := `
		SELECT id, user_id, kind, overall_risk, auth_level, location, ip_address, created_at
		FROM risk_assessment_events ` + where + `
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`
	dataArgs := append(args,
		clickhouse.Named("limit", limit),
		clickhouse.Named("offset", p.Offset),
	)

	rows, err := r.conn.Query(ctx, dataQuery, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListAssessments: query: %w", err)
	}
	defer rows.Close()

	events := []AssessmentEvent{}
	for rows.Next() {
		var e AssessmentEvent
		err := rows.Scan(&e.ID, &e.UserID, &e.Kind, &e.OverallRisk, &e.AuthLevel,
			&e.Location, &e.IPAddress, &e.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("ListAssessments: scan: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListAssessments: rows: %w", err)
	}
	return events, total, nil
}

// Analytics is the aggregate view for the admin dashboard.
type Analytics struct {
	Total         uint64          `json:"total"`
	Logins        uint64          `json:"logins"`
	Transactions  uint64          `json:"transactions"`
	Basic         uint64          `json:"basic"`
	MFA           uint64          `json:"mfa"`
	BiometricMFA  uint64          `json:"biometric_mfa"`
	MeanRisk      float64         `json:"mean_risk"`
	P95Risk       float64         `json:"p95_risk"`
	RiskOverTime  []RiskBucket    `json:"risk_over_time"`
	TopRiskyUsers []UserRiskCount `json:"top_risky_users"`
}

// RiskBucket is one hour of assessment volume and average risk.
type RiskBucket struct {
	Hour     time.Time `json:"hour"`
	Count    uint64    `json:"count"`
	MeanRisk float64   `json:"mean_risk"`
}

// UserRiskCount counts high-tier assessments per user.
type UserRiskCount struct {
	UserID string `json:"user_id"`
	Count  uint64 `json:"count"`
}

// GetAnalytics aggregates the window [since, now).
func (r *Reader) GetAnalytics(ctx context.Context, since time.Time) (*Analytics, error) {
	a := &Analytics{}

	err := r.conn.QueryRow(ctx, `
		SELECT
			count() AS total,
			countIf(kind = 'login') AS logins,
			countIf(kind = 'transaction') AS transactions,
			countIf(auth_level = 'basic') AS basic,
			countIf(auth_level = 'mfa') AS mfa,
			countIf(auth_level = 'biometric_mfa') AS biometric_mfa,
			if(total = 0, 0.0, avg(overall_risk)) AS mean_risk,
			if(total = 0, 0.0, quantile(0.95)(overall_risk)) AS p95_risk
		FROM risk_assessment_events
		WHERE created_at >= @since`,
		clickhouse.Named("since", since),
	).Scan(&a.Total, &a.Logins, &a.Transactions, &a.Basic, &a.MFA, &a.BiometricMFA, &a.MeanRisk, &a.P95Risk)
	if err != nil {
		return nil, fmt.Errorf("GetAnalytics: totals: %w", err)
	}

	rows, err := r.conn.Query(ctx, `
		SELECT toStartOfHour(created_at) AS hour, count() AS c, avg(overall_risk) AS mean_risk
		FROM risk_assessment_events
		WHERE created_at >= @since
		GROUP BY hour
		ORDER BY hour`,
		clickhouse.Named("since", since),
	)
	if err != nil {
		return nil, fmt.Errorf("GetAnalytics: buckets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b RiskBucket
		if err := rows.Scan(&b.Hour, &b.Count, &b.MeanRisk); err != nil {
			return nil, fmt.Errorf("GetAnalytics: bucket scan: %w", err)
		}
		a.RiskOverTime = append(a.RiskOverTime, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetAnalytics: bucket rows: %w", err)
	}

	userRows, err := r.conn.Query(ctx, `
		SELECT user_id, count() AS c
		FROM risk_assessment_events
		WHERE created_at >= @since AND auth_level = 'biometric_mfa'
		GROUP BY user_id
		ORDER BY c DESC
		LIMIT 10`,
		clickhouse.Named("since", since),
	)
	if err != nil {
		return nil, fmt.Errorf("GetAnalytics: top users: %w", err)
	}
	defer userRows.Close()

	for userRows.Next() {
		var u UserRiskCount
		if err := userRows.Scan(&u.UserID, &u.Count); err != nil {
			return nil, fmt.Errorf("GetAnalytics: user scan: %w", err)
		}
		a.TopRiskyUsers = append(a.TopRiskyUsers, u)
	}
	if err := userRows.Err(); err != nil {
		return nil, fmt.Errorf("GetAnalytics: user rows: %w", err)
	}

	return a, nil
}
