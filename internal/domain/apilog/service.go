package apilog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Service provides append-only logging of provider calls.
// No updates or deletes are supported by design.
type Service struct {
	db *sql.DB
}

// NewService creates a new log service.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Insert appends one record and returns its assigned id.
// A zero Timestamp becomes now (UTC); an empty ActorID becomes "system".
func (s *Service) Insert(ctx context.Context, rec Record) (int64, error) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	if rec.ActorID == "" {
		rec.ActorID = SystemActor
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO api_logs (tool, input_tokens, output_tokens, model, ts, response_time_ms, actor_id, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Tool,
		rec.InputTokens,
		rec.OutputTokens,
		rec.Model,
		rec.Timestamp.Format(time.RFC3339Nano),
		rec.ResponseTimeMs,
		rec.ActorID,
		rec.Message,
	)
	if err != nil {
		return 0, fmt.Errorf("apilog insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("apilog insert id: %w", err)
	}
	return id, nil
}

// orderColumns is the allow-list for QueryArgs.OrderBy. Anything else falls
// back to "id" — column names never come from user input verbatim.
var orderColumns = map[string]bool{
	"id":       true,
	"tool":     true,
	"model":    true,
	"ts":       true,
	"actor_id": true,
}

// Query returns one page of records plus the total count for the same
// filter, so pagination stays stable while new rows arrive.
func (s *Service) Query(ctx context.Context, args QueryArgs) ([]Record, int, error) {
	if args.Page < 1 {
		args.Page = 1
	}
	if args.PerPage < 1 {
		args.PerPage = 25
	}

	where, params := buildWhere(args)

	var total int
	countQuery := "SELECT COUNT(*) FROM api_logs" + where
	if err := s.db.QueryRowContext(ctx, countQuery, params...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("apilog count: %w", err)
	}

	orderBy := args.OrderBy
	if !orderColumns[orderBy] {
		orderBy = "id"
	}
	order := "DESC"
	if strings.EqualFold(args.Order, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT id, tool, input_tokens, output_tokens, model, ts, response_time_ms, actor_id, message FROM api_logs%s ORDER BY %s %s LIMIT ? OFFSET ?",
		where, orderBy, order,
	)
	params = append(params, args.PerPage, (args.Page-1)*args.PerPage)

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, 0, fmt.Errorf("apilog query: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		if err := rows.Scan(
			&rec.ID, &rec.Tool, &rec.InputTokens, &rec.OutputTokens,
			&rec.Model, &ts, &rec.ResponseTimeMs, &rec.ActorID, &rec.Message,
		); err != nil {
			return nil, 0, fmt.Errorf("apilog scan: %w", err)
		}
		rec.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("apilog rows: %w", err)
	}

	return records, total, nil
}

// buildWhere assembles the WHERE clause shared by the count and page
// queries. Identical filters keep the total stable.
func buildWhere(args QueryArgs) (string, []any) {
	var clauses []string
	var params []any

	if args.Search != "" {
		needle := "%" + strings.ToLower(args.Search) + "%"
		clauses = append(clauses, "(LOWER(tool) LIKE ? OR LOWER(model) LIKE ? OR LOWER(message) LIKE ?)")
		params = append(params, needle, needle, needle)
	}
	if args.Tool != "" {
		clauses = append(clauses, "tool = ?")
		params = append(params, args.Tool)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), params
}

// BuildMessage assembles the opaque message blob for a record, honoring the
// content toggles: the prompt only when logPrompts, the response only when
// logResponses. With both off the blob is empty and the log row still keeps
// its metadata columns.
func BuildMessage(prompt, response string, logPrompts, logResponses bool) string {
	payload := map[string]string{}
	if logPrompts && prompt != "" {
		payload["prompt"] = prompt
	}
	if logResponses && response != "" {
		payload["response"] = response
	}
	if len(payload) == 0 {
		return ""
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(data)
}
