package server

import (
	"context"
	"fmt"
	"net/http"
)

// UserFileCount is one per-user entry in the dashboard statistics.
type UserFileCount struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	FileCount int64  `json:"fileCount"`
}

// DashboardStats is the response of GET /api/dashboard/stats. It reflects
// every user's files, not just the caller's.
type DashboardStats struct {
	TotalFiles int64            `json:"totalFiles"`
	FileTypes  map[string]int64 `json:"fileTypes"`
	UserStats  []UserFileCount  `json:"userStats"`
}

// Stats recomputes the aggregate view from the files table on every call.
// Cost is linear in total file count; there is no cache.
func (s *FileStore) Stats(ctx context.Context) (DashboardStats, error) {
	stats := DashboardStats{
		FileTypes: map[string]int64{},
		UserStats: []UserFileCount{},
	}

	typeRows, err := s.db.QueryContext(ctx,
		`SELECT file_type, COUNT(*) FROM files GROUP BY file_type`,
	)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("count file types: %w", err)
	}
	defer typeRows.Close()

	for typeRows.Next() {
		var fileType string
		var count int64
		if err := typeRows.Scan(&fileType, &count); err != nil {
			return DashboardStats{}, fmt.Errorf("scan type count: %w", err)
		}
		stats.FileTypes[fileType] = count
		stats.TotalFiles += count
	}
	if err := typeRows.Err(); err != nil {
		return DashboardStats{}, err
	}

	userRows, err := s.db.QueryContext(ctx,
		`SELECT f.user_id, u.username, COUNT(*)
		 FROM files f
		 JOIN users u ON u.id = f.user_id
		 GROUP BY f.user_id, u.username
		 ORDER BY u.username`,
	)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("count per user: %w", err)
	}
	defer userRows.Close()

	for userRows.Next() {
		var entry UserFileCount
		if err := userRows.Scan(&entry.UserID, &entry.Username, &entry.FileCount); err != nil {
			return DashboardStats{}, fmt.Errorf("scan user count: %w", err)
		}
		stats.UserStats = append(stats.UserStats, entry)
	}
	return stats, userRows.Err()
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.files.Stats(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("dashboard: stats failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
