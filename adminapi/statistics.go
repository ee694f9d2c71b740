package adminapi

import (
	"context"
	"slices"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

const statisticsKey = "statistics"

// ErrStatisticsUnavailable is returned when the backend answers with
// success=false or without data.
var ErrStatisticsUnavailable = errors.New("statistics unavailable")

// Statistics returns dashboard statistics, served from cache while fresh and
// while the session check (if any) passes. Callers get their own copy.
func (s *Service) Statistics(ctx context.Context) (*StatisticsResponse, error) {
	if s.statistics != nil {
		if s.sessionActive != nil && !s.sessionActive() {
			s.statistics.Purge()
		} else if cached, ok := s.statistics.Get(statisticsKey); ok {
			return cached.clone(), nil
		}
	}

	var res APIResponse[StatisticsResponse]
	if err := s.api.Get(ctx, "/statistics", &res); err != nil {
		return nil, err
	}
	if !res.Success || res.Data == nil {
		msg := res.Error
		if msg == "" {
			msg = res.Message
		}
		return nil, errors.Wrapf(ErrStatisticsUnavailable, "backend: %q", msg)
	}

	if s.statistics != nil {
		s.statistics.Add(statisticsKey, res.Data.clone())
	}
	return res.Data, nil
}

func (r *StatisticsResponse) clone() *StatisticsResponse {
	c := *r
	c.SystemStatus.Details = slices.Clone(r.SystemStatus.Details)
	return &c
}

// ClearStatisticsCache drops any cached statistics.
func (s *Service) ClearStatisticsCache() {
	if s.statistics != nil {
		s.statistics.Purge()
	}
}
