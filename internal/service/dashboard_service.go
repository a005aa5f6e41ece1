package service

import (
	"time"

	"scriptaffiliator/internal/repository"

	"github.com/google/uuid"
)

type DashboardStats struct {
	TotalProducts    int64 `json:"total_products"`
	TotalScripts     int64 `json:"total_scripts"`
	PublishedScripts int64 `json:"published_scripts"`
}

// ActivityPoint counts scripts created on one UTC day.
type ActivityPoint struct {
	Date      string `json:"date"`
	Generated int    `json:"generated"`
	Published int    `json:"published"`
}

type DashboardService interface {
	GetDashboardStats(userID string) (*DashboardStats, error)
	GetScriptActivity(userID string, days int) ([]ActivityPoint, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	scriptRepo  repository.ScriptRepository
	now         func() time.Time
}

func NewDashboardService(pRepo repository.ProductRepository, sRepo repository.ScriptRepository) DashboardService {
	return &dashboardService{productRepo: pRepo, scriptRepo: sRepo, now: time.Now}
}

func (s *dashboardService) GetDashboardStats(userID string) (*DashboardStats, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrMissingUserID
	}

	products, err := s.productRepo.CountByUser(id)
	if err != nil {
		return nil, err
	}
	scripts, err := s.scriptRepo.GetStats(id)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalProducts:    products,
		TotalScripts:     scripts.TotalScripts,
		PublishedScripts: scripts.PublishedScripts,
	}, nil
}

// GetScriptActivity returns one point per day for the last days days,
// oldest first, today included.
func (s *dashboardService) GetScriptActivity(userID string, days int) ([]ActivityPoint, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrMissingUserID
	}
	if days <= 0 {
		days = 7
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	scripts, err := s.scriptRepo.FindCreatedSince(id, start)
	if err != nil {
		return nil, err
	}

	points := make([]ActivityPoint, days)
	index := make(map[string]int, days)
	for i := range points {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		points[i].Date = day
		index[day] = i
	}
	for _, sc := range scripts {
		i, ok := index[sc.CreatedAt.UTC().Format("2006-01-02")]
		if !ok {
			continue
		}
		points[i].Generated++
		if sc.IsPublish {
			points[i].Published++
		}
	}
	return points, nil
}
