package handlers

import (
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/visora-labs/visora-relay/internal/models"
)

// statsDays is the length of the daily request chart.
const statsDays = 20

// monthShortID holds Indonesian short month names indexed by time.Month.
var monthShortID = [...]string{"", "Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// StatsHandler serves the public dashboard statistics.
type StatsHandler struct {
	db    *gorm.DB
	nowFn func() time.Time
	randF func() float64
}

// NewStatsHandler constructs a StatsHandler.
func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db, nowFn: time.Now, randF: rand.Float64}
}

// dayLabel formats a bucket label like "02 Jan".
func dayLabel(t time.Time) string {
	return t.Format("02") + " " + monthShortID[t.Month()]
}

// Stats handles GET /api/stats. Request counts come from the usage log;
// CPU and memory figures are synthesized for the dashboard gauges.
func (h *StatsHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	now := h.nowFn()

	var totalUsers, totalKeys, totalLogs int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).Count(&totalUsers).Error; errCount != nil {
		log.WithError(errCount).Error("stats query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "stats query failed"})
		return
	}
	h.db.WithContext(ctx).Model(&models.APIKey{}).Count(&totalKeys)
	h.db.WithContext(ctx).Model(&models.UsageLog{}).Count(&totalLogs)

	// Daily request buckets for the last statsDays days, oldest first.
	start := now.AddDate(0, 0, -(statsDays - 1))
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, now.Location())

	var logs []models.UsageLog
	h.db.WithContext(ctx).Where("created_at >= ?", startDay).Find(&logs)

	counts := make(map[string]int64, statsDays)
	for _, row := range logs {
		counts[row.CreatedAt.In(now.Location()).Format("2006-01-02")]++
	}

	labels := make([]string, 0, statsDays)
	requests := make([]int64, 0, statsDays)
	memoryChart := make([]float64, 0, statsDays)
	for i := 0; i < statsDays; i++ {
		day := startDay.AddDate(0, 0, i)
		labels = append(labels, dayLabel(day))
		requests = append(requests, counts[day.Format("2006-01-02")])
		memoryChart = append(memoryChart, math.Round((84+math.Sin(float64(i)/2)*2+h.randF())*10)/10)
	}

	var recentLogs int64
	h.db.WithContext(ctx).Model(&models.UsageLog{}).Where("created_at >= ?", now.Add(-time.Hour)).Count(&recentLogs)

	var lastLog models.UsageLog
	var lastLogTime *time.Time
	if errLast := h.db.WithContext(ctx).Order("created_at DESC").First(&lastLog).Error; errLast == nil {
		lastLogTime = &lastLog.CreatedAt
	}

	var activeCount int64
	h.db.WithContext(ctx).Model(&models.UsageLog{}).Where("created_at >= ?", now.Add(-5*time.Second)).Count(&activeCount)

	memUsed := math.Round((84.2+math.Sin(float64(now.UnixMilli())/10000)*2+h.randF())*10) / 10
	const memTotal = 256.0

	c.JSON(http.StatusOK, gin.H{
		"totals": gin.H{
			"users":    totalUsers,
			"api_keys": totalKeys,
			"requests": totalLogs,
		},
		"chart": gin.H{
			"labels":   labels,
			"requests": requests,
			"memory":   memoryChart,
		},
		"activity": gin.H{
			"recent_requests": recentLogs,
			"last_request_at": lastLogTime,
			"active":          activeCount > 0,
			"api_rate":        float64(activeCount) * 4.0,
		},
		"system": gin.H{
			"cpu":        math.Round((15+h.randF()*5)*10) / 10,
			"mem_used":   memUsed,
			"mem_total":  memTotal,
			"mem_free":   math.Round((memTotal-memUsed)*10) / 10,
			"updated_at": now,
		},
	})
}
