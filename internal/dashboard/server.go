// Package dashboard serves a read-only ops view over the bot's data:
// liveness, activity counters, and recent role sync reports.
package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/zulandar/trestle/internal/models"
	"gorm.io/gorm"
)

const defaultReportLimit = 50

// StartOpts holds configuration for the dashboard server.
type StartOpts struct {
	DB   *gorm.DB
	Addr string
}

// Start launches the dashboard HTTP server. It blocks until ctx is cancelled,
// then shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.DB == nil {
		return fmt.Errorf("dashboard: db is required")
	}
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:8480"
	}

	srv := &http.Server{
		Addr:    opts.Addr,
		Handler: newRouter(opts.DB),
	}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}

// newRouter builds the Gin router with all dashboard routes.
func newRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handleHealth(db))
	router.GET("/api/activity", handleActivity(db))
	router.GET("/api/syncreports", handleSyncReports(db))
	return router
}

func handleHealth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// handleActivity reports how much of the feedback economy the bot has seen.
func handleActivity(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var users, blocked, threads, open int64
		if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.User{}).Where("is_blocked = ?", true).Count(&blocked).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.Thread{}).Count(&threads).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := db.Model(&models.ThreadUser{}).Where("active_contract_message_id IS NOT NULL").Count(&open).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"users":          users,
			"blocked_users":  blocked,
			"threads":        threads,
			"open_contracts": open,
		})
	}
}

// handleSyncReports returns the newest role sync audit rows, optionally
// filtered by run ID.
func handleSyncReports(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultReportLimit
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}

		query := db.Order("id DESC").Limit(limit)
		if runID := c.Query("run_id"); runID != "" {
			query = query.Where("run_id = ?", runID)
		}

		var reports []models.SyncReport
		if err := query.Find(&reports).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports})
	}
}
