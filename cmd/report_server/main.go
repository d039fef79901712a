// Command report_server serves the generated docs directory plus a small
// JSON API over the historical feed.
package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pritamkhande/nifty500-eod-upstox/services/config"
	"github.com/pritamkhande/nifty500-eod-upstox/services/report"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	addr := flag.String("addr", ":8080", "Listen address")
	docsDir := flag.String("docs", "", "Override docs directory")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *docsDir != "" {
		cfg.Report.DocsDir = *docsDir
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/api/metrics", func(c *gin.Context) {
		records, err := loadFeed(cfg.Report.DocsDir)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed not built yet"})
			return
		}
		c.JSON(http.StatusOK, records)
	})

	router.GET("/api/metrics/:symbol", func(c *gin.Context) {
		records, err := loadFeed(cfg.Report.DocsDir)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed not built yet"})
			return
		}
		for _, rec := range records {
			if rec.Symbol == c.Param("symbol") {
				c.JSON(http.StatusOK, rec)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown symbol"})
	})

	router.StaticFS("/docs", http.Dir(cfg.Report.DocsDir))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/docs/gann-index.html")
	})

	logger.Info("report server listening",
		zap.String("addr", *addr),
		zap.String("docs", cfg.Report.DocsDir))
	if err := router.Run(*addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func loadFeed(docsDir string) ([]report.HistoricalRecord, error) {
	raw, err := os.ReadFile(filepath.Join(docsDir, "historical-test-data.json"))
	if err != nil {
		return nil, err
	}
	var records []report.HistoricalRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}
