package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const statsJobTimeout = 30 * time.Second

// CartStatsScheduler 장바구니 통계 주기 기록 스케줄러
type CartStatsScheduler struct {
	cron        *cron.Cron
	cartService service.CartService
	schedule    string
}

// NewCartStatsScheduler schedule 은 cron 표현식 또는 "@every 1h" 형식
func NewCartStatsScheduler(cartService service.CartService, schedule string) *CartStatsScheduler {
	return &CartStatsScheduler{
		cron:        cron.New(),
		cartService: cartService,
		schedule:    schedule,
	}
}

// Start 스케줄러 시작
func (s *CartStatsScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.RunOnce)
	if err != nil {
		logger.Error("Failed to add cron job for cart stats", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart stats scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// RunOnce 통계를 한 번 수집하여 로그로 남김
func (s *CartStatsScheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), statsJobTimeout)
	defer cancel()

	stats, err := s.cartService.Stats(ctx)
	if err != nil {
		logger.Error("Failed to collect cart stats", err)
		return
	}

	logger.Info("Cart stats", map[string]interface{}{
		"carts":      stats.Carts,
		"line_items": stats.LineItems,
		"units":      stats.Units,
	})
}

// Stop 스케줄러 중지, 실행 중인 작업이 끝날 때까지 대기
func (s *CartStatsScheduler) Stop() {
	logger.Info("Stopping cart stats scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Cart stats scheduler stopped", nil)
}
