package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/xiaozhang0801/ost/pkg/countries"
)

// CountryTask 定时刷新国家选项缓存，降低页面首开时对远端目录的依赖
type CountryTask struct {
	CountrySvc *countries.Service
	Cron       *cron.Cron
}

func NewCountryTask(countrySvc *countries.Service) *CountryTask {
	return &CountryTask{
		CountrySvc: countrySvc,
		Cron:       cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 启动定时任务
func (t *CountryTask) Start() {
	// 首次执行，启动即预热缓存
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Println("[Task] 服务启动，正在预热国家选项缓存...")
		t.refreshJob(ctx)
	}()

	// 定时策略，每6小时刷新一次
	_, err := t.Cron.AddFunc("0 0 0/6 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		t.refreshJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动国家缓存定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("国家选项缓存任务已启动 (每6小时刷新一次)")
}

func (t *CountryTask) refreshJob(ctx context.Context) {
	if err := t.CountrySvc.Refresh(ctx); err != nil {
		// 失败仅记录，接口侧有内置列表兜底
		log.Printf("[Cron] 国家选项刷新失败: %v", err)
		return
	}
	log.Println("[Cron] 国家选项缓存已刷新")
}
