package api

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// recordClick 把一次点击投入缓冲 channel。
// channel 满时丢弃事件：重定向延迟优先于点击计数的持久性，
// 崩溃或丢弃最多损失一个刷新周期内的计数。
func (server *Server) recordClick(shortCode string) {
	select {
	case server.clickChan <- shortCode:
	default:
		log.Warn().Str("short_code", shortCode).Msg("click channel is full, discarding click event")
	}
}

// ClickProcessor 在后台聚合点击并定期刷入数据库，应在独立 goroutine 中运行
func (server *Server) ClickProcessor() {
	// 在内存中按短码聚合点击次数
	clicks := make(map[string]int64)

	interval := server.config.ClickFlushInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("starting background click processor")

	for {
		select {
		case shortCode := <-server.clickChan:
			clicks[shortCode]++
		case <-ticker.C:
			if len(clicks) == 0 {
				continue
			}

			// 复制当前聚合结果并重置，避免阻塞后续的 channel 接收
			clicksToFlush := clicks
			clicks = make(map[string]int64)

			// 数据库写入放到新的 goroutine，防止长事务拖慢聚合循环
			go server.flushClicksToDB(clicksToFlush)
		}
	}
}

func (server *Server) flushClicksToDB(clicksToFlush map[string]int64) {
	err := server.store.AddUrlClicks(context.Background(), clicksToFlush)
	if err != nil {
		log.Error().Err(err).Int("batch_size", len(clicksToFlush)).Msg("failed to flush clicks to db")
	}
}
