package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// KeepTyping shows the typing indicator in chatID while fn runs. The emitter
// goroutine sends the indicator right away and then every interval, so a slow
// Bot API never delays fn. It is stopped and joined before KeepTyping returns,
// including when fn panics.
func KeepTyping(ctx context.Context, m Messenger, chatID int64, interval time.Duration, fn func(ctx context.Context) error) error {
	typingCtx, cancel := context.WithCancel(ctx)

	sendTyping := func() {
		if err := m.SendTyping(typingCtx, chatID); err != nil && typingCtx.Err() == nil {
			log.Warn().Err(err).Int64("chat_id", chatID).Msg("typing indicator failed")
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sendTyping()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
				sendTyping()
			}
		}
	}()

	defer func() {
		cancel()
		wg.Wait()
	}()

	return fn(ctx)
}
