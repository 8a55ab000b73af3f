package bot

import (
	"context"
	"fmt"
	"log"
)

// SendDailyReports sends the daily summary to every signed-in chat that did
// not switch reports off. A failing chat does not stop the others.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	chats, err := b.chats.ListReportable(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	log.Printf("[info] sending daily reports to %d chats", len(chats))

	sent := 0
	for _, chat := range chats {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sess, err := b.session(ctx, chat.ChatID)
		if err != nil {
			log.Printf("report session %d: %v", chat.ChatID, err)
			continue
		}
		if !sess.authenticated() {
			continue
		}

		state, err := sess.refresh(ctx)
		if err != nil {
			log.Printf("report tasks %d: %v", chat.ChatID, err)
			continue
		}

		text := b.reminderSvc.DailySummary(state.Tasks, b.now())
		if err := b.sendText(chat.ChatID, text); err != nil {
			log.Printf("send report to %d: %v", chat.ChatID, err)
			continue
		}
		sent++
	}

	log.Printf("[info] daily reports sent: %d/%d", sent, len(chats))
	return nil
}
