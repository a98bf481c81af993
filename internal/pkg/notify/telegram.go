// Package notify alerts operators when booking codes cannot be resolved.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/betcode/internal/pkg/config"
)

// Min interval between two messages to the same chat, below the ~30/min Telegram limit.
const telegramSendInterval = 2 * time.Second

const queueSize = 100

// Results passed to the result hook.
const (
	ResultSent       = "sent"
	ResultFailed     = "failed"
	ResultSuppressed = "suppressed"
	ResultDropped    = "dropped"
)

// sender is the subset of *tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type unresolvedCode struct {
	platform string
	code     string
	reason   string
	at       time.Time
}

// TelegramNotifier queues unresolved-code alerts and sends them from one worker.
// A nil *TelegramNotifier is valid and does nothing.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	cooldown time.Duration
	interval time.Duration
	onResult func(result string)

	mu       sync.Mutex
	lastSend time.Time
	lastSeen map[string]time.Time // platform:code -> last queued

	queue     chan unresolvedCode
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
}

// NewTelegramNotifier connects the bot and starts the send worker.
func NewTelegramNotifier(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram bot token and chat id are required")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newTelegramNotifier(bot, cfg.ChatID, cfg.Cooldown, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID, "bot", bot.Self.UserName)
	return n, nil
}

func newTelegramNotifier(bot sender, chatID int64, cooldown, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		cooldown:  cooldown,
		interval:  interval,
		lastSeen:  make(map[string]time.Time),
		queue:     make(chan unresolvedCode, queueSize),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

// OnResult installs a hook called with one of the Result* values per alert.
func (n *TelegramNotifier) OnResult(fn func(result string)) {
	if n == nil {
		return
	}
	n.onResult = fn
}

// NotifyUnresolved queues an alert unless the same code was reported within the cooldown.
// It never blocks; a full queue drops the alert.
func (n *TelegramNotifier) NotifyUnresolved(platform, code, reason string) bool {
	if n == nil {
		return false
	}

	now := time.Now()
	key := platform + ":" + strings.ToUpper(strings.TrimSpace(code))

	n.mu.Lock()
	if last, ok := n.lastSeen[key]; ok && now.Sub(last) < n.cooldown {
		n.mu.Unlock()
		n.result(ResultSuppressed)
		return false
	}
	n.lastSeen[key] = now
	n.pruneLocked(now)
	n.mu.Unlock()

	select {
	case <-n.ctx.Done():
		return false
	case n.queue <- unresolvedCode{platform: platform, code: code, reason: reason, at: now}:
		return true
	default:
		slog.Warn("Telegram alert: queue full, dropping", "platform", platform, "code", code)
		n.result(ResultDropped)
		return false
	}
}

// QueueLen returns current number of messages in the send queue.
func (n *TelegramNotifier) QueueLen() int {
	if n == nil {
		return 0
	}
	return len(n.queue)
}

// Stop stops the worker after the queued alerts are sent.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.stopOnce.Do(func() {
		n.cancel()
		<-n.queueDone
	})
}

func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			for {
				select {
				case msg := <-n.queue:
					n.send(msg, false)
				default:
					return
				}
			}
		case msg := <-n.queue:
			n.send(msg, true)
		}
	}
}

// send delivers one alert, keeping telegramSendInterval between messages while running.
func (n *TelegramNotifier) send(msg unresolvedCode, wait bool) {
	if wait {
		n.mu.Lock()
		elapsed := time.Since(n.lastSend)
		n.mu.Unlock()
		if elapsed < n.interval {
			select {
			case <-n.ctx.Done():
			case <-time.After(n.interval - elapsed):
			}
		}
	}

	tgMsg := tgbotapi.NewMessage(n.chatID, formatUnresolved(msg))
	tgMsg.ParseMode = tgbotapi.ModeMarkdownV2

	n.mu.Lock()
	n.lastSend = time.Now()
	n.mu.Unlock()

	if _, err := n.bot.Send(tgMsg); err != nil {
		slog.Error("Telegram send: failed", "error", err, "platform", msg.platform, "code", msg.code)
		n.result(ResultFailed)
		return
	}
	slog.Info("Telegram send: success", "platform", msg.platform, "code", msg.code, "delay", time.Since(msg.at))
	n.result(ResultSent)
}

func (n *TelegramNotifier) result(r string) {
	if n.onResult != nil {
		n.onResult(r)
	}
}

// pruneLocked forgets codes whose cooldown expired once the map grows large.
func (n *TelegramNotifier) pruneLocked(now time.Time) {
	if len(n.lastSeen) < 1024 {
		return
	}
	for k, t := range n.lastSeen {
		if now.Sub(t) >= n.cooldown {
			delete(n.lastSeen, k)
		}
	}
}

func formatUnresolved(msg unresolvedCode) string {
	esc := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s) }

	var b strings.Builder
	b.WriteString("⚠️ *Booking code not resolved*\n\n")
	fmt.Fprintf(&b, "Platform: *%s*\n", esc(msg.platform))
	fmt.Fprintf(&b, "Code: `%s`\n", esc(msg.code))
	if msg.reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n", esc(msg.reason))
	}
	fmt.Fprintf(&b, "_%s_", esc(msg.at.UTC().Format("2006-01-02 15:04:05 UTC")))
	return b.String()
}
