package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"weekly-planner/internal/app"
	"weekly-planner/internal/config"
	"weekly-planner/internal/meal"
	"weekly-planner/internal/planner"
	"weekly-planner/internal/shopping"
)

const (
	actionSwap    = "swap"
	actionProtein = "prot"
)

// Bot exposes the weekly planner through a Telegram chat.
type Bot struct {
	api     *tgbotapi.BotAPI
	app     *app.App
	allowed map[int64]struct{}
	logger  *zap.Logger
}

// NewBot initializes the Telegram API and sets the webhook when one is
// configured.
func NewBot(cfg *config.Config, application *app.App, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("account", api.Self.UserName))

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("failed to build webhook: %w", err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		logger.Info("Webhook set", zap.String("description", resp.Description))
	}

	return newBot(api, application, cfg.TelegramAllowUserIDs, logger), nil
}

func newBot(api *tgbotapi.BotAPI, application *app.App, allowedIDs []int64, logger *zap.Logger) *Bot {
	allowed := make(map[int64]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}
	return &Bot{api: api, app: application, allowed: allowed, logger: logger}
}

// ServeHTTP handles a webhook update.
func (b *Bot) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.logger.Warn("Error parsing update", zap.Error(err))
		http.Error(w, "invalid update", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	switch {
	case update.CallbackQuery != nil:
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
	case update.Message != nil:
		if !b.isAllowed(update.Message.From) {
			return
		}
		go b.processMessage(update.Message)
	}
}

func (b *Bot) isAllowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if _, ok := b.allowed[from.ID]; ok {
		return true
	}
	b.logger.Warn("Unauthorized access attempt", zap.Int64("user_id", from.ID), zap.String("username", from.UserName))
	return false
}

func userKey(from *tgbotapi.User) string {
	return strconv.FormatInt(from.ID, 10)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user := userKey(msg.From)

	switch msg.Command() {
	case "start", "ajuda":
		b.sendText(msg.Chat.ID, helpText, nil)
	case "plano":
		view, err := b.app.Plan(ctx, user)
		b.replyPlan(msg.Chat.ID, view, err)
	case "novo":
		view, err := b.app.NewWeek(ctx, user)
		b.replyPlan(msg.Chat.ID, view, err)
	case "trocar":
		view, err := b.app.Plan(ctx, user)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		kb := swapKeyboard(view)
		b.sendText(msg.Chat.ID, "🔄 *Qual refeição você quer trocar?*", &kb)
	case "proteinas":
		view, err := b.app.Plan(ctx, user)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		kb := proteinKeyboard(view)
		b.sendText(msg.Chat.ID, formatProteinSummary(view), &kb)
	case "lista":
		list, err := b.app.ShoppingList(ctx, user)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendText(msg.Chat.ID, formatShoppingListMarkdown(list), nil)
	case "publicar":
		post, err := b.app.Publish(ctx, user)
		if err != nil {
			b.replyError(msg.Chat.ID, err)
			return
		}
		b.sendText(msg.Chat.ID, fmt.Sprintf("✅ *Rascunho criado:* %s", escapeMarkdown(post.Title)), nil)
	default:
		b.sendText(msg.Chat.ID, helpText, nil)
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	user := userKey(query.From)

	// Answer callback to remove spinner
	b.api.Request(tgbotapi.NewCallback(query.ID, ""))

	cb, err := parseCallback(query.Data)
	if err != nil {
		b.logger.Warn("Invalid callback data", zap.String("data", query.Data), zap.Error(err))
		return
	}
	if query.Message == nil {
		return
	}
	chatID, messageID := query.Message.Chat.ID, query.Message.MessageID

	switch cb.action {
	case actionSwap:
		view, err := b.app.Swap(ctx, user, cb.mealType, cb.day)
		if err != nil && !errors.Is(err, planner.ErrNoEligibleOption) {
			b.replyError(chatID, err)
			return
		}
		kb := swapKeyboard(view)
		b.editText(chatID, messageID, formatPlanMarkdown(view), &kb)
	case actionProtein:
		view, err := b.app.ToggleProtein(ctx, user, cb.tag)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		kb := proteinKeyboard(view)
		b.editText(chatID, messageID, formatProteinSummary(view), &kb)
	}
}

func (b *Bot) replyPlan(chatID int64, view app.PlanView, err error) {
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	kb := swapKeyboard(view)
	b.sendText(chatID, formatPlanMarkdown(view), &kb)
}

func (b *Bot) replyError(chatID int64, err error) {
	b.logger.Error("Telegram request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	safeErr := strings.ReplaceAll(err.Error(), "`", "'")
	b.sendText(chatID, fmt.Sprintf("❌ *Erro:*\n```\n%s\n```", safeErr), nil)
}

func (b *Bot) sendText(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		b.logger.Error("Failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

const helpText = `🧑‍🍳 *Planejador semanal*

/plano - cardápio da semana
/novo - sortear um novo cardápio
/trocar - trocar uma refeição
/proteinas - escolher as proteínas
/lista - lista de compras
/publicar - publicar o cardápio no blog`

type callback struct {
	action   string
	mealType meal.Type
	day      int
	tag      string
}

// parseCallback decodes "swap|<meal type>|<day>" and "prot|<tag>".
func parseCallback(data string) (callback, error) {
	parts := strings.Split(data, "|")
	switch {
	case parts[0] == actionSwap && len(parts) == 3:
		t, err := meal.ParseType(parts[1])
		if err != nil {
			return callback{}, err
		}
		day, err := strconv.Atoi(parts[2])
		if err != nil || day < 0 || day >= meal.DaysPerWeek {
			return callback{}, fmt.Errorf("%w: %q", planner.ErrInvalidDay, parts[2])
		}
		return callback{action: actionSwap, mealType: t, day: day}, nil
	case parts[0] == actionProtein && len(parts) == 2 && parts[1] != "":
		return callback{action: actionProtein, tag: parts[1]}, nil
	}
	return callback{}, fmt.Errorf("unknown callback %q", data)
}

func swapData(t meal.Type, day int) string {
	return fmt.Sprintf("%s|%s|%d", actionSwap, t, day)
}

func proteinData(tag string) string {
	return actionProtein + "|" + tag
}

var mdEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return mdEscaper.Replace(s)
}

func formatPlanMarkdown(view app.PlanView) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Cardápio da semana de %s*\n", view.WeekStart))

	for _, t := range meal.Types {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", t.Label()))
		for _, d := range view.Days {
			if d.MealType != t {
				continue
			}
			name := "—"
			if d.Meal != "" {
				name = escapeMarkdown(d.Meal)
			}
			sb.WriteString(fmt.Sprintf("• %s: %s\n", d.DayName, name))
		}
	}

	sb.WriteString(fmt.Sprintf("\n🥩 *Proteínas Desejadas:* %s\n", escapeMarkdown(view.ProteinSummary)))
	for _, w := range view.Warnings {
		sb.WriteString(fmt.Sprintf("⚠️ _%s_\n", escapeMarkdown(w.Message)))
	}
	return sb.String()
}

func formatShoppingListMarkdown(list shopping.List) string {
	var sb strings.Builder
	sb.WriteString("🛒 *Lista de Compras*\n")
	for _, s := range list.Sections {
		sb.WriteString(fmt.Sprintf("\n*%s*\n", s.Label))
		if len(s.Lines) == 0 {
			sb.WriteString("_vazio_\n")
			continue
		}
		for _, ln := range s.Lines {
			sb.WriteString(fmt.Sprintf("• %s: %s\n", escapeMarkdown(ln.Name), escapeMarkdown(ln.String())))
		}
	}
	return sb.String()
}

func formatProteinSummary(view app.PlanView) string {
	return fmt.Sprintf("🥩 *Proteínas Desejadas:* %s", escapeMarkdown(view.ProteinSummary))
}

func proteinKeyboard(view app.PlanView) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, opt := range view.ProteinOptions {
		mark := "⬜"
		if opt.Active {
			mark = "✅"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+" "+opt.Label, proteinData(opt.Tag)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// swapKeyboard has one row per day and one button per meal type.
func swapKeyboard(view app.PlanView) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, meal.DaysPerWeek)
	for day := 0; day < meal.DaysPerWeek; day++ {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(meal.Types))
		for _, t := range meal.Types {
			label := fmt.Sprintf("🔄 %s %s", shortDay(meal.DayNames[day]), t.Label())
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, swapData(t, day)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func shortDay(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
