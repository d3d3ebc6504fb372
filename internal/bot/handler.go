package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"frameshot/internal/capture"
	"frameshot/internal/domain"
	"frameshot/internal/storage"
)

// Capturer produces screenshots. *capture.Service satisfies it.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Result, error)
}

// PresetLookup is the part of storage.PresetRepository the bot reads.
type PresetLookup interface {
	GetPreset(ctx context.Context, name string) (domain.Preset, error)
	ListPresets(ctx context.Context) ([]domain.Preset, error)
}

// Handler holds dependencies for the Telegram bot handlers.
type Handler struct {
	bot      *tgbot.Bot
	capturer Capturer
	presets  PresetLookup
	log      logrus.FieldLogger
}

var errNoURL = errors.New("message has no url")

// unknownSizeError reports a size argument that is neither WxH nor a preset.
type unknownSizeError struct {
	size string
}

func (e *unknownSizeError) Error() string {
	return fmt.Sprintf("unknown size %q", e.size)
}

const welcomeMessage = "Welcome to FrameShot! Send me a link and I'll reply with a screenshot.\n\n" +
	"Usage: <url> [WIDTHxHEIGHT | preset name]\n" +
	"Examples:\n  example.com\n  https://example.com 1200x630\n  example.com iPhone SE\n\n" +
	"/presets lists the available sizes."

// NewHandler creates a new bot handler instance.
func NewHandler(token string, capturer Capturer, presets PresetLookup, logger logrus.FieldLogger) (*Handler, error) {
	log := logger.WithField("component", "bot_handler")

	h := &Handler{
		capturer: capturer,
		presets:  presets,
		log:      log,
	}

	b, err := tgbot.New(token, tgbot.WithDefaultHandler(h.captureHandler))
	if err != nil {
		log.WithError(err).Error("Failed to create Telegram bot instance")
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	h.bot = b

	h.registerHandlers()

	log.Info("Telegram bot handler initialized")
	return h, nil
}

// registerHandlers sets up the command handlers.
func (h *Handler) registerHandlers() {
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/start", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/help", tgbot.MatchTypeExact, h.startHandler)
	h.bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/presets", tgbot.MatchTypeExact, h.presetsHandler)
	h.log.Info("Registered /start, /help and /presets command handlers")
}

// Start begins polling for updates from Telegram.
// This function blocks until the context is cancelled.
func (h *Handler) Start(ctx context.Context) {
	h.log.Info("Starting Telegram bot polling...")
	h.bot.Start(ctx)
	h.log.Info("Telegram bot polling stopped.")
}

func (h *Handler) startHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	h.reply(ctx, b, update, welcomeMessage)
}

func (h *Handler) presetsHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	presets, err := h.presets.ListPresets(ctx)
	if err != nil {
		h.log.WithError(err).Error("Failed to list presets")
		h.reply(ctx, b, update, "Could not load presets, please try again later.")
		return
	}
	h.reply(ctx, b, update, formatPresets(presets))
}

// captureHandler treats every other text message as a capture command.
func (h *Handler) captureHandler(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	log := h.log.WithFields(logrus.Fields{
		"chat_id": update.Message.Chat.ID,
		"text":    update.Message.Text,
	})

	req, err := parseCaptureCommand(ctx, update.Message.Text, h.presets)
	if err != nil {
		log.WithError(err).Debug("Could not parse capture command")
		h.reply(ctx, b, update, commandErrorText(err))
		return
	}

	_, _ = b.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: update.Message.Chat.ID,
		Action: models.ChatActionUploadPhoto,
	})

	res, err := h.capturer.Capture(ctx, req)
	if err != nil {
		ce := capture.AsError(err)
		log.WithError(err).Warn("Capture failed")
		h.reply(ctx, b, update, "Screenshot failed: "+ce.Message)
		return
	}

	_, err = b.SendPhoto(ctx, &tgbot.SendPhotoParams{
		ChatID: update.Message.Chat.ID,
		Photo: &models.InputFileUpload{
			Filename: "frameshot.png",
			Data:     bytes.NewReader(res.Image),
		},
		Caption: fmt.Sprintf("%s (%dx%d)", req.URL, res.Width, res.Height),
	})
	if err != nil {
		log.WithError(err).Error("Failed to send screenshot")
		return
	}
	log.Info("Screenshot sent")
}

func (h *Handler) reply(ctx context.Context, b *tgbot.Bot, update *models.Update, text string) {
	if update.Message == nil {
		return
	}
	_, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to send message")
	}
}

// parseCaptureCommand reads "<url> [WIDTHxHEIGHT | preset name]". A URL without
// a scheme gets https://, like the web client does.
func parseCaptureCommand(ctx context.Context, text string, presets PresetLookup) (capture.Request, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return capture.Request{}, errNoURL
	}

	url := fields[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	req := capture.Request{URL: url}

	rest := strings.Join(fields[1:], " ")
	if rest == "" {
		return req, nil
	}

	var w, h int
	if n, err := fmt.Sscanf(strings.ToLower(rest), "%dx%d", &w, &h); err == nil && n == 2 {
		req.Width = capture.ClampWidth(w)
		req.Height = capture.ClampHeight(h)
		return req, nil
	}

	p, err := presets.GetPreset(ctx, rest)
	if errors.Is(err, storage.ErrPresetNotFound) {
		return capture.Request{}, &unknownSizeError{size: rest}
	}
	if err != nil {
		return capture.Request{}, fmt.Errorf("failed to look up preset %q: %w", rest, err)
	}
	req.Width, req.Height = p.Width, p.Height
	return req, nil
}

// commandErrorText turns a parseCaptureCommand error into the chat reply.
func commandErrorText(err error) string {
	var unknown *unknownSizeError
	switch {
	case errors.Is(err, errNoURL):
		return "Send me a URL to capture, or use /help."
	case errors.As(err, &unknown):
		return fmt.Sprintf("Unknown size %q. Use WIDTHxHEIGHT or one of /presets.", unknown.size)
	default:
		return "Could not look up that preset, please try again later."
	}
}

func formatPresets(presets []domain.Preset) string {
	if len(presets) == 0 {
		return "No presets configured."
	}
	var sb strings.Builder
	var group domain.Category
	for _, p := range presets {
		if p.Category != group {
			group = p.Category
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s:\n", group)
		}
		fmt.Fprintf(&sb, "  %s: %dx%d\n", p.Name, p.Width, p.Height)
	}
	return sb.String()
}
