// Package bot binds the dialog router to the Telegram transport: it maps
// telebot updates to dialog events and delivers the produced replies with the
// right keyboards.
package bot

import (
	"strings"
	"time"

	coreconfig "orderbot/core/config"
	tg "orderbot/core/telegram"
	"orderbot/core/telegram/callbacks"
	"orderbot/core/telegram/commands"
	"orderbot/core/telegram/middleware"
	"orderbot/order/dialog"
	"orderbot/storage"

	tele "gopkg.in/telebot.v4"
)

// Callback unique keys for the clear confirmation.
const (
	cbClearYes = "clear_yes"
	cbClearNo  = "clear_no"
)

// Options wires the bot's collaborators.
type Options struct {
	Config *coreconfig.Config
	Dialog *dialog.Router
	Audit  *storage.AuditRepo
}

// Build assembles run options: registry, routes, and the middleware chain.
func Build(opts Options) tg.RunOptions {
	h := &handlers{
		dialog: opts.Dialog,
		audit:  opts.Audit,
	}

	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{
		Handler:     h.start,
		Description: "Показать клавиатуру заказа",
	})
	reg.RegisterCommand("/log", commands.Command{
		Handler:     h.auditLog,
		Description: "Последние действия с заказом",
		AdminOnly:   true,
	})
	_ = reg.RegisterCallback(cbClearYes, h.confirmClear)
	_ = reg.RegisterCallback(cbClearNo, h.cancelClear)

	return tg.RunOptions{
		Config:      opts.Config,
		Registry:    reg,
		Middlewares: defaultMiddlewares(opts.Config),
		Routes:      routes(reg, opts.Config, h),
	}
}

func routes(reg *tg.Registry, cfg *coreconfig.Config, h *handlers) []tg.Route {
	adminOpts := middleware.AdminOptions{AdminID: cfg.Telegram.AdminID}

	rs := []tg.Route{
		{Endpoint: tele.OnText, Handler: h.onText},
		{Endpoint: tele.OnCallback, Handler: callbackDispatch(reg)},
	}
	for name, cmd := range reg.Commands() {
		handler := cmd.Handler
		if cmd.AdminOnly {
			handler = middleware.AdminOnly(adminOpts)(handler)
		}
		rs = append(rs, tg.Route{Endpoint: name, Handler: handler})
	}
	return rs
}

func callbackDispatch(reg *tg.Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		key := callbacks.Key(c)
		_ = c.Respond()

		handler, ok := reg.GetCallback(key)
		if !ok || handler == nil {
			return reg.CallbackNotFound()(c)
		}
		return handler(c)
	}
}

func defaultMiddlewares(cfg *coreconfig.Config) []tg.Middleware {
	mws := []tg.Middleware{
		{Name: "recover", Use: middleware.Recover},
	}

	interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond
	if interval > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[strings.ToLower(kind)] = struct{}{}
		}
		mws = append(mws, tg.Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimit(middleware.RateLimitOptions{
				Interval: interval,
				Exclude:  exclude,
			}),
		})
	}

	return append(mws, tg.Middleware{Name: "logger", Use: middleware.UpdateLogger})
}
