package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todo-planner/internal/bot"
	"todo-planner/internal/config"
	"todo-planner/internal/logger"
	"todo-planner/internal/model"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
)

const reportTimeout = 2 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Init(logger.Config(cfg.Log)); err != nil {
		log.Fatalf("logger: %v", err)
	}

	db, err := repository.NewDB(cfg.Bot.DatabaseURL, &model.ChatSession{})
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	api, err := bot.Connect(cfg.Bot.TelegramToken)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	telegramBot := bot.New(api, repository.NewChatRepository(db), service.NewReminderService(), bot.Options{
		APIURL:    cfg.Bot.APIURL,
		WeekStart: cfg.Bot.WeekStart,
		Location:  time.Local,
	})

	scheduler := service.NewSchedulerService(time.Local, reportTimeout)
	report := func(jobCtx context.Context) error {
		if err := telegramBot.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}
	if cfg.Bot.ReportTime != "" {
		_, err = scheduler.ScheduleDaily("daily_report", cfg.Bot.ReportTime, report)
	} else {
		_, err = scheduler.ScheduleInterval("daily_report", cfg.Bot.ReportInterval, report)
	}
	if err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Printf("[info] todo bot started, api %s", cfg.Bot.APIURL)
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("[info] shutdown complete")
}
