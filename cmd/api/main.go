package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/putrawijaya/trackdev_be/internal/app"
	"github.com/putrawijaya/trackdev_be/internal/config"
	"github.com/putrawijaya/trackdev_be/internal/db"
	"github.com/putrawijaya/trackdev_be/internal/models"
	"github.com/putrawijaya/trackdev_be/internal/realtime"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(&models.User{}, &models.Project{}); err != nil {
		log.Fatal(err)
	}

	hub := realtime.NewHub()
	go hub.Run()

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	bus := realtime.NewEventBus(hub, rdb)
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal("redis configured but unreachable: ", err)
		}
		go bus.RunSubscriber(context.Background())
	}

	a := app.New(cfg, gdb, hub, bus)
	log.Fatal(a.Listen(":" + cfg.AppPort))
}
