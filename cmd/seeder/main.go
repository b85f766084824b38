package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotelops/internal/adapters/observability"
	redisad "hotelops/internal/adapters/redis"
	"hotelops/internal/app"
	"hotelops/internal/domain"
	"hotelops/internal/shared"
	mysqlrepo "hotelops/internal/storage/mysql"
)

type seedRoom struct {
	RoomNumber string  `json:"room_number"`
	RoomType   string  `json:"room_type"`
	Rate       float64 `json:"rate"`
	Status     string  `json:"status"`
}

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("file", cfg.SeedFile).
		Int("workers", cfg.SeedWorkers).
		Msg("seeder starting")

	raw, err := os.ReadFile(cfg.SeedFile)
	if err != nil {
		log.Fatal().Err(err).Msg("read seed file failed")
	}
	var rooms []seedRoom
	if err := json.Unmarshal(raw, &rooms); err != nil {
		log.Fatal().Err(err).Msg("parse seed file failed")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	svc := app.NewRoomService(repo, cache)
	admin := domain.Identity{Username: "seeder", Role: domain.RoleAdmin}

	sem := semaphore.NewWeighted(int64(cfg.SeedWorkers))
	var wg sync.WaitGroup

	for _, r := range rooms {
		r := r

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(in seedRoom) {
			defer wg.Done()
			defer sem.Release(int64(1))

			room := domain.Room{
				Number: in.RoomNumber,
				Type:   in.RoomType,
				Rate:   in.Rate,
				Status: domain.RoomStatus(in.Status),
			}
			if _, err := svc.CreateRoom(ctx, room, admin); err != nil {
				if domain.IsKind(err, domain.KindConflict) {
					log.Info().Str("room", in.RoomNumber).Msg("room exists, skipped")
					return
				}
				log.Warn().Str("room", in.RoomNumber).Err(err).Msg("seed failed")
				return
			}
			log.Info().Str("room", in.RoomNumber).Msg("seed ok")
		}(r)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
