/*
This project is the automatic timetable backend for the OpenSourceDUTH team. It builds weekly class timetables from teacher availability with the help of a generative model.
Timetable API Copyright (C) 2025 OpenSourceDUTH
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"TimetableAPI/internal/auth"
	"TimetableAPI/internal/common"
	"TimetableAPI/internal/databases"
	"TimetableAPI/internal/env"
	"TimetableAPI/internal/logger"
	"TimetableAPI/internal/timetable"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	mode := env.GetEnv(env.EnvAppMode, "development")
	logg, err := logger.New(mode)
	if err != nil {
		log.Fatal(err)
	}
	defer logg.Sync()

	if mode == "production" || mode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Timetable database
	timetableDB, err := databases.OpenAndMigrate(ctx, env.GetEnv(env.EnvTimetableDBPath, "./internal/databases/timetable.db"), databases.Timetable)
	if err != nil {
		logg.Fatal("timetable database unavailable", "error", err)
	}
	defer timetableDB.Close()

	// Generative backend; a missing key stops startup here
	generator, err := timetable.NewGeminiClient(ctx, env.GetEnv(env.EnvGeminiAPIKey, ""), env.GetEnv(env.EnvGeminiModel, timetable.DefaultModel))
	if err != nil {
		logg.Fatal("generative backend unavailable", "error", err)
	}
	logg.Info("Gemini client initialized", "model", generator.Model())

	// Initialize timetable components
	repo := timetable.NewRepository(timetableDB)
	service := timetable.NewService(timetable.NewPromptBuilder(timetable.DefaultRules()), generator, repo, logg)
	handler := timetable.NewHandler(service, logg)

	g, gctx := errgroup.WithContext(ctx)

	// Optional token guard
	var authMiddleware *auth.Middleware
	if env.GetBool(env.EnvAuthRequired, false) {
		authDB, err := databases.OpenAndMigrate(ctx, env.GetEnv(env.EnvAuthDBPath, "./internal/databases/auth.db"), databases.Auth)
		if err != nil {
			logg.Fatal("auth database unavailable", "error", err)
		}
		defer authDB.Close()

		authRepo := auth.NewRepository(authDB)
		usageTracker := auth.NewUsageTracker(authRepo, logg)
		authMiddleware = auth.NewMiddleware(
			auth.NewTokenStore(authRepo),
			usageTracker,
			env.GetInt(env.EnvDefaultRPM, 10),
			logg,
		)

		// Start usage tracker background goroutines
		g.Go(func() error { return usageTracker.Run(gctx) })
		logg.Info("API token authentication enabled")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		common.RequestID(),
		common.RequestLogger(logg),
		common.CORS(env.GetList(env.EnvCORSOrigin, []string{"http://localhost:3000"})),
	)

	api := router.Group("/api")
	common.RegisterRoutes(router, api)
	timetable.RegisterRoutes(api, handler, authMiddleware)

	srv := &http.Server{
		Addr:              ":" + env.GetEnv(env.EnvPort, "4000"),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logg.Info("Backend server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown handling
	g.Go(func() error {
		<-gctx.Done()
		logg.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), env.GetDuration(env.EnvShutdownTimeout, 10*time.Second))
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logg.Error("server stopped with error", "error", err)
	}
}
