package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"geogrid.app/internal/game/session"
	"geogrid.app/internal/grid"
	"geogrid.app/internal/persistence/journal"
	"geogrid.app/internal/persistence/save"
	"geogrid.app/internal/persistence/savedb"
	"geogrid.app/internal/protocol"
	"geogrid.app/internal/transport/ws"
	"geogrid.app/internal/tuning"
	"geogrid.app/internal/worldgen"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <data>/tuning.yaml)")
		slot       = flag.String("slot", "main", "save slot name")
		backend    = flag.String("backend", "file", "save backend: file | sqlite")
		seed       = flag.Int64("seed", 1337, "world seed for the default hash (fixed per device for save compatibility)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*dataDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	store, err := openSaveStore(*backend, *dataDir)
	if err != nil {
		logger.Fatalf("open save store: %v", err)
	}
	defer store.Close()

	sess := session.New(session.Config{
		Mapper:         grid.Mapper{CellSize: tune.CellSizeDeg},
		Generator:      worldgen.New(worldgen.SeededHash(*seed)),
		InteractRadius: tune.InteractRadius,
		ViewMargin:     tune.ViewMargin,
		VictoryTarget:  tune.VictoryTarget,
		EvictOffscreen: tune.OverrideRetention == tuning.RetentionEvictOffscreen,
		Spawn:          grid.Point{Lat: tune.SpawnLat, Lng: tune.SpawnLng},
		Logger:         logger,
	})

	// Restore is best-effort: any malformed record means a fresh start,
	// never a fault surfaced to the player.
	if payload, err := store.Load(*slot); err == nil {
		if rec, err := save.Decode(payload); err != nil {
			logger.Printf("discarding corrupt save: %v", err)
		} else if err := sess.Restore(rec); err != nil {
			logger.Printf("discarding unusable save: %v", err)
		} else {
			logger.Printf("restored save slot %q (%d modified cells)", *slot, len(rec.ModifiedCells))
		}
	} else if !errors.Is(err, save.ErrNoSave) {
		logger.Printf("load save: %v (starting fresh)", err)
	}

	saver := save.NewWriter(store, *slot, time.Duration(tune.SaveDebounceMs)*time.Millisecond, logger)
	jw := journal.NewWriter(filepath.Join(*dataDir, "journal"), "events")
	defer jw.Close()

	loop := session.NewLoop(session.LoopConfig{
		Session: sess,
		WorldParams: protocol.WorldParams{
			CellSizeDeg:    tune.CellSizeDeg,
			InteractRadius: tune.InteractRadius,
			ViewMargin:     tune.ViewMargin,
			VictoryTarget:  tune.VictoryTarget,
			Seed:           *seed,
			Spawn:          protocol.LatLng{Lat: tune.SpawnLat, Lng: tune.SpawnLng},
		},
		Journal: jw,
		Saver:   saver,
		Logger:  logger,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", ws.NewServer(loop, logger).Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	httpSrv := &http.Server{Addr: *addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("listening on %s", *addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Loop exit flushes the debounced save.
		if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server: %v", err)
	}
	logger.Printf("bye")
}

func openSaveStore(backend, dataDir string) (save.Store, error) {
	switch backend {
	case "sqlite":
		return savedb.Open(filepath.Join(dataDir, "saves.db"))
	default:
		return save.NewFileStore(filepath.Join(dataDir, "saves"))
	}
}
