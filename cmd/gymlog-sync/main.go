package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/meltforce/gymlog/internal/models"
	"github.com/meltforce/gymlog/internal/syncqueue"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "GymLog server URL (e.g. https://gymlog.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("GYMLOG_API_KEY"), "API key for the sync endpoint (defaults to $GYMLOG_API_KEY)")
	batchSize := flag.Int("batch-size", 100, "sets per sync request")
	queueOnly := flag.Bool("queue-only", false, "queue the set locally without contacting the server")

	exerciseID := flag.Int64("exercise", 0, "exercise ID to log a set for")
	weight := flag.Float64("weight", 0, "weight in kg")
	reps := flag.Int("reps", 0, "repetitions")
	distance := flag.Float64("distance", 0, "distance in metres")
	timeS := flag.Int("time", 0, "duration in seconds")
	difficult := flag.Bool("difficult", false, "mark the set as difficult")

	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("gymlog-sync", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" && !*queueOnly {
		fmt.Fprintf(os.Stderr, "Usage: gymlog-sync -server <URL> -api-key <KEY> [-exercise N -weight X -reps N] [-queue-only]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	// Open queue database
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Error("failed to get home directory", "error", err)
		os.Exit(1)
	}
	queue, err := syncqueue.Open(filepath.Join(homeDir, ".gymlog-sync"))
	if err != nil {
		log.Error("failed to open queue database", "error", err)
		os.Exit(1)
	}
	defer queue.Close()

	// Queue a new set if one was given on the command line
	if *exerciseID != 0 {
		in := models.SetInput{ExerciseID: *exerciseID, Difficult: *difficult}
		if *weight != 0 {
			in.Weight = weight
		}
		if *reps != 0 {
			in.Repetitions = reps
		}
		if *distance != 0 {
			in.Distance = distance
		}
		if *timeS != 0 {
			in.TimeS = timeS
		}

		token, err := queue.Enqueue(in)
		if err != nil {
			log.Error("failed to queue set", "error", err)
			os.Exit(1)
		}
		log.Info("set queued", "exercise", *exerciseID, "token", token)
	}

	if *queueOnly {
		n, _ := queue.Len()
		log.Info("queue-only: exiting", "pending", n)
		return
	}

	// Drain the queue
	client := syncqueue.NewClient(*serverURL, *apiKey)
	inserted, err := client.Sync(queue, *batchSize)
	if err != nil {
		log.Error("sync failed", "error", err, "inserted", inserted)
		os.Exit(1)
	}

	remaining, _ := queue.Len()
	log.Info("sync complete", "inserted", inserted, "pending", remaining)
}
