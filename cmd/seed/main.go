package main

import (
	"context"
	"database/sql"
	"log"
	"math/rand"

	"github.com/spf13/pflag"
	_ "modernc.org/sqlite"

	"github.com/statkit/resample/pkg/storage"
)

func main() {
	dbPath := pflag.String("db", "resample.sqlite", "path to the sqlite database")
	points := pflag.Int("points", 100, "points in the generated normal dataset")
	seed := pflag.Int64("seed", 42, "seed for the demo data generator")
	pflag.Parse()

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := storage.EnsureMetaTables(ctx, db); err != nil {
		log.Fatalf("ensure meta tables: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))

	// Standard-normal dataset for bootstrapping the mean.
	normal := make([]float64, *points)
	for i := range normal {
		normal[i] = rng.NormFloat64()
	}
	if _, err := storage.InsertDataset(ctx, db, "normal", normal, nil); err != nil {
		log.Fatalf("insert normal dataset: %v", err)
	}
	log.Printf("Inserted dataset %q with %d points", "normal", len(normal))

	// Synthetic girth/volume pairs for bootstrapping a regression slope:
	// volume grows roughly linearly in girth with normal noise.
	girth := make([]float64, 31)
	volume := make([]float64, 31)
	for i := range girth {
		g := 8 + rng.Float64()*13
		girth[i] = g
		volume[i] = -36.9 + 5.07*g + rng.NormFloat64()*3
	}
	if _, err := storage.InsertDataset(ctx, db, "trees", girth, volume); err != nil {
		log.Fatalf("insert trees dataset: %v", err)
	}
	log.Printf("Inserted dataset %q with %d pairs", "trees", len(girth))

	log.Println("Seed done.")
}
