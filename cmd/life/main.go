package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/intrntsrfr/life"
	"github.com/intrntsrfr/life/database"
	"github.com/intrntsrfr/meido/pkg/utils"
	"go.uber.org/zap"

	_ "github.com/lib/pq"
)

type config struct {
	Token            string `json:"token"`
	Shards           int    `json:"shards"`
	ConnectionString string `json:"connection_string"`
}

func main() {
	d, err := os.ReadFile("./config.json")
	if err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var c config
	if err := json.Unmarshal(d, &c); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}

	db, err := newDatabase(&c, z)
	if err != nil {
		log.Fatalf("failed to set up database: %v", err)
	}
	defer db.Close()

	cfg := utils.NewConfig()
	cfg.Set("token", c.Token)
	cfg.Set("shards", c.Shards)

	b, err := life.NewBot(cfg, db)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := b.Run(ctx); err != nil {
		log.Fatalf("failed to run bot: %v", err)
	}

	<-ctx.Done()
}

// newDatabase connects to Postgres and applies the schema, or falls back
// to the in-memory store when no connection string is configured.
func newDatabase(c *config, z *zap.Logger) (database.DB, error) {
	if c.ConnectionString == "" {
		z.Info("no connection string configured, using in-memory store")
		return database.NewMemDatabase(), nil
	}

	psql, err := database.NewPSQLDatabase(&database.Config{
		Log:     z.Named("database"),
		ConnStr: c.ConnectionString,
	})
	if err != nil {
		return nil, err
	}

	schema, err := os.ReadFile("./schema.sql")
	if err != nil {
		return nil, err
	}
	if _, err := psql.GetConn().Exec(string(schema)); err != nil {
		return nil, err
	}

	return psql, nil
}
