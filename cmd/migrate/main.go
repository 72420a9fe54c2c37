// migrate aplica las migraciones SQL del directorio dado, en orden
// lexicográfico. Convención: NNNN_nombre_up.sql / NNNN_nombre_down.sql.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/launchbase/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "configs/config.yaml", "Path al config YAML")
		dir        = flag.String("dir", "migrations/postgres", "Directorio de migraciones (*_up.sql / *_down.sql)")
		dsnFlag    = flag.String("dsn", "", "DSN explícito (pisa config/env)")
	)
	flag.Parse()

	action := "up"
	steps := 0
	args := flag.Args()
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}

	_ = godotenv.Load()

	dsn := *dsnFlag
	if dsn == "" {
		if v := os.Getenv("STORAGE_DSN"); v != "" {
			dsn = v
		} else if cfg, err := config.Load(*configPath); err == nil {
			dsn = cfg.Storage.DSN
		}
	}
	if dsn == "" {
		log.Fatal("no DSN: usar --dsn, STORAGE_DSN o config.yaml")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	switch action {
	case "up":
		if err := run(ctx, pool, *dir, "_up.sql", steps, false); err != nil {
			log.Fatal(err)
		}
	case "down":
		if err := run(ctx, pool, *dir, "_down.sql", steps, true); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("acción desconocida %q. Usar: up | down [steps]", action)
	}
}

// run lista, ordena y ejecuta las migraciones del sufijo dado.
// reverse=true corre de la más nueva a la más vieja (down).
func run(ctx context.Context, pool *pgxpool.Pool, dir, suffix string, steps int, reverse bool) error {
	files, err := listSQL(dir, suffix)
	if err != nil {
		return fmt.Errorf("list %s: %w", suffix, err)
	}
	if len(files) == 0 {
		log.Printf("sin migraciones *%s, nada que hacer", suffix)
		return nil
	}
	sort.Strings(files)
	if reverse {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}

	log.Printf("aplicando %d migración(es)...", len(files))
	for _, f := range files {
		start := time.Now()
		b, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if _, err := pool.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec %s: %w", f, err)
		}
		log.Printf("OK %s (%s)", filepath.Base(f), time.Since(start).Truncate(time.Millisecond))
	}
	return nil
}

func listSQL(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
