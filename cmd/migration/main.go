package main

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	if err := run(strings.ToLower(strings.TrimSpace(os.Args[1])), os.Args[2:]); err != nil {
		if errors.Is(err, errUnknownCommand) {
			printUsage()
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

var errUnknownCommand = errors.New("unknown command")

func run(cmd string, args []string) error {
	m, sourceURL, err := newMigrator()
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	switch cmd {
	case "up":
		if err := ignoreNoChange(m.Up()); err != nil {
			return err
		}
		log.Printf("migrations applied (source=%s)", sourceURL)
		return nil
	case "down":
		steps := 1
		if len(args) > 0 {
			steps, err = strconv.Atoi(strings.TrimSpace(args[0]))
			if err != nil {
				return fmt.Errorf("invalid down steps %q: %w", args[0], err)
			}
			if steps <= 0 {
				return fmt.Errorf("down steps must be > 0")
			}
		}
		if err := ignoreNoChange(m.Steps(-steps)); err != nil {
			return err
		}
		log.Printf("rolled back %d migration(s)", steps)
		return nil
	case "version":
		return printVersion(m)
	case "force":
		if len(args) == 0 {
			return fmt.Errorf("force requires a version argument")
		}
		version, err := strconv.Atoi(strings.TrimSpace(args[0]))
		if err != nil || version < 0 {
			return fmt.Errorf("invalid version %q", args[0])
		}
		if err := m.Force(version); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
		log.Printf("forced version to %d", version)
		return nil
	case "goto", "migrate":
		if len(args) == 0 {
			return fmt.Errorf("goto requires a target version argument")
		}
		target, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid target version %q: %w", args[0], err)
		}
		if err := ignoreNoChange(m.Migrate(uint(target))); err != nil {
			return err
		}
		log.Printf("migrated to version %d", target)
		return nil
	default:
		return errUnknownCommand
	}
}

func newMigrator() (*migrate.Migrate, string, error) {
	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		return nil, "", fmt.Errorf("DB_URL is required")
	}

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		return nil, "", fmt.Errorf("resolve migrations dir: %w", err)
	}

	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, normalizeDBURL(dbURL))
	if err != nil {
		return nil, "", fmt.Errorf("create migrator: %w", err)
	}

	return m, sourceURL, nil
}

func printVersion(m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("version: none")
		fmt.Println("dirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	fmt.Printf("version: %d\n", version)
	fmt.Printf("dirty: %t\n", dirty)
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Printf("no migration changes")
		return nil
	}
	return err
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("close migration source: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("close migration db: %v", dbErr)
	}
}

func resolveMigrationsDir() (string, error) {
	candidates := []string{
		strings.TrimSpace(os.Getenv("MIGRATIONS_DIR")),
		strings.TrimSpace(os.Getenv("MIGRATIONS_PATH")),
		"./migrations",
		"/app/migrations",
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			continue
		}
		return abs, nil
	}

	return "", fmt.Errorf("migration directory not found (checked MIGRATIONS_DIR, MIGRATIONS_PATH, ./migrations, /app/migrations)")
}

// Keeps the flag behavior aligned with the API's database connection
// without importing the whole config package into this small tool.
func normalizeDBURL(raw string) string {
	if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT") {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func envBool(key string) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "usage: %s <up|down|version|force|goto> [args]\n", filepath.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "examples:")
	fmt.Fprintf(os.Stderr, "  %s up\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s down 1\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s version\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s force 20250801000001\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(os.Stderr, "  %s goto 20250801000001\n", filepath.Base(os.Args[0]))
}
