// Command useradd seeds an account into the user store the auth service
// authenticates against.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aussiebroadwan/sessionauth/internal/auth/app"
	"github.com/aussiebroadwan/sessionauth/internal/auth/service"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store"
	"github.com/aussiebroadwan/sessionauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessionauth/pkg/cryptox"
	"github.com/aussiebroadwan/sessionauth/pkg/slogx"
)

func main() {
	if err := app.LoadDotEnv(".env"); err != nil {
		log.Fatalf("failed to load environment: %v", err)
	}
	cfg := app.LoadConfig()

	var in service.NewUser
	reset := flag.Bool("reset", false, "replace the password of an existing account instead of creating one")
	flag.StringVar(&in.Email, "email", "", "account email, used as the login identifier (required)")
	flag.StringVar(&in.Name, "name", "", "display name")
	flag.IntVar(&in.Age, "age", 0, "age")
	flag.StringVar(&in.Password, "password", os.Getenv("USERADD_PASSWORD"), "password; generated and printed when empty")
	flag.StringVar(&cfg.DatabaseFile, "db", cfg.DatabaseFile, "sqlite database file")
	flag.StringVar(&cfg.PepperFile, "pepper", cfg.PepperFile, "pepper file shared with the auth service")
	flag.Parse()

	logger := slogx.New(slogx.Config{
		Service: "useradd",
		Version: app.BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  "text",
		Output:  os.Stderr,
	})

	ctx := slogx.WithContext(context.Background(), logger)
	if err := run(ctx, cfg, in, *reset); err != nil {
		logger.Error("useradd failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, in service.NewUser, reset bool) error {
	if in.Email == "" {
		return errors.New("-email is required")
	}

	generated := in.Password == ""
	if generated {
		pw, err := cryptox.GeneratePassword()
		if err != nil {
			return err
		}
		in.Password = pw
	}

	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return err
	}

	db, err := sqlite.NewStore(app.DSN(cfg.DatabaseFile))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ApplyMigrations(); err != nil {
		return err
	}

	users := &service.UserService{Store: db, Hasher: cryptox.NewPasswordHasher(pepper)}
	logger := slogx.FromContext(ctx)

	empty, err := users.Empty(ctx)
	if err != nil {
		return err
	}
	if empty && reset {
		logger.Warn("no accounts exist yet; nothing to reset", "db", cfg.DatabaseFile)
	} else if empty {
		logger.Info("seeding the first account", "db", cfg.DatabaseFile)
	}

	if reset {
		if err := users.SetPassword(ctx, in.Email, in.Password); err != nil {
			return fmt.Errorf("reset password for %s: %w", in.Email, err)
		}
		logger.Info("password replaced", "email", in.Email)
	} else {
		user, err := users.CreateUser(ctx, in)
		if errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("%s already exists; use -reset to change its password", in.Email)
		}
		if err != nil {
			return err
		}
		logger.Info("user created", "id", user.ID, "email", user.Email)
	}

	if generated {
		// Printed once on stdout so it can be piped; never logged.
		fmt.Println(in.Password)
	}
	return nil
}
