package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"wellness_shop/internal/domain/user/model"
	"wellness_shop/internal/domain/user/repository"
	"wellness_shop/internal/domain/user/service"
	"wellness_shop/internal/pkg/config"
	"wellness_shop/internal/pkg/session"
	"wellness_shop/pkg/database"
)

// 创建后台账号或给已有账号授予管理员角色，-reset 时重置已有账号的密码
func main() {
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password (at least 8 characters)")
	reset := flag.Bool("reset", false, "reset the password of an existing account and revoke its sessions")
	flag.Parse()

	if *email == "" {
		log.Fatal("-email is required")
	}

	config.LoadConfig()
	db := database.InitDatabase()
	rdb := database.InitRedis()
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewUserRepository(db)
	auth := service.NewAuthService(repo, session.NewRedisStore(rdb), nil)

	if *reset {
		switch err := auth.ResetPassword(ctx, *email, *password); {
		case err == nil:
			log.Printf("Password of %s reset, all sessions revoked", *email)
		case errors.Is(err, service.ErrUserNotFound):
			log.Fatalf("no account for %s", *email)
		case errors.Is(err, service.ErrWeakPassword):
			log.Fatal("password must be at least 8 characters")
		default:
			log.Fatal(err)
		}
		return
	}

	user, err := auth.Register(ctx, *email, *password)
	switch {
	case err == nil:
		log.Printf("Created user %s", user.Email)
	case errors.Is(err, service.ErrEmailTaken):
		user, err = repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("User %s already exists, granting admin role (password unchanged, use -reset to change it)", user.Email)
	case errors.Is(err, service.ErrWeakPassword):
		log.Fatal("password must be at least 8 characters")
	default:
		log.Fatal(err)
	}

	if err := auth.AssignRole(ctx, user.ID, model.RoleAdmin); err != nil {
		log.Fatal(err)
	}
	log.Printf("User %s is now %s", user.Email, model.RoleAdmin)
}
