// Maintenance commands that operate directly on the database. Used for
// bootstrapping the first admin account and recovering locked-out users.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/stopmotionlab/blog-be/config"
	"github.com/stopmotionlab/blog-be/db"
	"github.com/stopmotionlab/blog-be/db/mysql"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()
	database, err := mysql.GetDatabase(cfg.DSN())
	if err != nil {
		log.Fatal("Received err when attempting to connect to DB", err)
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.RunMigrations(ctx); err != nil {
		log.Fatal("an error occurred while running migrations", err)
	}

	switch os.Args[1] {
	case "create-admin":
		err = createAdmin(ctx, database, os.Args[2:])
	case "reset-password":
		err = resetPassword(ctx, database, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin <create-admin|reset-password> [flags]")
}

// createAdmin promotes an existing account to admin, or creates a new
// admin account when no account with the email exists.
func createAdmin(ctx context.Context, database db.Database, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)
	email := fs.String("email", "", "email of the admin account")
	password := fs.String("password", "", "password for a newly created account")
	username := fs.String("username", "", "username for a newly created account")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	user, err := database.GetUserByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if user != nil {
		if user.IsAdmin {
			fmt.Printf("%v is already an admin\n", user.Username)
			return nil
		}
		if err := database.SetAdmin(ctx, user.Id, true); err != nil {
			return err
		}
		fmt.Printf("%v is now an admin\n", user.Username)
		return nil
	}

	if *password == "" {
		return fmt.Errorf("-password is required when creating a new account")
	}
	name := *username
	if name == "" {
		name = strings.SplitN(*email, "@", 2)[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	userId, err := database.CreateUser(ctx, &db.CreateUser{
		Username:     name,
		Email:        *email,
		PasswordHash: string(hash),
		DisplayName:  name,
		IsAdmin:      true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created admin %v (id %v)\n", name, userId)
	return nil
}

func resetPassword(ctx context.Context, database db.Database, args []string) error {
	fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
	email := fs.String("email", "", "email of the account")
	password := fs.String("password", "", "new password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("-email and -password are required")
	}

	user, err := database.GetUserByEmail(ctx, *email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no account with email %v", *email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := database.SetPassword(ctx, user.Id, string(hash)); err != nil {
		return err
	}
	fmt.Printf("password updated for %v\n", user.Username)
	return nil
}
