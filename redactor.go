package main

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/sqldb"
	"golang.org/x/crypto/ssh/terminal"
)

var (
	redactorUsername  string
	redactorFirstName string
	redactorLastName  string
	redactorYears     int
)

var redactorCmd = &cobra.Command{
	Use:   "redactor",
	Short: "Manage redactors",
}

var redactorAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a redactor, the password is read from the terminal",
	Args:  cobra.NoArgs,
	RunE:  runRedactorAdd,
}

var redactorPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Set the password of a redactor",
	Args:  cobra.NoArgs,
	RunE:  runRedactorPasswd,
}

func init() {
	redactorAddCmd.Flags().StringVar(&redactorUsername, "username", "", "username of the new redactor")
	redactorAddCmd.Flags().StringVar(&redactorFirstName, "first-name", "", "first name")
	redactorAddCmd.Flags().StringVar(&redactorLastName, "last-name", "", "last name")
	redactorAddCmd.Flags().IntVar(&redactorYears, "years", 0, "years of experience")
	_ = redactorAddCmd.MarkFlagRequired("username")

	redactorPasswdCmd.Flags().StringVar(&redactorUsername, "username", "", "username of the redactor")
	_ = redactorPasswdCmd.MarkFlagRequired("username")

	redactorCmd.AddCommand(redactorAddCmd, redactorPasswdCmd)
	rootCmd.AddCommand(redactorCmd)
}

func runRedactorAdd(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sqlDB, _, err := openDB(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var db = newCoreDB(sqlDB)

	password, err := readPassword(redactorUsername)
	if err != nil {
		return err
	}

	// same validation as the web form
	var form = &core.RedactorCreateForm{}
	errs, err := form.Bind(url.Values{
		"username":            {redactorUsername},
		"first_name":          {redactorFirstName},
		"last_name":           {redactorLastName},
		"years_of_experience": {strconv.Itoa(redactorYears)},
		"password1":           {password},
		"password2":           {password},
	}, db)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return errs
	}

	var r = form.Redactor()
	if err := db.CreateRedactor(r, form.Password()); err != nil {
		return fmt.Errorf("creating redactor %s: %w", r.Username, err)
	}

	fmt.Printf("created redactor %s with id %d\n", r.Username, r.ID)
	return nil
}

func runRedactorPasswd(cmd *cobra.Command, args []string) error {

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	sqlDB, _, err := openDB(cfg.DB)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	var redactorDB = sqldb.NewRedactorDB(sqlDB)

	r, err := redactorDB.GetRedactorByUsername(redactorUsername)
	if err != nil {
		return fmt.Errorf("getting redactor %s: %w", redactorUsername, err)
	}

	password, err := readPassword(r.Username)
	if err != nil {
		return err
	}

	if errs := core.ValidatePassword(r.Username, password); !errs.Empty() {
		return errs
	}

	return redactorDB.SetPassword(r.ID, password)
}

// readPassword reads the password twice from the terminal.
func readPassword(username string) (string, error) {

	var fd = int(os.Stdin.Fd())

	fmt.Printf("password for redactor %s: ", username)
	pass1, err := terminal.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Printf("repeat password: ")
	pass2, err := terminal.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if !bytes.Equal(pass1, pass2) {
		return "", errors.New("passwords don't match")
	}

	return string(pass1), nil
}
