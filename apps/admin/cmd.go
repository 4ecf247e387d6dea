package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/elimu/api"
	"github.com/trezcool/elimu/api/auth"
	"github.com/trezcool/elimu/api/categories"
	"github.com/trezcool/elimu/api/courses"
	"github.com/trezcool/elimu/api/users"
	"github.com/trezcool/elimu/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	client     *api.Client
	gate       *session.Gate
	validate   *validator.Validate
	translator ut.Translator
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                 - authenticate; the password is prompted next")
	fmt.Println("  logout                             - end the session and drop all cached data")
	fmt.Println("  whoami                             - show the current session")
	fmt.Println("  courses                            - list the course catalog")
	fmt.Println("  categories                         - list course categories")
	fmt.Println("  addcategory -name NAME             - create a category (admin)")
	fmt.Println("  delcategory -id ID                 - delete a category (admin)")
	fmt.Println("  users                              - list all users (admin)")
	fmt.Println("  blockuser -id ID                   - block a user (admin)")
	fmt.Println("  unblockuser -id ID                 - unblock a user (admin)")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "login":
		loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
		email := loginCmd.String("email", "", "The account's email. The password will be prompted next.")
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		return cli.login(ctx, *email, string(pwd))

	case "logout":
		return cli.gate.Logout(ctx)

	case "whoami":
		return cli.whoami(ctx)

	case "courses":
		return cli.listCourses(ctx)

	case "categories":
		return cli.listCategories(ctx)

	case "addcategory":
		addCmd := flag.NewFlagSet("addcategory", flag.ExitOnError)
		name := addCmd.String("name", "", "The new category's name.")
		if err := addCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *name == "" {
			addCmd.Usage()
			return errHelp
		}
		return cli.addCategory(ctx, *name)

	case "delcategory":
		delCmd := flag.NewFlagSet("delcategory", flag.ExitOnError)
		id := delCmd.String("id", "", "The category's id.")
		if err := delCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			delCmd.Usage()
			return errHelp
		}
		return cli.deleteCategory(ctx, *id)

	case "users":
		return cli.listUsers(ctx)

	case "blockuser", "unblockuser":
		blockCmd := flag.NewFlagSet(args[1], flag.ExitOnError)
		id := blockCmd.String("id", "", "The user's id.")
		if err := blockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			blockCmd.Usage()
			return errHelp
		}
		return cli.setUserBlocked(ctx, *id, args[1] == "blockuser")

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, email, pwd string) error {
	in := auth.LoginInput{Email: email, Password: pwd}
	if err := in.Validate(cli.validate, cli.translator); err != nil {
		return err
	}
	resp, err := cli.gate.Login(ctx, in)
	if err != nil {
		if errors.Is(err, session.ErrAccountBlocked) {
			fmt.Println("This account has been blocked; contact support to appeal.")
		}
		return err
	}
	fmt.Println(resp.Message)
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	sess, err := cli.gate.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.Role())
	return nil
}

func (cli *commandLine) listCourses(ctx context.Context) error {
	var list []courses.Course
	if err := cli.client.Fetch(ctx, courses.All, nil, &list); err != nil {
		return err
	}
	for _, c := range list {
		fmt.Printf("%s\t%s\t%s\t$%.2f\n", c.ID, c.Title, c.Level, c.DiscountedPrice())
	}
	return nil
}

func (cli *commandLine) listCategories(ctx context.Context) error {
	var list []categories.Category
	if err := cli.client.Fetch(ctx, categories.List, nil, &list); err != nil {
		return err
	}
	for _, cat := range list {
		fmt.Printf("%s\t%s\t%s\n", cat.ID, cat.Name, cat.Slug)
	}
	return nil
}

func (cli *commandLine) addCategory(ctx context.Context, name string) error {
	if _, err := cli.gate.RequireRole(ctx, users.RoleAdmin); err != nil {
		return err
	}
	in := categories.NewCategory{Name: name}
	if err := in.Validate(cli.validate, cli.translator); err != nil {
		return err
	}
	var cat categories.Category
	if _, err := cli.client.Mutate(ctx, categories.Add, in, &cat); err != nil {
		return err
	}
	fmt.Printf("created %s (%s)\n", cat.Name, cat.Slug)
	return nil
}

func (cli *commandLine) deleteCategory(ctx context.Context, id string) error {
	if _, err := cli.gate.RequireRole(ctx, users.RoleAdmin); err != nil {
		return err
	}
	if _, err := cli.client.Mutate(ctx, categories.Delete, id, nil); err != nil {
		return err
	}
	fmt.Println("category deleted")
	return nil
}

func (cli *commandLine) listUsers(ctx context.Context) error {
	if _, err := cli.gate.RequireRole(ctx, users.RoleAdmin); err != nil {
		return err
	}
	var list []users.User
	if err := cli.client.Fetch(ctx, users.All, nil, &list); err != nil {
		return err
	}
	for _, usr := range list {
		status := "active"
		if usr.IsBlocked {
			status = "blocked"
		}
		fmt.Printf("%s\t%s\t%s\t%s\t%s\n", usr.ID, usr.Name, usr.Email, usr.Role, status)
	}
	return nil
}

func (cli *commandLine) setUserBlocked(ctx context.Context, id string, blocked bool) error {
	if _, err := cli.gate.RequireRole(ctx, users.RoleAdmin); err != nil {
		return err
	}
	mutation := users.Unblock
	if blocked {
		mutation = users.Block
	}
	var usr users.User
	if _, err := cli.client.Mutate(ctx, mutation, id, &usr); err != nil {
		return err
	}
	fmt.Printf("%s: blocked=%t\n", usr.Email, usr.IsBlocked)
	return nil
}
