// Command boutique is an interactive terminal client for the GoingMarry API:
// browse and filter listings, build a cart, and run the checkout flow ending
// in a chat handoff.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goingmarry-api/internal/model"
	"goingmarry-api/internal/service"
	"goingmarry-api/pkg/cart"
	"goingmarry-api/pkg/client"

	"github.com/atotto/clipboard"
)

// pacingDelay is the deliberate pause before the review step appears.
const pacingDelay = 3 * time.Second

// systemClipboard adapts the atotto clipboard to the checkout's interface.
type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// shell holds the interactive session state.
type shell struct {
	api      *client.Client
	sessions *client.SessionStore
	session  *client.Session
	in       *bufio.Scanner

	items    []model.Listing
	category string
	sortMode string
	checkout *cart.Checkout
}

func main() {
	baseURL := os.Getenv("GOINGMARRY_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3001"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to locate home directory: %v", err)
	}

	sh := &shell{
		api:      client.New(baseURL),
		sessions: client.NewSessionStore(filepath.Join(home, ".goingmarry", "session.json")),
		in:       bufio.NewScanner(os.Stdin),
		sortMode: SortNewest,
		checkout: cart.New(pacingDelay),
	}

	sh.session, err = sh.sessions.Load()
	if err != nil {
		log.Printf("Warning: could not load session: %v", err)
		sh.session = &client.Session{}
	}
	if sh.session.Active() {
		sh.api.SetToken(sh.session.Token)
		fmt.Printf("Welcome back, %s (%s)\n", sh.session.Seller.Name, sh.session.Seller.BoutiqueName)
	}

	sh.refresh()
	fmt.Println("GoingMarry boutique - type 'help' for commands.")
	sh.loop()
}

// refresh reloads the catalog. A fetch failure degrades to an empty list so
// the shell stays usable offline.
func (s *shell) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	items, err := s.api.ListProducts(ctx)
	if err != nil {
		fmt.Printf("Could not load listings: %v\n", err)
		s.items = nil
		return
	}
	s.items = items
}

func (s *shell) loop() {
	for {
		fmt.Print("> ")
		if !s.in.Scan() {
			return
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			s.printHelp()
		case "browse", "ls":
			s.browse()
		case "refresh":
			s.refresh()
			s.browse()
		case "filter":
			s.filter(arg)
		case "sort":
			s.sortBy(arg)
		case "show":
			s.show(arg)
		case "add":
			s.addToCart(arg)
		case "remove":
			s.removeFromCart(arg)
		case "cart":
			s.printCart()
		case "checkout":
			s.runCheckout()
		case "login":
			s.login()
		case "register":
			s.register()
		case "logout":
			s.logout()
		case "whoami":
			s.whoami()
		case "passwd":
			s.changePassword()
		case "quit", "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for commands.")
		}
	}
}

func (s *shell) printHelp() {
	fmt.Print(`Commands:
  browse            list the catalog (current filter/sort applied)
  refresh           reload the catalog from the server
  filter <category> show one category ('filter' alone clears it)
  sort <mode>       newest | price-low | price-high
  show <n>          listing details (private notes included when shown)
  add <n>           add listing n to the cart
  remove <n>        remove cart entry n
  cart              show the cart
  checkout          start the checkout flow
  login / register / logout / whoami / passwd
  quit
`)
}

// view applies the current filter and sort to the loaded catalog.
func (s *shell) view() []model.Listing {
	return SortListings(FilterByCategory(s.items, s.category), s.sortMode)
}

func (s *shell) browse() {
	view := s.view()
	if len(view) == 0 {
		fmt.Println("No listings to show.")
		return
	}

	for i, it := range view {
		price := "SOLD"
		if !it.IsSold {
			price = "₱" + cart.FormatAmount(it.Price)
		}
		fmt.Printf("%3d. %-40s %-12s %s - %s\n", i+1, it.Name, price, it.Condition, it.Seller)
	}
	if cats := Categories(s.items); len(cats) > 0 {
		fmt.Printf("Categories: %s\n", strings.Join(cats, ", "))
	}
}

func (s *shell) filter(category string) {
	s.category = category
	s.browse()
}

func (s *shell) sortBy(mode string) {
	switch mode {
	case SortNewest, SortPriceLow, SortPriceHigh:
		s.sortMode = mode
		s.browse()
	default:
		fmt.Println("Sort modes: newest, price-low, price-high")
	}
}

// pick resolves a 1-based index in the current view.
func (s *shell) pick(arg string) (*model.Listing, bool) {
	view := s.view()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(view) {
		fmt.Println("Pick a listing number from 'browse'.")
		return nil, false
	}
	return &view[n-1], true
}

func (s *shell) show(arg string) {
	it, ok := s.pick(arg)
	if !ok {
		return
	}

	fmt.Printf("%s\n%s\n", it.Name, it.Description)
	if it.IsSold {
		fmt.Println("Status: SOLD")
	} else {
		fmt.Printf("Price: ₱%s  (quantity: %d)\n", cart.FormatAmount(it.Price), it.Quantity)
	}
	fmt.Printf("Condition: %s\nCategory: %s\nSeller: %s\n", it.Condition, it.Category, it.Seller)
	if it.Notes != "" {
		fmt.Printf("Notes: %s\n", renderBold(it.Notes))
	}
	fmt.Printf("Image: %s\n", it.ImageURL)
}

func (s *shell) addToCart(arg string) {
	it, ok := s.pick(arg)
	if !ok {
		return
	}

	switch err := s.checkout.Add(*it); err {
	case nil:
		fmt.Printf("Added %s (%d in cart).\n", it.Name, s.checkout.Count(it.ID))
	case cart.ErrItemSold:
		fmt.Println("That piece is already sold.")
	case cart.ErrQuantityCap:
		fmt.Printf("Only %d available; you already have them all.\n", it.Quantity)
	default:
		fmt.Printf("Cannot add: %v\n", err)
	}
}

func (s *shell) removeFromCart(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Println("Pick a cart entry number from 'cart'.")
		return
	}
	if err := s.checkout.RemoveAt(n - 1); err != nil {
		fmt.Printf("Cannot remove: %v\n", err)
		return
	}
	s.printCart()
}

func (s *shell) printCart() {
	entries := s.checkout.Entries()
	if len(entries) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}
	for i, e := range entries {
		fmt.Printf("%3d. %s (₱%s)\n", i+1, e.Name, cart.FormatAmount(e.Price))
	}
	fmt.Printf("Total Selection: ₱%s\n", cart.FormatAmount(s.checkout.Total()))
}

// runCheckout drives the cart -> review -> dispatch flow to completion or
// back out to the cart.
func (s *shell) runCheckout() {
	fmt.Println("Preparing your selection...")
	if err := s.checkout.BeginReview(context.Background()); err != nil {
		if err == cart.ErrEmptyCart {
			fmt.Println("Your cart is empty.")
		} else {
			fmt.Printf("Cannot check out: %v\n", err)
		}
		return
	}

	for {
		switch s.checkout.Step() {
		case cart.StepReview:
			fmt.Printf("\n--- Message to the boutique ---\n%s\n-------------------------------\n", s.checkout.Message())
			fmt.Print("(s)end, (e)dit message, (b)ack to cart: ")
			switch s.readLine() {
			case "e":
				fmt.Println("Enter the new message; finish with a single '.' line:")
				s.checkout.SetMessage(s.readMultiline())
			case "b":
				if err := s.checkout.BackToCart(); err == nil {
					return
				}
			case "s":
				copied, err := s.checkout.ProceedToDispatch(systemClipboard{})
				if err != nil {
					fmt.Printf("Cannot continue: %v\n", err)
					return
				}
				if copied {
					fmt.Println("Your message is on the clipboard.")
				} else {
					fmt.Println("Clipboard unavailable - copy the message above manually.")
				}
			}

		case cart.StepDispatch:
			chatApp, web := cart.DispatchLinks()
			fmt.Printf("Open the chat and PASTE your message:\n  %s\n  %s\n", chatApp, web)
			fmt.Print("(e)dit again, (d)one: ")
			switch s.readLine() {
			case "e":
				if err := s.checkout.EditAgain(); err != nil {
					fmt.Printf("Cannot edit: %v\n", err)
				}
			default:
				return
			}
		}
	}
}

func (s *shell) readLine() string {
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *shell) readMultiline() string {
	var lines []string
	for s.in.Scan() {
		line := s.in.Text()
		if strings.TrimSpace(line) == "." {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (s *shell) prompt(label string) string {
	fmt.Print(label)
	return s.readLine()
}

func (s *shell) login() {
	email := s.prompt("Email: ")
	password := s.prompt("Password: ")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	token, seller, err := s.api.Login(ctx, email, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}

	s.establish(token, seller)
	fmt.Printf("Logged in as %s (%s)\n", seller.Name, seller.BoutiqueName)
}

func (s *shell) register() {
	in := &service.RegisterInput{
		Name:           s.prompt("Name: "),
		Email:          s.prompt("Email: "),
		BoutiqueName:   s.prompt("Boutique name: "),
		Password:       s.prompt("Password: "),
		MembershipCode: s.prompt("Membership code: "),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	token, seller, err := s.api.Register(ctx, in)
	if err != nil {
		fmt.Printf("Registration failed: %v\n", err)
		return
	}

	s.establish(token, seller)
	fmt.Printf("Welcome, %s! Your boutique %q is live.\n", seller.Name, seller.BoutiqueName)
}

func (s *shell) establish(token string, seller *model.Seller) {
	s.api.SetToken(token)
	s.session = &client.Session{Token: token, Seller: seller}
	if err := s.sessions.Establish(token, seller); err != nil {
		fmt.Printf("Warning: could not save session: %v\n", err)
	}
}

func (s *shell) logout() {
	s.api.SetToken("")
	s.session = &client.Session{}
	if err := s.sessions.Clear(); err != nil {
		fmt.Printf("Warning: could not clear session: %v\n", err)
	}
	fmt.Println("Logged out.")
}

func (s *shell) whoami() {
	if !s.session.Active() {
		fmt.Println("Browsing as a guest.")
		return
	}
	sl := s.session.Seller
	fmt.Printf("%s <%s> - %s", sl.Name, sl.Email, sl.BoutiqueName)
	if sl.IsAdmin {
		fmt.Print(" (admin)")
	}
	fmt.Println()
}

func (s *shell) changePassword() {
	if !s.session.Active() {
		fmt.Println("Log in first.")
		return
	}

	current := s.prompt("Current password: ")
	next := s.prompt("New password: ")
	confirm := s.prompt("Confirm new password: ")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.api.ChangePassword(ctx, current, next, confirm); err != nil {
		fmt.Printf("Password change failed: %v\n", err)
		return
	}
	fmt.Println("Password updated.")
}
