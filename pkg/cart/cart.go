// Package cart implements the client-held checkout flow: a guest collects
// listings, reviews a generated inquiry message, and hands it off to the
// boutique's chat channel. Nothing here is persisted server-side.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"goingmarry-api/internal/model"
)

// Step identifies the current checkout stage.
type Step int

const (
	StepCart Step = iota
	StepReview
	StepDispatch
)

// String returns the step name.
func (s Step) String() string {
	switch s {
	case StepCart:
		return "cart"
	case StepReview:
		return "review"
	case StepDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// Errors returned by checkout operations.
var (
	ErrEmptyCart         = errors.New("cart: cart is empty")
	ErrItemSold          = errors.New("cart: item is sold")
	ErrQuantityCap       = errors.New("cart: quantity limit reached")
	ErrIndexOutOfRange   = errors.New("cart: index out of range")
	ErrInvalidTransition = errors.New("cart: invalid transition")
)

// Contact handoff destinations. Both point at the same boutique account.
const (
	ChatAppLink     = "https://m.me/rowy.tamayo"
	WebFallbackLink = "https://www.facebook.com/messages/t/rowy.tamayo"
)

// Clipboard abstracts the system clipboard so the flow can degrade when no
// clipboard is available.
type Clipboard interface {
	WriteAll(text string) error
}

// Checkout is the cart/checkout state machine. Entries are an ordered
// sequence of listing snapshots; the same listing may appear multiple times,
// one entry per selected unit. Not safe for concurrent use.
type Checkout struct {
	step    Step
	entries []model.Listing
	message string
	pacing  time.Duration
}

// New creates a checkout in the cart step. The pacing delay is applied when
// advancing to review; it is a UX contract, not a correctness one.
func New(pacing time.Duration) *Checkout {
	return &Checkout{step: StepCart, pacing: pacing}
}

// Step returns the current stage.
func (c *Checkout) Step() Step {
	return c.step
}

// Entries returns the selected listings in insertion order.
func (c *Checkout) Entries() []model.Listing {
	return c.entries
}

// Count returns how many units of the given listing id are selected.
func (c *Checkout) Count(listingID string) int {
	n := 0
	for _, e := range c.entries {
		if e.ID == listingID {
			n++
		}
	}
	return n
}

// CanAdd reports whether another unit of the listing may be selected.
// Sold listings and listings already selected up to their quantity cannot.
func (c *Checkout) CanAdd(l model.Listing) bool {
	return !l.IsSold && c.Count(l.ID) < l.Quantity
}

// Add appends one unit of the listing to the cart.
func (c *Checkout) Add(l model.Listing) error {
	if c.step != StepCart {
		return ErrInvalidTransition
	}
	if l.IsSold {
		return ErrItemSold
	}
	if c.Count(l.ID) >= l.Quantity {
		return ErrQuantityCap
	}
	c.entries = append(c.entries, l)
	return nil
}

// RemoveAt removes the entry at the given position.
func (c *Checkout) RemoveAt(i int) error {
	if c.step != StepCart {
		return ErrInvalidTransition
	}
	if i < 0 || i >= len(c.entries) {
		return ErrIndexOutOfRange
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	return nil
}

// Total sums the prices of all non-sold entries. Sold entries contribute
// zero even if one slips in.
func (c *Checkout) Total() float64 {
	var sum float64
	for _, e := range c.entries {
		if !e.IsSold {
			sum += e.Price
		}
	}
	return sum
}

// BeginReview advances Cart -> Review after the pacing delay and derives the
// inquiry message from the current entries. Requires a non-empty cart. The
// context can cut the delay short and abort the transition.
func (c *Checkout) BeginReview(ctx context.Context) error {
	if c.step != StepCart {
		return ErrInvalidTransition
	}
	if len(c.entries) == 0 {
		return ErrEmptyCart
	}
	if err := pace(ctx, c.pacing); err != nil {
		return err
	}
	c.message = c.deriveMessage()
	c.step = StepReview
	return nil
}

// Message returns the current inquiry message text.
func (c *Checkout) Message() string {
	return c.message
}

// SetMessage replaces the inquiry message with the user's edit.
func (c *Checkout) SetMessage(text string) {
	c.message = text
}

// BackToCart returns Review -> Cart. The message is discarded; it is
// rederived on the next review.
func (c *Checkout) BackToCart() error {
	if c.step != StepReview {
		return ErrInvalidTransition
	}
	c.step = StepCart
	return nil
}

// ProceedToDispatch advances Review -> Dispatch, attempting to place the
// message on the clipboard first. A clipboard failure (or nil clipboard)
// never blocks the transition; the return value reports whether the copy
// succeeded so the caller can tell the user to copy manually.
func (c *Checkout) ProceedToDispatch(clip Clipboard) (copied bool, err error) {
	if c.step != StepReview {
		return false, ErrInvalidTransition
	}
	if clip != nil {
		copied = clip.WriteAll(c.message) == nil
	}
	c.step = StepDispatch
	return copied, nil
}

// EditAgain returns Dispatch -> Review, keeping the message as edited.
func (c *Checkout) EditAgain() error {
	if c.step != StepDispatch {
		return ErrInvalidTransition
	}
	c.step = StepReview
	return nil
}

// DispatchLinks returns the external handoff links offered in the dispatch
// step: the chat-app deep link and the web fallback.
func DispatchLinks() (chatApp, web string) {
	return ChatAppLink, WebFallbackLink
}

// deriveMessage builds the inquiry text: a greeting, one line per selected
// unit, and the running total.
func (c *Checkout) deriveMessage() string {
	lines := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		lines = append(lines, fmt.Sprintf("- %s (₱%s)", e.Name, FormatAmount(e.Price)))
	}
	return fmt.Sprintf(
		"Hi Rowie and Larry,\n\nI am interested in the following items from your boutique:\n\n%s\n\nTotal Selection: ₱%s\n\nPlease let me know if these are still available!",
		strings.Join(lines, "\n"),
		FormatAmount(c.Total()),
	)
}

// FormatAmount renders a price with thousands separators, omitting the
// fractional part when it is zero.
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}

// pace blocks for the given duration or until the context is done.
func pace(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
