// Package session signs an account into the browser before the workflow starts.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/invite-agent/internal/browser"
	"github.com/jonathan/invite-agent/internal/logging"
)

const (
	// DefaultLoginURL is the sign-in page.
	DefaultLoginURL = "https://www.linkedin.com/login"
	// DefaultVerificationTimeout leaves time to complete a one-time-passcode challenge.
	DefaultVerificationTimeout = 2 * time.Minute
)

// Credentials identify the account to sign in.
type Credentials struct {
	Username string
	Password string
}

// Options tunes Login.
type Options struct {
	LoginURL            string
	Wait                browser.WaitOptions
	VerificationTimeout time.Duration
	Logger              *slog.Logger
}

// Form locators.
var (
	UsernameField = browser.Locator{Name: "username", Query: "#username"}
	PasswordField = browser.Locator{Name: "password", Query: "#password"}
	SignInButton  = browser.Locator{Name: "sign_in", Query: `button[aria-label="Sign in"]`}
	SignedIn      = browser.Locator{Name: "signed_in", Query: "#global-nav"}
)

// Error represents a failed sign-in
type Error struct {
	Step  string
	Cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("login failed at %s: %v", e.Step, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Login fills the sign-in form and waits for the signed-in navigation bar.
func Login(ctx context.Context, page browser.Page, creds Credentials, opts Options) error {
	logger := logging.OrDiscard(opts.Logger).With("account", creds.Username)
	if opts.LoginURL == "" {
		opts.LoginURL = DefaultLoginURL
	}
	if opts.VerificationTimeout <= 0 {
		opts.VerificationTimeout = DefaultVerificationTimeout
	}

	if creds.Username == "" || creds.Password == "" {
		return &Error{Step: "credentials", Cause: fmt.Errorf("username and password are required")}
	}

	logger.Info("logging in")
	if err := page.Navigate(ctx, opts.LoginURL); err != nil {
		return &Error{Step: "navigate", Cause: err}
	}

	if err := fill(ctx, page, UsernameField, creds.Username, opts.Wait); err != nil {
		return err
	}
	if err := fill(ctx, page, PasswordField, creds.Password, opts.Wait); err != nil {
		return err
	}

	button, err := browser.WaitVisible(ctx, page, SignInButton, opts.Wait)
	if err != nil {
		return &Error{Step: SignInButton.Name, Cause: err}
	}
	if err := button.Activate(ctx); err != nil {
		return &Error{Step: SignInButton.Name, Cause: err}
	}

	logger.Info("waiting for sign-in to complete", "timeout", opts.VerificationTimeout)
	verify := browser.WaitOptions{Timeout: opts.VerificationTimeout, Interval: opts.Wait.Interval}
	if _, err := browser.WaitVisible(ctx, page, SignedIn, verify); err != nil {
		return &Error{Step: "verification", Cause: err}
	}

	logger.Info("login successful")
	return nil
}

func fill(ctx context.Context, page browser.Page, loc browser.Locator, value string, wait browser.WaitOptions) error {
	field, err := browser.WaitVisible(ctx, page, loc, wait)
	if err != nil {
		return &Error{Step: loc.Name, Cause: err}
	}
	if err := field.TypeText(ctx, value); err != nil {
		return &Error{Step: loc.Name, Cause: err}
	}
	return nil
}
