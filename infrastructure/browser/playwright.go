package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"web_locator/domain/entities"
	"web_locator/domain/interfaces"
	"web_locator/infrastructure/config"
)

// PlaywrightBrowser is the primary query backend: it owns one browser, one
// context, and one page, and translates every LocatorSpec kind into a
// playwright locator. Browser state is persisted across runs the same way
// sessions survive restarts of the surrounding tooling.
type PlaywrightBrowser struct {
	pw          *playwright.Playwright
	browser     playwright.Browser
	context     playwright.BrowserContext
	page        playwright.Page
	storagePath string
	log         logrus.FieldLogger
}

// NewPlaywrightBrowser - launches a chromium instance configured from cfg.
func NewPlaywrightBrowser(cfg config.Config, log logrus.FieldLogger) (*PlaywrightBrowser, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOptions := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}

	if cfg.StorageState != "" {
		if data, err := os.ReadFile(cfg.StorageState); err == nil {
			var storageState playwright.StorageState
			if err := json.Unmarshal(data, &storageState); err == nil {
				contextOptions.StorageState = storageState.ToOptionalStorageState()
			}
		}
	}

	browserContext, err := browser.NewContext(contextOptions)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := browserContext.NewPage()
	if err != nil {
		browserContext.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &PlaywrightBrowser{
		pw:          pw,
		browser:     browser,
		context:     browserContext,
		page:        page,
		storagePath: cfg.StorageState,
		log:         log,
	}, nil
}

// Navigate - navigates to the specified URL and waits for network idle.
func (b *PlaywrightBrowser) Navigate(ctx context.Context, url string) error {
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(30000),
	})
	return err
}

// SaveState - persists browser storage state for the next run.
func (b *PlaywrightBrowser) SaveState() error {
	if b.context == nil || b.storagePath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(b.storagePath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	if _, err := b.context.StorageState(b.storagePath); err != nil {
		if strings.Contains(err.Error(), "closed") {
			return nil
		}
		return fmt.Errorf("failed to save browser state: %w", err)
	}
	return nil
}

// Close - saves state and shuts everything down.
func (b *PlaywrightBrowser) Close() error {
	if err := b.SaveState(); err != nil {
		b.log.Warnf("could not save browser state: %v", err)
	}
	if b.context != nil {
		b.context.Close()
		b.context = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil && !strings.Contains(err.Error(), "closed") {
			return fmt.Errorf("failed to close browser: %w", err)
		}
		b.browser = nil
	}
	return nil
}

// root returns the page-level scope all top-level queries run under.
func (b *PlaywrightBrowser) root() playwright.Locator {
	return b.page.Locator("html")
}

// specLocator translates a LocatorSpec into a playwright locator scoped to
// the given element.
func (b *PlaywrightBrowser) specLocator(scope playwright.Locator, spec entities.LocatorSpec) (playwright.Locator, error) {
	switch spec.Kind {
	case entities.KindCSS:
		return scope.Locator(spec.Selector), nil
	case entities.KindXPath:
		expr := spec.Selector
		if !strings.HasPrefix(expr, "xpath=") {
			expr = "xpath=" + expr
		}
		return scope.Locator(expr), nil
	case entities.KindText:
		return scope.GetByText(spec.Value, playwright.LocatorGetByTextOptions{
			Exact: playwright.Bool(spec.Exact),
		}), nil
	case entities.KindRole:
		return scope.GetByRole(playwright.AriaRole(spec.Role), b.roleOptions(spec)), nil
	case entities.KindLabel:
		return scope.GetByLabel(spec.Value), nil
	case entities.KindPlaceholder:
		return scope.GetByPlaceholder(spec.Value), nil
	case entities.KindTitle:
		return scope.GetByTitle(spec.Value), nil
	case entities.KindAltText:
		return scope.GetByAltText(spec.Value), nil
	case entities.KindTestID:
		return scope.GetByTestId(spec.Value), nil
	case entities.KindElementType:
		return scope.Locator(fmt.Sprintf("%s:has-text(%q)", spec.Tag, spec.Value)), nil
	case entities.KindClassText:
		return scope.Locator(fmt.Sprintf(".%s:has-text(%q)", spec.Class, spec.Value)), nil
	case entities.KindClickable:
		return nil, fmt.Errorf("clickable locator %q cannot be executed directly, resolve it first", spec.Value)
	}
	return nil, fmt.Errorf("unknown locator kind %q", spec.Kind)
}

// roleOptions maps the spec's name and extra attributes onto playwright role
// options. Unknown extras are logged and skipped, never fatal.
func (b *PlaywrightBrowser) roleOptions(spec entities.LocatorSpec) playwright.LocatorGetByRoleOptions {
	opts := playwright.LocatorGetByRoleOptions{}
	if spec.Name != "" {
		opts.Name = spec.Name
	}
	for key, value := range spec.Extra {
		switch key {
		case "exact":
			opts.Exact = playwright.Bool(asBool(value))
		case "checked":
			opts.Checked = playwright.Bool(asBool(value))
		case "disabled":
			opts.Disabled = playwright.Bool(asBool(value))
		case "pressed":
			opts.Pressed = playwright.Bool(asBool(value))
		case "selected":
			opts.Selected = playwright.Bool(asBool(value))
		case "expanded":
			opts.Expanded = playwright.Bool(asBool(value))
		case "include_hidden":
			opts.IncludeHidden = playwright.Bool(asBool(value))
		default:
			b.log.Warnf("ignoring unsupported role attribute %q", key)
		}
	}
	return opts
}

func asBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(v, "true")
	}
	return false
}

func toLocator(c entities.Candidate) (playwright.Locator, error) {
	locator, ok := c.Handle.(playwright.Locator)
	if !ok {
		return nil, fmt.Errorf("candidate handle is %T, not a playwright locator", c.Handle)
	}
	return locator, nil
}

// QueryAll - returns all matches of the spec in document order.
func (b *PlaywrightBrowser) QueryAll(ctx context.Context, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	return b.queryScoped(b.root(), spec)
}

// QueryWithin - returns all matches of the spec under the parent candidate.
func (b *PlaywrightBrowser) QueryWithin(ctx context.Context, parent entities.Candidate, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	scope, err := toLocator(parent)
	if err != nil {
		return nil, err
	}
	return b.queryScoped(scope, spec)
}

func (b *PlaywrightBrowser) queryScoped(scope playwright.Locator, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	locator, err := b.specLocator(scope, spec)
	if err != nil {
		return nil, err
	}
	all, err := locator.All()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate matches of %q: %w", spec.String(), err)
	}
	candidates := make([]entities.Candidate, 0, len(all))
	for i, l := range all {
		candidates = append(candidates, entities.Candidate{Handle: l, Index: i})
	}
	return candidates, nil
}

// Count - returns the number of matches of the spec.
func (b *PlaywrightBrowser) Count(ctx context.Context, spec entities.LocatorSpec) (int, error) {
	locator, err := b.specLocator(b.root(), spec)
	if err != nil {
		return 0, err
	}
	return locator.Count()
}

// IsVisible - reports whether the candidate is visible.
func (b *PlaywrightBrowser) IsVisible(ctx context.Context, c entities.Candidate) (bool, error) {
	locator, err := toLocator(c)
	if err != nil {
		return false, err
	}
	return locator.IsVisible()
}

// IsEnabled - reports whether the candidate is enabled.
func (b *PlaywrightBrowser) IsEnabled(ctx context.Context, c entities.Candidate) (bool, error) {
	locator, err := toLocator(c)
	if err != nil {
		return false, err
	}
	return locator.IsEnabled()
}

// TextOf - returns the candidate's text content.
func (b *PlaywrightBrowser) TextOf(ctx context.Context, c entities.Candidate) (string, error) {
	locator, err := toLocator(c)
	if err != nil {
		return "", err
	}
	return locator.TextContent()
}

// Attribute - returns the named attribute, empty when absent.
func (b *PlaywrightBrowser) Attribute(ctx context.Context, c entities.Candidate, name string) (string, error) {
	locator, err := toLocator(c)
	if err != nil {
		return "", err
	}
	return locator.GetAttribute(name)
}

// WaitFor - blocks until the first match reaches the given state or the
// timeout passes. Returns false on timeout, never an error.
func (b *PlaywrightBrowser) WaitFor(ctx context.Context, spec entities.LocatorSpec, state interfaces.WaitState, timeout time.Duration) bool {
	locator, err := b.specLocator(b.root(), spec)
	if err != nil {
		b.log.Warnf("cannot wait for %q: %v", spec.String(), err)
		return false
	}
	err = locator.First().WaitFor(playwright.LocatorWaitForOptions{
		State:   waitState(state),
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

func waitState(state interfaces.WaitState) *playwright.WaitForSelectorState {
	switch state {
	case interfaces.WaitStateHidden:
		return playwright.WaitForSelectorStateHidden
	case interfaces.WaitStateAttached:
		return playwright.WaitForSelectorStateAttached
	case interfaces.WaitStateDetached:
		return playwright.WaitForSelectorStateDetached
	}
	return playwright.WaitForSelectorStateVisible
}

// Click - clicks the candidate.
func (b *PlaywrightBrowser) Click(ctx context.Context, c entities.Candidate) error {
	locator, err := toLocator(c)
	if err != nil {
		return err
	}
	if err := locator.Click(); err != nil {
		return err
	}
	b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(5000),
	})
	return nil
}

// Fill - clears the candidate and types text into it.
func (b *PlaywrightBrowser) Fill(ctx context.Context, c entities.Candidate, text string) error {
	locator, err := toLocator(c)
	if err != nil {
		return err
	}
	locator.Clear()
	return locator.Fill(text)
}
