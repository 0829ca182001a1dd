package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"

	"web_locator/domain/entities"
	"web_locator/domain/interfaces"
	"web_locator/infrastructure/config"
)

const chromeDriverPort = 9515

// SeleniumBrowser is the alternate query backend, driving Chrome through a
// local chromedriver. Spec kinds without a native WebDriver strategy are
// translated to XPath.
type SeleniumBrowser struct {
	wd      selenium.WebDriver
	service *selenium.Service
	log     logrus.FieldLogger
}

// findChromeDriver - finds the ChromeDriver executable path.
func findChromeDriver() (string, error) {
	if path := os.Getenv("BROWSER_DRIVER_PATH"); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}
	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// NewSeleniumBrowser - starts chromedriver and opens a WebDriver session.
func NewSeleniumBrowser(cfg config.Config, log logrus.FieldLogger) (*SeleniumBrowser, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	driverPath, err := findChromeDriver()
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	log.Infof("Using ChromeDriver at: %s", driverPath)

	service, err := selenium.NewChromeDriverService(driverPath, chromeDriverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	chromeCaps := chrome.Capabilities{
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if cfg.Headless {
		chromeCaps.Args = append(chromeCaps.Args, "--headless=new")
	}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", chromeDriverPort))
	if err != nil {
		service.Stop()
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &SeleniumBrowser{wd: wd, service: service, log: log}, nil
}

// Navigate - navigates to the specified URL.
func (s *SeleniumBrowser) Navigate(ctx context.Context, url string) error {
	return s.wd.Get(url)
}

// Close - quits the session and stops chromedriver.
func (s *SeleniumBrowser) Close() error {
	var closeErr error
	if s.wd != nil {
		closeErr = s.wd.Quit()
		s.wd = nil
	}
	if s.service != nil {
		s.service.Stop()
		s.service = nil
	}
	return closeErr
}

// xpathLiteral quotes a string for use inside an XPath expression. XPath 1.0
// has no escape syntax, so strings holding both quote kinds need concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		if part != "" {
			quoted = append(quoted, "'"+part+"'")
		}
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}

// specStrategy translates a LocatorSpec into a WebDriver find strategy.
func (s *SeleniumBrowser) specStrategy(spec entities.LocatorSpec) (by string, value string, err error) {
	switch spec.Kind {
	case entities.KindCSS:
		return selenium.ByCSSSelector, spec.Selector, nil
	case entities.KindXPath:
		return selenium.ByXPATH, spec.Selector, nil
	case entities.KindText:
		if spec.Exact {
			return selenium.ByXPATH, fmt.Sprintf("//*[normalize-space(text())=%s]", xpathLiteral(spec.Value)), nil
		}
		return selenium.ByXPATH, fmt.Sprintf("//*[text()[contains(., %s)]]", xpathLiteral(spec.Value)), nil
	case entities.KindRole:
		if spec.Name == "" {
			return selenium.ByXPATH, fmt.Sprintf("//*[@role=%s]", xpathLiteral(spec.Role)), nil
		}
		name := xpathLiteral(spec.Name)
		return selenium.ByXPATH, fmt.Sprintf(
			"//*[@role=%s][contains(normalize-space(.), %s) or @aria-label=%s]",
			xpathLiteral(spec.Role), name, name), nil
	case entities.KindLabel:
		// The control the label points at, or the control nested inside it.
		label := xpathLiteral(spec.Value)
		return selenium.ByXPATH, fmt.Sprintf(
			"//*[@id=//label[normalize-space(.)=%s]/@for] | //label[normalize-space(.)=%s]//input",
			label, label), nil
	case entities.KindPlaceholder:
		return selenium.ByXPATH, fmt.Sprintf("//*[@placeholder=%s]", xpathLiteral(spec.Value)), nil
	case entities.KindTitle:
		return selenium.ByXPATH, fmt.Sprintf("//*[@title=%s]", xpathLiteral(spec.Value)), nil
	case entities.KindAltText:
		return selenium.ByXPATH, fmt.Sprintf("//*[@alt=%s]", xpathLiteral(spec.Value)), nil
	case entities.KindTestID:
		return selenium.ByXPATH, fmt.Sprintf("//*[@data-testid=%s]", xpathLiteral(spec.Value)), nil
	case entities.KindElementType:
		return selenium.ByXPATH, fmt.Sprintf("//%s[contains(normalize-space(.), %s)]", spec.Tag, xpathLiteral(spec.Value)), nil
	case entities.KindClassText:
		return selenium.ByXPATH, fmt.Sprintf(
			"//*[contains(concat(' ', normalize-space(@class), ' '), %s)][contains(normalize-space(.), %s)]",
			xpathLiteral(" "+spec.Class+" "), xpathLiteral(spec.Value)), nil
	case entities.KindClickable:
		return "", "", fmt.Errorf("clickable locator %q cannot be executed directly, resolve it first", spec.Value)
	}
	return "", "", fmt.Errorf("unknown locator kind %q", spec.Kind)
}

func toElement(c entities.Candidate) (selenium.WebElement, error) {
	el, ok := c.Handle.(selenium.WebElement)
	if !ok {
		return nil, fmt.Errorf("candidate handle is %T, not a selenium element", c.Handle)
	}
	return el, nil
}

// QueryAll - returns all matches of the spec in document order.
func (s *SeleniumBrowser) QueryAll(ctx context.Context, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	by, value, err := s.specStrategy(spec)
	if err != nil {
		return nil, err
	}
	elements, err := s.wd.FindElements(by, value)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate matches of %q: %w", spec.String(), err)
	}
	return wrapElements(elements), nil
}

// QueryWithin - returns all matches of the spec under the parent candidate.
func (s *SeleniumBrowser) QueryWithin(ctx context.Context, parent entities.Candidate, spec entities.LocatorSpec) ([]entities.Candidate, error) {
	el, err := toElement(parent)
	if err != nil {
		return nil, err
	}
	by, value, err := s.specStrategy(spec)
	if err != nil {
		return nil, err
	}
	// A rooted XPath would escape the element scope.
	if by == selenium.ByXPATH && strings.HasPrefix(value, "//") {
		value = "." + value
	}
	elements, err := el.FindElements(by, value)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate matches of %q: %w", spec.String(), err)
	}
	return wrapElements(elements), nil
}

func wrapElements(elements []selenium.WebElement) []entities.Candidate {
	candidates := make([]entities.Candidate, 0, len(elements))
	for i, el := range elements {
		candidates = append(candidates, entities.Candidate{Handle: el, Index: i})
	}
	return candidates
}

// Count - returns the number of matches of the spec.
func (s *SeleniumBrowser) Count(ctx context.Context, spec entities.LocatorSpec) (int, error) {
	candidates, err := s.QueryAll(ctx, spec)
	if err != nil {
		return 0, err
	}
	return len(candidates), nil
}

// IsVisible - reports whether the candidate is displayed.
func (s *SeleniumBrowser) IsVisible(ctx context.Context, c entities.Candidate) (bool, error) {
	el, err := toElement(c)
	if err != nil {
		return false, err
	}
	return el.IsDisplayed()
}

// IsEnabled - reports whether the candidate is enabled.
func (s *SeleniumBrowser) IsEnabled(ctx context.Context, c entities.Candidate) (bool, error) {
	el, err := toElement(c)
	if err != nil {
		return false, err
	}
	return el.IsEnabled()
}

// TextOf - returns the candidate's text content.
func (s *SeleniumBrowser) TextOf(ctx context.Context, c entities.Candidate) (string, error) {
	el, err := toElement(c)
	if err != nil {
		return "", err
	}
	return el.Text()
}

// Attribute - returns the named attribute, empty when absent.
func (s *SeleniumBrowser) Attribute(ctx context.Context, c entities.Candidate, name string) (string, error) {
	el, err := toElement(c)
	if err != nil {
		return "", err
	}
	value, err := el.GetAttribute(name)
	if err != nil {
		// WebDriver reports missing attributes as errors; absent is not a failure.
		return "", nil
	}
	return value, nil
}

// WaitFor - polls until the spec reaches the given state or the timeout
// passes. Returns false on timeout, never an error.
func (s *SeleniumBrowser) WaitFor(ctx context.Context, spec entities.LocatorSpec, state interfaces.WaitState, timeout time.Duration) bool {
	by, value, err := s.specStrategy(spec)
	if err != nil {
		s.log.Warnf("cannot wait for %q: %v", spec.String(), err)
		return false
	}

	check := func(wd selenium.WebDriver) (bool, error) {
		elements, err := wd.FindElements(by, value)
		if err != nil {
			return false, nil
		}
		switch state {
		case interfaces.WaitStateAttached:
			return len(elements) > 0, nil
		case interfaces.WaitStateDetached:
			return len(elements) == 0, nil
		case interfaces.WaitStateHidden:
			for _, el := range elements {
				if displayed, _ := el.IsDisplayed(); displayed {
					return false, nil
				}
			}
			return true, nil
		}
		for _, el := range elements {
			if displayed, _ := el.IsDisplayed(); displayed {
				return true, nil
			}
		}
		return false, nil
	}

	err = s.wd.WaitWithTimeoutAndInterval(check, timeout, 100*time.Millisecond)
	return err == nil
}

// Click - scrolls the candidate into view and clicks it.
func (s *SeleniumBrowser) Click(ctx context.Context, c entities.Candidate) error {
	el, err := toElement(c)
	if err != nil {
		return err
	}

	script := `arguments[0].scrollIntoView({ behavior: 'smooth', block: 'center' });`
	if _, err := s.wd.ExecuteScript(script, []interface{}{el}); err != nil {
		s.log.Warnf("failed to scroll to element: %v", err)
	}
	time.Sleep(300 * time.Millisecond)

	return el.Click()
}

// Fill - clears the candidate and types text into it.
func (s *SeleniumBrowser) Fill(ctx context.Context, c entities.Candidate, text string) error {
	el, err := toElement(c)
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		s.log.Warnf("failed to clear element: %v", err)
	}
	return el.SendKeys(text)
}
